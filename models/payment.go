package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentVoucher records one payment against an order. Several vouchers may
// exist per order; the order's paid status is derived from their sum.
type PaymentVoucher struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	VoucherNo       string          `gorm:"uniqueIndex;size:64;not null" json:"voucher_no"`
	PurchaseOrderID uint            `gorm:"index;not null" json:"purchase_order_id"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Method          string          `gorm:"size:30;not null" json:"method"`
	Reference       string          `gorm:"size:255" json:"reference"`
	ProofRef        string          `gorm:"size:255;not null" json:"proof_ref"`
	PaidByID        uint            `gorm:"index;not null" json:"paid_by_id"`
	PaidAt          time.Time       `gorm:"not null" json:"paid_at"`
	CreatedAt       time.Time       `json:"created_at"`
}

// PaymentStatusFor derives the order status from cumulative payments.
// Overpayment is representable, not an error.
func PaymentStatusFor(totalAmount, paidToDate decimal.Decimal) OrderStatus {
	if paidToDate.GreaterThanOrEqual(totalAmount) {
		return OrderPaid
	}
	return OrderPartialPaid
}

// PaymentInput is one payment to record against an order.
type PaymentInput struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method" binding:"required"`
	Reference string          `json:"reference"`
	ProofRef  string          `json:"proof_ref" binding:"required"`
}

// PaymentResult is the voucher plus the recomputed order position.
type PaymentResult struct {
	Voucher    PaymentVoucher  `json:"voucher"`
	PaidToDate decimal.Decimal `json:"paid_to_date"`
	Status     OrderStatus     `json:"status"`
}

// RecordPayment appends a voucher, re-sums all vouchers for the order and
// updates its status. Payment is gated on delivery: the order must be
// RECEIVED (or already partially/fully paid).
func RecordPayment(db *gorm.DB, poID uint, in PaymentInput, actorID uint) (*PaymentResult, error) {
	if in.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, Validationf("payment amount must be positive")
	}
	if in.ProofRef == "" {
		return nil, Validationf("payment proof reference is required")
	}

	var result PaymentResult
	err := db.Transaction(func(tx *gorm.DB) error {
		po, err := lockOrder(tx, poID)
		if err != nil {
			return err
		}
		switch po.Status {
		case OrderReceived, OrderPartialPaid, OrderPaid:
		default:
			return StateConflictf("order %d is %s, payments are recorded after delivery", po.ID, po.Status)
		}

		var seq int64
		if err := tx.Raw("SELECT COALESCE(MAX(id),0)+1 FROM payment_vouchers").Scan(&seq).Error; err != nil {
			return err
		}
		voucher := PaymentVoucher{
			VoucherNo:       GenVoucherNo(seq, time.Now().UTC()),
			PurchaseOrderID: po.ID,
			Amount:          in.Amount,
			Method:          in.Method,
			Reference:       in.Reference,
			ProofRef:        in.ProofRef,
			PaidByID:        actorID,
			PaidAt:          time.Now().UTC(),
		}
		if err := tx.Create(&voucher).Error; err != nil {
			return err
		}

		paid, err := paidToDate(tx, po.ID)
		if err != nil {
			return err
		}
		status := PaymentStatusFor(po.TotalAmount, paid)
		if err := tx.Model(&PurchaseOrder{}).Where("id = ?", po.ID).
			Update("status", status).Error; err != nil {
			return err
		}

		result = PaymentResult{Voucher: voucher, PaidToDate: paid, Status: status}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func paidToDate(tx *gorm.DB, poID uint) (decimal.Decimal, error) {
	var raw string
	err := tx.Model(&PaymentVoucher{}).
		Where("purchase_order_id = ?", poID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&raw).Error
	if err != nil {
		return decimal.Zero, err
	}
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}

// ListPayments returns an order's vouchers in payment order.
func ListPayments(db *gorm.DB, poID uint) ([]PaymentVoucher, error) {
	if err := mustExist(db, &PurchaseOrder{}, poID, "purchase order"); err != nil {
		return nil, err
	}
	var rows []PaymentVoucher
	err := db.Where("purchase_order_id = ?", poID).
		Order("paid_at ASC, id ASC").Find(&rows).Error
	return rows, err
}
