package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PurchaseOrder aggregates approved purchase requests into one vendor order.
type PurchaseOrder struct {
	ID           uint                `gorm:"primaryKey" json:"id"`
	OrderNo      string              `gorm:"uniqueIndex;size:64;not null" json:"order_no"`
	VendorID     uint                `gorm:"index;not null" json:"vendor_id"`
	Vendor       Vendor              `gorm:"foreignKey:VendorID" json:"vendor"`
	Status       OrderStatus         `gorm:"size:20;not null;index" json:"status"`
	QuotationRef string              `gorm:"size:255" json:"quotation_ref"`
	TotalAmount  decimal.Decimal     `gorm:"type:decimal(20,4);not null" json:"total_amount"`
	Items        []PurchaseOrderItem `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	Requests     []PurchaseRequest   `gorm:"foreignKey:PurchaseOrderID" json:"requests,omitempty"`
	CreatedByID  uint                `gorm:"index;not null" json:"created_by_id"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// PurchaseOrderItem is one priced line. Orders carry one line per linked
// request, so the same material may appear on several lines.
type PurchaseOrderItem struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	PurchaseOrderID   uint            `gorm:"index;not null" json:"purchase_order_id"`
	PurchaseRequestID uint            `gorm:"index;not null" json:"purchase_request_id"`
	MaterialID        uint            `gorm:"index;not null" json:"material_id"`
	Material          Material        `gorm:"foreignKey:MaterialID" json:"material"`
	Qty               decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"qty"`
	UnitPrice         decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	LineTotal         decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"line_total"`
}

// ListOrderable returns APPROVED requests not yet linked to any order.
func ListOrderable(db *gorm.DB) ([]PurchaseRequest, error) {
	var rows []PurchaseRequest
	err := db.Preload("Batch").Preload("Material").
		Where("status = ? AND purchase_order_id IS NULL", RequestApproved).
		Order("id ASC").Find(&rows).Error
	return rows, err
}

// CreatePurchaseOrder links approved, unlinked requests into a new
// PENDING_APPROVAL order with one line per request, unit price defaulting to
// the material's standard cost. Linked requests flip to ORDERED in the same
// transaction.
func CreatePurchaseOrder(db *gorm.DB, prIDs []uint, vendorID uint, orderNo string, actorID uint) (*PurchaseOrder, error) {
	if len(prIDs) == 0 {
		return nil, Validationf("at least one purchase request is required")
	}
	if err := mustExist(db, &Vendor{}, vendorID, "vendor"); err != nil {
		return nil, err
	}

	var po PurchaseOrder
	err := db.Transaction(func(tx *gorm.DB) error {
		var prs []PurchaseRequest
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Material").Where("id IN ?", prIDs).Find(&prs).Error; err != nil {
			return err
		}
		if len(prs) != len(prIDs) {
			return Referentialf("one or more purchase requests do not exist")
		}
		for i := range prs {
			if prs[i].Status != RequestApproved {
				return StateConflictf("request %d is %s, only APPROVED requests are orderable", prs[i].ID, prs[i].Status)
			}
			if prs[i].PurchaseOrderID != nil {
				return StateConflictf("request %d is already linked to order %d", prs[i].ID, *prs[i].PurchaseOrderID)
			}
		}

		if orderNo == "" {
			var seq int64
			if err := tx.Raw("SELECT COALESCE(MAX(id),0)+1 FROM purchase_orders").Scan(&seq).Error; err != nil {
				return err
			}
			orderNo = GenOrderNo(seq, time.Now().UTC())
		}

		items := make([]PurchaseOrderItem, 0, len(prs))
		total := decimal.Zero
		for i := range prs {
			lineTotal := prs[i].RequestedQty.Mul(prs[i].Material.StandardCost)
			items = append(items, PurchaseOrderItem{
				PurchaseRequestID: prs[i].ID,
				MaterialID:        prs[i].MaterialID,
				Qty:               prs[i].RequestedQty,
				UnitPrice:         prs[i].Material.StandardCost,
				LineTotal:         lineTotal,
			})
			total = total.Add(lineTotal)
		}

		po = PurchaseOrder{
			OrderNo:     orderNo,
			VendorID:    vendorID,
			Status:      OrderPendingApproval,
			TotalAmount: total,
			Items:       items,
			CreatedByID: actorID,
		}
		if err := tx.Create(&po).Error; err != nil {
			return err
		}
		return tx.Model(&PurchaseRequest{}).Where("id IN ?", prIDs).
			Updates(map[string]interface{}{
				"status":            RequestOrdered,
				"purchase_order_id": po.ID,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return getOrder(db, po.ID)
}

// UpdateOrderItem edits a line's quantity/price while the order still awaits
// approval. The linked request is never touched.
func UpdateOrderItem(db *gorm.DB, poID, itemID uint, qty, unitPrice decimal.Decimal) (*PurchaseOrder, error) {
	if qty.LessThanOrEqual(decimal.Zero) {
		return nil, Validationf("line quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, Validationf("unit price must not be negative")
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		po, err := lockOrder(tx, poID)
		if err != nil {
			return err
		}
		if po.Status != OrderPendingApproval {
			return StateConflictf("order %d is %s, lines are editable only before approval", po.ID, po.Status)
		}
		var item PurchaseOrderItem
		if err := tx.Where("id = ? AND purchase_order_id = ?", itemID, poID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return Referentialf("order %d has no line %d", poID, itemID)
			}
			return err
		}
		if err := tx.Model(&PurchaseOrderItem{}).Where("id = ?", item.ID).
			Updates(map[string]interface{}{
				"qty":        qty,
				"unit_price": unitPrice,
				"line_total": qty.Mul(unitPrice),
			}).Error; err != nil {
			return err
		}
		return recalcOrderTotal(tx, poID)
	})
	if err != nil {
		return nil, err
	}
	return getOrder(db, poID)
}

// SetQuotation attaches the quotation document reference. Mandatory before
// approval; the core never inspects the document itself.
func SetQuotation(db *gorm.DB, poID uint, ref string) (*PurchaseOrder, error) {
	if ref == "" {
		return nil, Validationf("quotation reference must not be empty")
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		po, err := lockOrder(tx, poID)
		if err != nil {
			return err
		}
		if po.Status != OrderPendingApproval {
			return StateConflictf("order %d is %s, quotation can only change before approval", po.ID, po.Status)
		}
		return tx.Model(&PurchaseOrder{}).Where("id = ?", poID).
			Update("quotation_ref", ref).Error
	})
	if err != nil {
		return nil, err
	}
	return getOrder(db, poID)
}

// ApprovePurchaseOrder issues the order. Elevated role only (enforced at the
// route); a quotation reference is mandatory.
func ApprovePurchaseOrder(db *gorm.DB, poID uint) (*PurchaseOrder, error) {
	err := db.Transaction(func(tx *gorm.DB) error {
		po, err := lockOrder(tx, poID)
		if err != nil {
			return err
		}
		if po.Status != OrderPendingApproval {
			return StateConflictf("order %d is %s, only PENDING_APPROVAL orders can be approved", po.ID, po.Status)
		}
		if po.QuotationRef == "" {
			return Validationf("a quotation reference is required before approval")
		}
		return tx.Model(&PurchaseOrder{}).Where("id = ?", poID).
			Update("status", OrderIssued).Error
	})
	if err != nil {
		return nil, err
	}
	return getOrder(db, poID)
}

// DeletePurchaseOrder removes an order and reverts its requests to APPROVED
// and unlinked, so they become orderable again. Deleting past
// PENDING_APPROVAL is reserved for the elevated role.
func DeletePurchaseOrder(db *gorm.DB, poID uint, elevated bool) (*PurchaseOrder, error) {
	var deleted PurchaseOrder
	err := db.Transaction(func(tx *gorm.DB) error {
		po, err := lockOrder(tx, poID)
		if err != nil {
			return err
		}
		if po.Status != OrderPendingApproval && !elevated {
			return StateConflictf("order %d is %s, only an admin may delete it", po.ID, po.Status)
		}
		deleted = *po

		if err := tx.Model(&PurchaseRequest{}).Where("purchase_order_id = ?", poID).
			Updates(map[string]interface{}{
				"status":            RequestApproved,
				"purchase_order_id": nil,
			}).Error; err != nil {
			return err
		}
		if err := tx.Where("purchase_order_id = ?", poID).Delete(&PurchaseOrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&PurchaseOrder{}, poID).Error
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

// ListOrders returns orders with lines and vendor, newest first, optionally
// filtered by status.
func ListOrders(db *gorm.DB, status OrderStatus) ([]PurchaseOrder, error) {
	q := db.Preload("Vendor").Preload("Items").Preload("Items.Material").Order("id DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var rows []PurchaseOrder
	err := q.Find(&rows).Error
	return rows, err
}

func getOrder(db *gorm.DB, poID uint) (*PurchaseOrder, error) {
	var po PurchaseOrder
	err := db.Preload("Vendor").Preload("Items").Preload("Items.Material").
		Preload("Requests").First(&po, poID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Referentialf("purchase order %d not found", poID)
		}
		return nil, err
	}
	return &po, nil
}

func lockOrder(tx *gorm.DB, poID uint) (*PurchaseOrder, error) {
	var po PurchaseOrder
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&po, poID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Referentialf("purchase order %d not found", poID)
		}
		return nil, err
	}
	return &po, nil
}

func recalcOrderTotal(tx *gorm.DB, poID uint) error {
	var items []PurchaseOrderItem
	if err := tx.Where("purchase_order_id = ?", poID).Find(&items).Error; err != nil {
		return err
	}
	total := decimal.Zero
	for i := range items {
		total = total.Add(items[i].LineTotal)
	}
	return tx.Model(&PurchaseOrder{}).Where("id = ?", poID).
		Update("total_amount", total).Error
}
