package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GoodsReceipt reconciles one physical delivery against an issued order.
type GoodsReceipt struct {
	ID              uint               `gorm:"primaryKey" json:"id"`
	ReceiptNo       string             `gorm:"uniqueIndex;size:64;not null" json:"receipt_no"`
	PurchaseOrderID uint               `gorm:"index;not null" json:"purchase_order_id"`
	SupplierRef     string             `gorm:"size:255;not null" json:"supplier_ref"`
	ProofRef        string             `gorm:"size:255;not null" json:"proof_ref"`
	ReceivedByID    uint               `gorm:"index;not null" json:"received_by_id"`
	Items           []GoodsReceiptItem `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// GoodsReceiptItem splits one ordered line into accepted and rejected
// quantity. The only mutation after save is flipping ReplacementReceived.
type GoodsReceiptItem struct {
	ID                  uint            `gorm:"primaryKey" json:"id"`
	GoodsReceiptID      uint            `gorm:"index;not null" json:"goods_receipt_id"`
	PurchaseOrderItemID uint            `gorm:"index;not null" json:"purchase_order_item_id"`
	MaterialID          uint            `gorm:"index;not null" json:"material_id"`
	OrderedQty          decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"ordered_qty"`
	AcceptedQty         decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"accepted_qty"`
	RejectedQty         decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"rejected_qty"`
	ReplacementReceived bool            `gorm:"not null;default:false" json:"replacement_received"`
}

// ReconcileLine clamps an accepted-quantity edit to [0, ordered] and derives
// the rejected side, so accepted + rejected == ordered holds after every
// edit. Out-of-range input is clamped rather than rejected; the save path
// still validates the invariant.
func ReconcileLine(ordered, accepted decimal.Decimal) (acceptedQty, rejectedQty decimal.Decimal) {
	if accepted.IsNegative() {
		accepted = decimal.Zero
	}
	if accepted.GreaterThan(ordered) {
		accepted = ordered
	}
	return accepted, ordered.Sub(accepted)
}

// Validate enforces the reconciliation invariant on one line.
func (it *GoodsReceiptItem) Validate() error {
	if it.AcceptedQty.IsNegative() || it.RejectedQty.IsNegative() {
		return Validationf("accepted and rejected quantities must not be negative")
	}
	if !it.AcceptedQty.Add(it.RejectedQty).Equal(it.OrderedQty) {
		return Validationf("accepted %s + rejected %s must equal ordered %s",
			it.AcceptedQty, it.RejectedQty, it.OrderedQty)
	}
	return nil
}

// OpenReceiptDraft seeds an unsaved receipt for an ISSUED order: one line
// per order line, everything accepted by default.
func OpenReceiptDraft(db *gorm.DB, poID uint) (*GoodsReceipt, error) {
	po, err := getOrder(db, poID)
	if err != nil {
		return nil, err
	}
	if po.Status != OrderIssued {
		return nil, StateConflictf("order %d is %s, receipts are opened against ISSUED orders", po.ID, po.Status)
	}
	draft := &GoodsReceipt{PurchaseOrderID: po.ID}
	for i := range po.Items {
		draft.Items = append(draft.Items, GoodsReceiptItem{
			PurchaseOrderItemID: po.Items[i].ID,
			MaterialID:          po.Items[i].MaterialID,
			OrderedQty:          po.Items[i].Qty,
			AcceptedQty:         po.Items[i].Qty,
			RejectedQty:         decimal.Zero,
		})
	}
	return draft, nil
}

// ReceiptLineInput is the operator's accepted/rejected decision per order
// line.
type ReceiptLineInput struct {
	PurchaseOrderItemID uint            `json:"purchase_order_item_id" binding:"required"`
	AcceptedQty         decimal.Decimal `json:"accepted_qty"`
	RejectedQty         decimal.Decimal `json:"rejected_qty"`
}

// ReceiptInput is a complete delivery reconciliation.
type ReceiptInput struct {
	PurchaseOrderID uint               `json:"purchase_order_id" binding:"required"`
	SupplierRef     string             `json:"supplier_ref" binding:"required"`
	ProofRef        string             `json:"proof_ref" binding:"required"`
	Items           []ReceiptLineInput `json:"items" binding:"required,min=1"`
}

// SaveGoodsReceipt persists the reconciliation: validates every line against
// the order, posts a PROCUREMENT entry per accepted line and moves the order
// to RECEIVED unconditionally. Rejection never blocks the order lifecycle;
// it is tracked per line for the replacement loop.
func SaveGoodsReceipt(db *gorm.DB, in ReceiptInput, actorID uint) (*GoodsReceipt, error) {
	if in.SupplierRef == "" {
		return nil, Validationf("supplier reference is required")
	}
	if in.ProofRef == "" {
		return nil, Validationf("delivery proof reference is required")
	}

	var saved GoodsReceipt
	err := db.Transaction(func(tx *gorm.DB) error {
		po, err := lockOrder(tx, in.PurchaseOrderID)
		if err != nil {
			return err
		}
		if po.Status != OrderIssued {
			return StateConflictf("order %d is %s, receipts are saved against ISSUED orders", po.ID, po.Status)
		}

		var poItems []PurchaseOrderItem
		if err := tx.Where("purchase_order_id = ?", po.ID).Find(&poItems).Error; err != nil {
			return err
		}
		byID := make(map[uint]*PurchaseOrderItem, len(poItems))
		for i := range poItems {
			byID[poItems[i].ID] = &poItems[i]
		}
		if len(in.Items) != len(poItems) {
			return Validationf("receipt must cover every order line: order has %d lines, got %d", len(poItems), len(in.Items))
		}

		seen := make(map[uint]bool, len(in.Items))
		items := make([]GoodsReceiptItem, 0, len(in.Items))
		for _, line := range in.Items {
			poItem, ok := byID[line.PurchaseOrderItemID]
			if !ok {
				return Referentialf("order %d has no line %d", po.ID, line.PurchaseOrderItemID)
			}
			if seen[line.PurchaseOrderItemID] {
				return Validationf("order line %d reconciled twice", line.PurchaseOrderItemID)
			}
			seen[line.PurchaseOrderItemID] = true

			item := GoodsReceiptItem{
				PurchaseOrderItemID: poItem.ID,
				MaterialID:          poItem.MaterialID,
				OrderedQty:          poItem.Qty,
				AcceptedQty:         line.AcceptedQty,
				RejectedQty:         line.RejectedQty,
			}
			if err := item.Validate(); err != nil {
				return err
			}
			items = append(items, item)
		}

		var seq int64
		if err := tx.Raw("SELECT COALESCE(MAX(id),0)+1 FROM goods_receipts").Scan(&seq).Error; err != nil {
			return err
		}
		saved = GoodsReceipt{
			ReceiptNo:       GenReceiptNo(seq, time.Now().UTC()),
			PurchaseOrderID: po.ID,
			SupplierRef:     in.SupplierRef,
			ProofRef:        in.ProofRef,
			ReceivedByID:    actorID,
			Items:           items,
		}
		if err := tx.Create(&saved).Error; err != nil {
			return err
		}

		orderID := po.ID
		for i := range saved.Items {
			if !saved.Items[i].AcceptedQty.GreaterThan(decimal.Zero) {
				continue
			}
			entry := InventoryLedgerEntry{
				MaterialID:     saved.Items[i].MaterialID,
				QuantityChange: saved.Items[i].AcceptedQty,
				EntryType:      EntryProcurement,
				OrderID:        &orderID,
				PerformedByID:  actorID,
			}
			if err := PostEntry(tx, &entry); err != nil {
				return err
			}
		}

		return tx.Model(&PurchaseOrder{}).Where("id = ?", po.ID).
			Update("status", OrderReceived).Error
	})
	if err != nil {
		return nil, err
	}
	return getReceipt(db, saved.ID)
}

func getReceipt(db *gorm.DB, id uint) (*GoodsReceipt, error) {
	var grn GoodsReceipt
	if err := db.Preload("Items").First(&grn, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Referentialf("goods receipt %d not found", id)
		}
		return nil, err
	}
	return &grn, nil
}

// ListReceipts returns receipts with lines, newest first.
func ListReceipts(db *gorm.DB) ([]GoodsReceipt, error) {
	var rows []GoodsReceipt
	err := db.Preload("Items").Order("id DESC").Find(&rows).Error
	return rows, err
}

// PendingReplacement is one rejected line still waiting for its replacement
// delivery.
type PendingReplacement struct {
	GoodsReceiptID  uint            `json:"goods_receipt_id"`
	ReceiptNo       string          `json:"receipt_no"`
	ItemID          uint            `json:"item_id"`
	PurchaseOrderID uint            `json:"purchase_order_id"`
	OrderNo         string          `json:"order_no"`
	MaterialID      uint            `json:"material_id"`
	RejectedQty     decimal.Decimal `json:"rejected_qty"`
}

// PendingReplacements is the derived view across all receipts: rejected > 0
// and replacement not yet received.
func PendingReplacements(db *gorm.DB) ([]PendingReplacement, error) {
	var rows []PendingReplacement
	err := db.Table("goods_receipt_items AS gri").
		Joins("JOIN goods_receipts AS gr ON gr.id = gri.goods_receipt_id").
		Joins("JOIN purchase_orders AS po ON po.id = gr.purchase_order_id").
		Select("gr.id AS goods_receipt_id, gr.receipt_no, gri.id AS item_id, po.id AS purchase_order_id, po.order_no, gri.material_id, gri.rejected_qty").
		Where("gri.rejected_qty > 0 AND gri.replacement_received = false").
		Order("gr.id ASC, gri.id ASC").
		Scan(&rows).Error
	return rows, err
}

// ConfirmReplacement marks a rejected line as replaced and posts the
// REPLACEMENT entry for the full rejected quantity (partial replacement is
// not modeled). A second confirmation is a state conflict, so the entry can
// never post twice.
func ConfirmReplacement(db *gorm.DB, grnID, itemID uint, actorID uint) (*GoodsReceiptItem, error) {
	var item GoodsReceiptItem
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND goods_receipt_id = ?", itemID, grnID).
			First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return Referentialf("goods receipt %d has no line %d", grnID, itemID)
			}
			return err
		}
		if !item.RejectedQty.GreaterThan(decimal.Zero) {
			return Validationf("line %d has no rejected quantity to replace", item.ID)
		}
		if item.ReplacementReceived {
			return StateConflictf("replacement for line %d is already confirmed", item.ID)
		}

		var grn GoodsReceipt
		if err := tx.First(&grn, grnID).Error; err != nil {
			return err
		}
		orderID := grn.PurchaseOrderID
		entry := InventoryLedgerEntry{
			MaterialID:     item.MaterialID,
			QuantityChange: item.RejectedQty,
			EntryType:      EntryReplacement,
			OrderID:        &orderID,
			PerformedByID:  actorID,
		}
		if err := PostEntry(tx, &entry); err != nil {
			return err
		}

		item.ReplacementReceived = true
		return tx.Model(&GoodsReceiptItem{}).Where("id = ?", item.ID).
			Update("replacement_received", true).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}
