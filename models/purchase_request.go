package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PurchaseRequest is either an external buy request (PENDING lifecycle) or
// an internal stock reservation (STOCK_ALLOCATED, terminal).
type PurchaseRequest struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	BatchID         uint            `gorm:"index;not null" json:"batch_id"`
	Batch           Batch           `gorm:"foreignKey:BatchID" json:"batch"`
	MaterialID      uint            `gorm:"index;not null" json:"material_id"`
	Material        Material        `gorm:"foreignKey:MaterialID" json:"material"`
	RequestedQty    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"requested_qty"`
	Status          RequestStatus   `gorm:"size:20;not null;index" json:"status"`
	AdminNotes      string          `gorm:"size:255" json:"admin_notes"`
	PurchaseOrderID *uint           `gorm:"index" json:"purchase_order_id,omitempty"`
	CreatedByID     uint            `gorm:"index;not null" json:"created_by_id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Editable: only PENDING and REJECTED requests may change.
func (pr *PurchaseRequest) Editable() bool {
	return pr.Status == RequestPending || pr.Status == RequestRejected
}

// Deletable: APPROVED and ORDERED requests require the PO to be cancelled
// first.
func (pr *PurchaseRequest) Deletable() bool {
	return pr.Status != RequestApproved && pr.Status != RequestOrdered
}

// ReviewPurchaseRequest moves a PENDING request to APPROVED or REJECTED.
// STOCK_ALLOCATED reservations are never reviewed.
func ReviewPurchaseRequest(db *gorm.DB, id uint, approve bool, notes string) (*PurchaseRequest, error) {
	var pr PurchaseRequest
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&pr, id).Error; err != nil {
			return err
		}
		if pr.Status == RequestStockAllocated {
			return StateConflictf("stock reservations are not reviewed")
		}
		if pr.Status != RequestPending {
			return StateConflictf("request %d is %s, only PENDING requests can be reviewed", pr.ID, pr.Status)
		}
		if approve {
			pr.Status = RequestApproved
		} else {
			pr.Status = RequestRejected
		}
		pr.AdminNotes = notes
		return tx.Model(&PurchaseRequest{}).Where("id = ?", pr.ID).
			Updates(map[string]interface{}{"status": pr.Status, "admin_notes": pr.AdminNotes}).Error
	})
	if err != nil {
		return nil, err
	}
	return &pr, nil
}

// UpdatePurchaseRequest re-runs the gap split for an editable request owned
// by the caller. Editing a REJECTED request puts it back to PENDING. The
// companion reservation for the (batch, material) pair is adjusted in the
// same transaction.
func UpdatePurchaseRequest(db *gorm.DB, id uint, requestInput decimal.Decimal, actorID uint) (*SplitResult, error) {
	var result *SplitResult
	err := db.Transaction(func(tx *gorm.DB) error {
		var pr PurchaseRequest
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&pr, id).Error; err != nil {
			return err
		}
		if pr.CreatedByID != actorID {
			return StateConflictf("request %d belongs to another requester", pr.ID)
		}
		if pr.Status == RequestStockAllocated {
			return StateConflictf("stock reservations cannot be edited, delete and resubmit instead")
		}
		if !pr.Editable() {
			return StateConflictf("request %d is %s and immutable", pr.ID, pr.Status)
		}

		res, err := applyGapSplit(tx, pr.BatchID, pr.MaterialID, requestInput, &pr, actorID)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeletePurchaseRequest removes a request that is not APPROVED/ORDERED.
// Deleting a STOCK_ALLOCATED row releases its reservation: availability is
// always computed from live rows, so no further bookkeeping is needed.
func DeletePurchaseRequest(db *gorm.DB, id uint, actorID uint, elevated bool) (*PurchaseRequest, error) {
	var pr PurchaseRequest
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&pr, id).Error; err != nil {
			return err
		}
		if !elevated && pr.CreatedByID != actorID {
			return StateConflictf("request %d belongs to another requester", pr.ID)
		}
		if !pr.Deletable() {
			return StateConflictf("request %d is %s, cancel the purchase order first", pr.ID, pr.Status)
		}
		return tx.Delete(&PurchaseRequest{}, pr.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &pr, nil
}

// ListRequests returns requests, optionally filtered by status, newest
// first. ownerID of 0 means all requesters.
func ListRequests(db *gorm.DB, ownerID uint, status RequestStatus) ([]PurchaseRequest, error) {
	q := db.Preload("Batch").Preload("Material").Order("id DESC")
	if ownerID != 0 {
		q = q.Where("created_by_id = ?", ownerID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var rows []PurchaseRequest
	err := q.Find(&rows).Error
	return rows, err
}

func getRequest(db *gorm.DB, id uint) (*PurchaseRequest, error) {
	var pr PurchaseRequest
	if err := db.Preload("Batch").Preload("Material").First(&pr, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Referentialf("purchase request %d not found", id)
		}
		return nil, err
	}
	return &pr, nil
}
