package models

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BatchReservation is one batch's share of a material's reserved quantity.
type BatchReservation struct {
	BatchID uint            `json:"batch_id"`
	Qty     decimal.Decimal `json:"qty"`
}

// GapAnalysis sizes a new purchase request for a (batch, material) pair.
type GapAnalysis struct {
	BatchID         uint               `json:"batch_id"`
	MaterialID      uint               `json:"material_id"`
	RequiredQty     decimal.Decimal    `json:"required_qty"`
	PhysicalStock   decimal.Decimal    `json:"physical_stock"`
	Reserved        decimal.Decimal    `json:"reserved"`
	ReservedByBatch []BatchReservation `json:"reserved_by_batch"`
	Available       decimal.Decimal    `json:"available"`
	Deficit         decimal.Decimal    `json:"deficit"`
}

// ComputeGap is the pure availability math:
//
//	available = max(0, physical - reserved)
//	deficit   = max(0, required - available)
//
// The deficit is the suggested buy quantity; the operator may override it.
func ComputeGap(required, physical, reserved decimal.Decimal) (available, deficit decimal.Decimal) {
	available = physical.Sub(reserved)
	if available.IsNegative() {
		available = decimal.Zero
	}
	deficit = required.Sub(available)
	if deficit.IsNegative() {
		deficit = decimal.Zero
	}
	return available, deficit
}

// SplitRequest splits an operator submission into an external buy and an
// internal reservation. requestInput must satisfy 0 <= input <= required,
// so qtyToBuy + qtyToReserve == required always holds.
func SplitRequest(required, requestInput decimal.Decimal) (qtyToBuy, qtyToReserve decimal.Decimal, err error) {
	if requestInput.IsNegative() {
		return decimal.Zero, decimal.Zero, Validationf("request quantity must not be negative")
	}
	if requestInput.GreaterThan(required) {
		return decimal.Zero, decimal.Zero, Validationf("request quantity %s exceeds required quantity %s", requestInput, required)
	}
	qtyToBuy = requestInput
	qtyToReserve = required.Sub(qtyToBuy)
	if qtyToReserve.IsNegative() {
		qtyToReserve = decimal.Zero
	}
	return qtyToBuy, qtyToReserve, nil
}

// AnalyzeGap gathers the live inputs for ComputeGap. requiredQty may be zero
// to mean "use the batch recipe". excludePR leaves out the request currently
// being edited so it does not reserve against itself.
func AnalyzeGap(db *gorm.DB, batchID, materialID uint, requiredQty decimal.Decimal, excludePR uint) (*GapAnalysis, error) {
	if err := mustExist(db, &Batch{}, batchID, "batch"); err != nil {
		return nil, err
	}
	if err := mustExist(db, &Material{}, materialID, "material"); err != nil {
		return nil, err
	}
	if requiredQty.IsZero() {
		var bm BatchMaterial
		if err := db.Where("batch_id = ? AND material_id = ?", batchID, materialID).First(&bm).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, Referentialf("batch %d has no recipe requirement for material %d", batchID, materialID)
			}
			return nil, err
		}
		requiredQty = bm.RequiredQty
	}

	physical, err := QuantityOnHand(db, materialID)
	if err != nil {
		return nil, err
	}

	byBatch, reserved, err := reservedForMaterial(db, materialID, excludePR)
	if err != nil {
		return nil, err
	}

	available, deficit := ComputeGap(requiredQty, physical, reserved)
	return &GapAnalysis{
		BatchID:         batchID,
		MaterialID:      materialID,
		RequiredQty:     requiredQty,
		PhysicalStock:   physical,
		Reserved:        reserved,
		ReservedByBatch: byBatch,
		Available:       available,
		Deficit:         deficit,
	}, nil
}

func reservedForMaterial(db *gorm.DB, materialID uint, excludePR uint) ([]BatchReservation, decimal.Decimal, error) {
	q := db.Model(&PurchaseRequest{}).
		Where("material_id = ? AND status = ?", materialID, RequestStockAllocated)
	if excludePR != 0 {
		q = q.Where("id <> ?", excludePR)
	}
	var rows []BatchReservation
	if err := q.Select("batch_id, SUM(requested_qty) AS qty").
		Group("batch_id").Order("batch_id").Scan(&rows).Error; err != nil {
		return nil, decimal.Zero, err
	}
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Qty)
	}
	return rows, total, nil
}

// GapSubmission is an operator's sizing decision for one recipe line.
type GapSubmission struct {
	BatchID      uint
	MaterialID   uint
	RequestInput decimal.Decimal
	ActorID      uint
}

// SplitResult reports what the submission created or updated.
type SplitResult struct {
	BatchID       uint            `json:"batch_id"`
	MaterialID    uint            `json:"material_id"`
	RequiredQty   decimal.Decimal `json:"required_qty"`
	QtyToBuy      decimal.Decimal `json:"qty_to_buy"`
	QtyToReserve  decimal.Decimal `json:"qty_to_reserve"`
	BuyRequestID  *uint           `json:"buy_request_id,omitempty"`
	ReservationID *uint           `json:"reservation_id,omitempty"`
}

// SubmitGapRequest performs the buy/reserve dual write atomically: either
// both records exist afterwards or neither does.
func SubmitGapRequest(db *gorm.DB, in GapSubmission) (*SplitResult, error) {
	if err := mustExist(db, &Batch{}, in.BatchID, "batch"); err != nil {
		return nil, err
	}
	if err := mustExist(db, &Material{}, in.MaterialID, "material"); err != nil {
		return nil, err
	}

	var result *SplitResult
	err := db.Transaction(func(tx *gorm.DB) error {
		res, err := applyGapSplit(tx, in.BatchID, in.MaterialID, in.RequestInput, nil, in.ActorID)
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

// applyGapSplit runs inside a transaction. It serializes on the material's
// stock row, recomputes the split and upserts the buy request plus the
// single reservation row kept per (batch, material) pair. existing is the
// buy request being edited, nil on first submission.
func applyGapSplit(tx *gorm.DB, batchID, materialID uint, requestInput decimal.Decimal, existing *PurchaseRequest, actorID uint) (*SplitResult, error) {
	var bm BatchMaterial
	if err := tx.Where("batch_id = ? AND material_id = ?", batchID, materialID).First(&bm).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Referentialf("batch %d has no recipe requirement for material %d", batchID, materialID)
		}
		return nil, err
	}
	required := bm.RequiredQty

	if err := lockMaterialStock(tx, materialID); err != nil {
		return nil, err
	}

	qtyToBuy, qtyToReserve, err := SplitRequest(required, requestInput)
	if err != nil {
		return nil, err
	}

	var reservation PurchaseRequest
	resErr := tx.Where("batch_id = ? AND material_id = ? AND status = ?",
		batchID, materialID, RequestStockAllocated).First(&reservation).Error
	hasReservation := resErr == nil
	if resErr != nil && !errors.Is(resErr, gorm.ErrRecordNotFound) {
		return nil, resErr
	}

	result := &SplitResult{
		BatchID:      batchID,
		MaterialID:   materialID,
		RequiredQty:  required,
		QtyToBuy:     qtyToBuy,
		QtyToReserve: qtyToReserve,
	}

	if existing != nil {
		if err := tx.Model(&PurchaseRequest{}).Where("id = ?", existing.ID).
			Updates(map[string]interface{}{
				"requested_qty": qtyToBuy,
				"status":        RequestPending,
			}).Error; err != nil {
			return nil, err
		}
		id := existing.ID
		result.BuyRequestID = &id
	} else if qtyToBuy.GreaterThan(decimal.Zero) || qtyToReserve.IsZero() {
		buy := PurchaseRequest{
			BatchID:      batchID,
			MaterialID:   materialID,
			RequestedQty: qtyToBuy,
			Status:       RequestPending,
			CreatedByID:  actorID,
		}
		if err := tx.Create(&buy).Error; err != nil {
			return nil, err
		}
		result.BuyRequestID = &buy.ID
	}

	switch {
	case qtyToReserve.GreaterThan(decimal.Zero) && hasReservation:
		if err := tx.Model(&PurchaseRequest{}).Where("id = ?", reservation.ID).
			Update("requested_qty", qtyToReserve).Error; err != nil {
			return nil, err
		}
		result.ReservationID = &reservation.ID
	case qtyToReserve.GreaterThan(decimal.Zero):
		resv := PurchaseRequest{
			BatchID:      batchID,
			MaterialID:   materialID,
			RequestedQty: qtyToReserve,
			Status:       RequestStockAllocated,
			CreatedByID:  actorID,
		}
		if err := tx.Create(&resv).Error; err != nil {
			return nil, err
		}
		result.ReservationID = &resv.ID
	case hasReservation:
		// Nothing left to reserve: release the old reservation.
		if err := tx.Delete(&PurchaseRequest{}, reservation.ID).Error; err != nil {
			return nil, err
		}
	}

	return result, nil
}

// lockMaterialStock takes a FOR UPDATE lock on the material's stock row,
// creating it first if the material has never moved. Concurrent reservation
// math on the same material serializes here.
func lockMaterialStock(tx *gorm.DB, materialID uint) error {
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "material_id"}},
		DoNothing: true,
	}).Create(&MaterialStock{MaterialID: materialID, Qty: decimal.Zero}).Error; err != nil {
		return err
	}
	var s MaterialStock
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("material_id = ?", materialID).First(&s).Error
}

func mustExist(db *gorm.DB, model interface{}, id uint, label string) error {
	if id == 0 {
		return Referentialf("%s id is required", label)
	}
	var cnt int64
	if err := db.Model(model).Where("id = ?", id).Count(&cnt).Error; err != nil {
		return err
	}
	if cnt == 0 {
		return Referentialf("%s %d not found", label, id)
	}
	return nil
}
