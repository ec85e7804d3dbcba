package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-postgres-procurement/config"
)

// InventoryLedgerEntry is append-only: rows are inserted and never updated
// or deleted. On-hand quantity for a material is by definition the sum of
// QuantityChange over its entries; MaterialStock is just a cached projection.
type InventoryLedgerEntry struct {
	ID             string          `gorm:"size:36;primaryKey" json:"id"`
	MaterialID     uint            `gorm:"index:idx_ledger_material,priority:1;not null" json:"material_id"`
	QuantityChange decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity_change"`
	EntryType      LedgerEntryType `gorm:"size:20;not null;index" json:"entry_type"`
	BatchID        *uint           `gorm:"index" json:"batch_id,omitempty"`
	OrderID        *uint           `gorm:"index" json:"order_id,omitempty"`
	Reason         string          `gorm:"size:255" json:"reason,omitempty"`
	PerformedByID  uint            `gorm:"not null" json:"performed_by_id"`
	CorrelationID  string          `gorm:"size:64;index" json:"correlation_id"`
	CreatedAt      time.Time       `gorm:"index:idx_ledger_material,priority:2" json:"created_at"`
}

func stockCacheKey(materialID uint) string {
	return fmt.Sprintf("stock:material:%d", materialID)
}

// PostEntry appends a ledger entry and bumps the cached projection with an
// atomic increment in the same transaction. A negative resulting on-hand is
// allowed: consumption may legitimately be logged before the matching
// procurement.
func PostEntry(tx *gorm.DB, e *InventoryLedgerEntry) error {
	if e.MaterialID == 0 {
		return Validationf("material id is required")
	}
	if !e.EntryType.Valid() {
		return Validationf("unknown ledger entry type %q", e.EntryType)
	}
	if e.QuantityChange.IsZero() {
		return Validationf("quantity change must not be zero")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CorrelationID == "" {
		e.CorrelationID = uuid.NewString()
	}

	if err := tx.Create(e).Error; err != nil {
		return err
	}

	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "material_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"qty":        gorm.Expr("material_stocks.qty + ?", e.QuantityChange),
			"updated_at": time.Now().UTC(),
		}),
	}).Create(&MaterialStock{MaterialID: e.MaterialID, Qty: e.QuantityChange}).Error; err != nil {
		return err
	}

	// A stale cache entry surviving a rollback is harmless; a missing one
	// just costs a DB read.
	if err := config.DeleteRedisKey(stockCacheKey(e.MaterialID)); err != nil {
		config.LogError(config.GetLogger(), "models", "PostEntry", "invalidate stock cache", e.MaterialID, err)
	}
	return nil
}

// QuantityOnHand reads the cached projection, falling back to the ledger sum
// when no projection row exists yet.
func QuantityOnHand(db *gorm.DB, materialID uint) (decimal.Decimal, error) {
	if val, ok, err := config.GetRedisValue(stockCacheKey(materialID)); err == nil && ok {
		if qty, perr := decimal.NewFromString(val); perr == nil {
			return qty, nil
		}
	}

	var stock MaterialStock
	err := db.Where("material_id = ?", materialID).First(&stock).Error
	switch {
	case err == nil:
		cacheOnHand(materialID, stock.Qty)
		return stock.Qty, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		qty, serr := LedgerSum(db, materialID)
		if serr != nil {
			return decimal.Zero, serr
		}
		cacheOnHand(materialID, qty)
		return qty, nil
	default:
		return decimal.Zero, err
	}
}

func cacheOnHand(materialID uint, qty decimal.Decimal) {
	if err := config.SetRedisValue(stockCacheKey(materialID), qty.String(), 5*time.Minute); err != nil {
		config.LogError(config.GetLogger(), "models", "cacheOnHand", "set stock cache", materialID, err)
	}
}

// LedgerSum computes on-hand straight from the ledger. This is the
// authoritative number the projection must always agree with.
func LedgerSum(db *gorm.DB, materialID uint) (decimal.Decimal, error) {
	var raw string
	err := db.Model(&InventoryLedgerEntry{}).
		Where("material_id = ?", materialID).
		Select("COALESCE(SUM(quantity_change), 0)").
		Scan(&raw).Error
	if err != nil {
		return decimal.Zero, err
	}
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}

// RebuildMaterialStock recomputes the projection row from the ledger sum and
// drops the cache key. Used by cmd/stock-rebuild.
func RebuildMaterialStock(db *gorm.DB, materialID uint) (decimal.Decimal, error) {
	sum, err := LedgerSum(db, materialID)
	if err != nil {
		return decimal.Zero, err
	}
	err = db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "material_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"qty":        sum,
			"updated_at": time.Now().UTC(),
		}),
	}).Create(&MaterialStock{MaterialID: materialID, Qty: sum}).Error
	if err != nil {
		return decimal.Zero, err
	}
	_ = config.DeleteRedisKey(stockCacheKey(materialID))
	return sum, nil
}

// ListLedger returns a material's entries, newest first.
func ListLedger(db *gorm.DB, materialID uint, limit int) ([]InventoryLedgerEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var rows []InventoryLedgerEntry
	err := db.Where("material_id = ?", materialID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// ConsumptionItem is one consumed recipe line from the batch collaborator.
type ConsumptionItem struct {
	MaterialID uint            `json:"material_id" binding:"required"`
	Qty        decimal.Decimal `json:"qty"`
}

// PostConsumption logs batch material usage as negative CONSUMPTION entries
// in one transaction. No stock sufficiency check is made: going negative is
// accepted and later reconciled by procurement.
func PostConsumption(db *gorm.DB, batchID uint, items []ConsumptionItem, actorID uint) error {
	if len(items) == 0 {
		return Validationf("at least one consumption item is required")
	}
	var batchCount int64
	if err := db.Model(&Batch{}).Where("id = ?", batchID).Count(&batchCount).Error; err != nil {
		return err
	}
	if batchCount == 0 {
		return Referentialf("batch %d not found", batchID)
	}
	for _, it := range items {
		if it.Qty.LessThanOrEqual(decimal.Zero) {
			return Validationf("consumption qty must be positive for material %d", it.MaterialID)
		}
		var cnt int64
		if err := db.Model(&Material{}).Where("id = ?", it.MaterialID).Count(&cnt).Error; err != nil {
			return err
		}
		if cnt == 0 {
			return Referentialf("material %d not found", it.MaterialID)
		}
	}

	correlation := uuid.NewString()
	return db.Transaction(func(tx *gorm.DB) error {
		for _, it := range items {
			bid := batchID
			entry := InventoryLedgerEntry{
				MaterialID:     it.MaterialID,
				QuantityChange: it.Qty.Neg(),
				EntryType:      EntryConsumption,
				BatchID:        &bid,
				PerformedByID:  actorID,
				CorrelationID:  correlation,
			}
			if err := PostEntry(tx, &entry); err != nil {
				return err
			}
		}
		return nil
	})
}
