package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BatchMaterialCost is one material's consumption rollup for a batch: net
// consumed quantity times the material's standard cost.
type BatchMaterialCost struct {
	MaterialID   uint            `json:"material_id"`
	MaterialCode string          `json:"material_code"`
	MaterialName string          `json:"material_name"`
	UOM          string          `json:"uom"`
	ConsumedQty  decimal.Decimal `json:"consumed_qty"`
	StandardCost decimal.Decimal `json:"standard_cost"`
	TotalCost    decimal.Decimal `json:"total_cost"`
}

// CalculateBatchMaterialCost sums the negative ledger deltas tagged with the
// batch (consumption net of corrections) per material and prices them at
// standard cost.
func CalculateBatchMaterialCost(db *gorm.DB, batchID uint) ([]BatchMaterialCost, decimal.Decimal, error) {
	if err := mustExist(db, &Batch{}, batchID, "batch"); err != nil {
		return nil, decimal.Zero, err
	}

	var rows []BatchMaterialCost
	err := db.Table("inventory_ledger_entries AS e").
		Joins("JOIN materials AS m ON m.id = e.material_id").
		Select("e.material_id, m.code AS material_code, m.name AS material_name, m.uom, -SUM(e.quantity_change) AS consumed_qty, m.standard_cost").
		Where("e.batch_id = ? AND e.quantity_change < 0", batchID).
		Group("e.material_id, m.code, m.name, m.uom, m.standard_cost").
		Order("e.material_id").
		Scan(&rows).Error
	if err != nil {
		return nil, decimal.Zero, err
	}

	grandTotal := decimal.Zero
	for i := range rows {
		rows[i].TotalCost = rows[i].ConsumedQty.Mul(rows[i].StandardCost)
		grandTotal = grandTotal.Add(rows[i].TotalCost)
	}
	return rows, grandTotal, nil
}
