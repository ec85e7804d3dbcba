package models_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"go-postgres-procurement/models"
)

// Consumption may legitimately push stock negative; the ledger records it and
// the cost rollup prices the net usage at standard cost.
func TestConsumptionLedgerAndCostRollup(t *testing.T) {
	db := testDB(t)

	flour := mkMaterial(t, db, "2.5")
	sugar := mkMaterial(t, db, "4")
	batch := mkBatchWithRecipe(t, db, flour.ID, "100")
	seedStock(t, db, flour.ID, "60", 1)

	err := models.PostConsumption(db, batch.ID, []models.ConsumptionItem{
		{MaterialID: flour.ID, Qty: decimal.NewFromInt(100)},
		{MaterialID: sugar.ID, Qty: decimal.NewFromInt(10)},
	}, 1)
	if err != nil {
		t.Fatalf("PostConsumption: %v", err)
	}

	mustOnHand(t, db, flour.ID, "-40")
	mustOnHand(t, db, sugar.ID, "-10")

	rows, total, err := models.CalculateBatchMaterialCost(db, batch.ID)
	if err != nil {
		t.Fatalf("CalculateBatchMaterialCost: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("cost rows = %d, want 2", len(rows))
	}
	// 100 * 2.5 + 10 * 4 = 290
	if !total.Equal(decimal.RequireFromString("290")) {
		t.Fatalf("grand total = %s, want 290", total)
	}
	for _, r := range rows {
		if !r.TotalCost.Equal(r.ConsumedQty.Mul(r.StandardCost)) {
			t.Errorf("material %d: total %s != consumed %s * cost %s", r.MaterialID, r.TotalCost, r.ConsumedQty, r.StandardCost)
		}
	}

	// A later rebuild must land on the same number as the incremental
	// projection.
	sum, err := models.RebuildMaterialStock(db, flour.ID)
	if err != nil {
		t.Fatalf("RebuildMaterialStock: %v", err)
	}
	if !sum.Equal(decimal.RequireFromString("-40")) {
		t.Fatalf("rebuilt sum = %s, want -40", sum)
	}
}

func TestPostEntryRejectsBadInput(t *testing.T) {
	db := testDB(t)
	mat := mkMaterial(t, db, "1")

	cases := []struct {
		name  string
		entry models.InventoryLedgerEntry
	}{
		{"zero quantity", models.InventoryLedgerEntry{
			MaterialID: mat.ID, QuantityChange: decimal.Zero, EntryType: models.EntryAdjustment, PerformedByID: 1,
		}},
		{"missing material", models.InventoryLedgerEntry{
			QuantityChange: decimal.NewFromInt(1), EntryType: models.EntryAdjustment, PerformedByID: 1,
		}},
		{"unknown entry type", models.InventoryLedgerEntry{
			MaterialID: mat.ID, QuantityChange: decimal.NewFromInt(1), EntryType: "TRANSFER", PerformedByID: 1,
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := tc.entry
			err := models.PostEntry(db, &e)
			var verr *models.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want *ValidationError", err)
			}
		})
	}
}
