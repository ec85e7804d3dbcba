package models_test

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"go-postgres-procurement/config"
	"go-postgres-procurement/models"
)

var fixtureSeq atomic.Int64

// testDB connects once per process and migrates. Requires a disposable
// Postgres reachable through the usual DB_* / DATABASE_URL env vars.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run DB-backed tests (requires postgres)")
	}
	if config.DB == nil {
		config.ConnectDB()
		config.ConnectRedis()
		if err := models.MigrateTables(config.DB); err != nil {
			t.Fatalf("MigrateTables: %v", err)
		}
	}
	return config.DB
}

func uniqCode(prefix string) string {
	return fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixNano(), fixtureSeq.Add(1))
}

func mkMaterial(t *testing.T, db *gorm.DB, cost string) *models.Material {
	t.Helper()
	m := models.Material{
		Code:         uniqCode("MAT"),
		Name:         "Test Material",
		UOM:          "kg",
		StandardCost: decimal.RequireFromString(cost),
	}
	if err := db.Create(&m).Error; err != nil {
		t.Fatalf("create material: %v", err)
	}
	return &m
}

func mkBatchWithRecipe(t *testing.T, db *gorm.DB, materialID uint, requiredQty string) *models.Batch {
	t.Helper()
	b := models.Batch{Code: uniqCode("BATCH"), Name: "Test Batch"}
	if err := db.Create(&b).Error; err != nil {
		t.Fatalf("create batch: %v", err)
	}
	bm := models.BatchMaterial{
		BatchID:     b.ID,
		MaterialID:  materialID,
		RequiredQty: decimal.RequireFromString(requiredQty),
	}
	if err := db.Create(&bm).Error; err != nil {
		t.Fatalf("create recipe row: %v", err)
	}
	return &b
}

func mkVendor(t *testing.T, db *gorm.DB) *models.Vendor {
	t.Helper()
	v := models.Vendor{Name: uniqCode("Vendor")}
	if err := db.Create(&v).Error; err != nil {
		t.Fatalf("create vendor: %v", err)
	}
	return &v
}

func seedStock(t *testing.T, db *gorm.DB, materialID uint, qty string, actorID uint) {
	t.Helper()
	err := models.PostEntry(db, &models.InventoryLedgerEntry{
		MaterialID:     materialID,
		QuantityChange: decimal.RequireFromString(qty),
		EntryType:      models.EntryInitial,
		Reason:         "opening stock",
		PerformedByID:  actorID,
	})
	if err != nil {
		t.Fatalf("seed stock: %v", err)
	}
}

func mustOnHand(t *testing.T, db *gorm.DB, materialID uint, want string) {
	t.Helper()
	sum, err := models.LedgerSum(db, materialID)
	if err != nil {
		t.Fatalf("LedgerSum: %v", err)
	}
	if !sum.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("ledger sum = %s, want %s", sum, want)
	}
	onHand, err := models.QuantityOnHand(db, materialID)
	if err != nil {
		t.Fatalf("QuantityOnHand: %v", err)
	}
	if !onHand.Equal(sum) {
		t.Fatalf("projection %s disagrees with ledger sum %s", onHand, sum)
	}
}

// issuedOrderFor walks one request through approval into an ISSUED order.
func issuedOrderFor(t *testing.T, db *gorm.DB, prID, vendorID uint) *models.PurchaseOrder {
	t.Helper()
	if _, err := models.ReviewPurchaseRequest(db, prID, true, "ok"); err != nil {
		t.Fatalf("approve request: %v", err)
	}
	po, err := models.CreatePurchaseOrder(db, []uint{prID}, vendorID, "", 1)
	if err != nil {
		t.Fatalf("CreatePurchaseOrder: %v", err)
	}
	if _, err := models.SetQuotation(db, po.ID, "QT-TEST-1"); err != nil {
		t.Fatalf("SetQuotation: %v", err)
	}
	po, err = models.ApprovePurchaseOrder(db, po.ID)
	if err != nil {
		t.Fatalf("ApprovePurchaseOrder: %v", err)
	}
	if po.Status != models.OrderIssued {
		t.Fatalf("order status = %s, want %s", po.Status, models.OrderIssued)
	}
	return po
}

// Scenario: recipe needs 50, 20 in stock, operator buys 30 and reserves 20.
func TestGapSubmitSplitsBuyAndReservation(t *testing.T) {
	db := testDB(t)

	mat := mkMaterial(t, db, "10")
	batch := mkBatchWithRecipe(t, db, mat.ID, "50")
	seedStock(t, db, mat.ID, "20", 1)

	gap, err := models.AnalyzeGap(db, batch.ID, mat.ID, decimal.Zero, 0)
	if err != nil {
		t.Fatalf("AnalyzeGap: %v", err)
	}
	if !gap.Available.Equal(decimal.NewFromInt(20)) || !gap.Deficit.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("gap = available %s deficit %s, want 20/30", gap.Available, gap.Deficit)
	}

	res, err := models.SubmitGapRequest(db, models.GapSubmission{
		BatchID:      batch.ID,
		MaterialID:   mat.ID,
		RequestInput: decimal.NewFromInt(30),
		ActorID:      1,
	})
	if err != nil {
		t.Fatalf("SubmitGapRequest: %v", err)
	}
	if res.BuyRequestID == nil || res.ReservationID == nil {
		t.Fatalf("expected both buy request and reservation, got %+v", res)
	}

	var buy, resv models.PurchaseRequest
	if err := db.First(&buy, *res.BuyRequestID).Error; err != nil {
		t.Fatalf("load buy request: %v", err)
	}
	if err := db.First(&resv, *res.ReservationID).Error; err != nil {
		t.Fatalf("load reservation: %v", err)
	}
	if buy.Status != models.RequestPending || !buy.RequestedQty.Equal(decimal.NewFromInt(30)) {
		t.Errorf("buy request = %s %s, want PENDING 30", buy.Status, buy.RequestedQty)
	}
	if resv.Status != models.RequestStockAllocated || !resv.RequestedQty.Equal(decimal.NewFromInt(20)) {
		t.Errorf("reservation = %s %s, want STOCK_ALLOCATED 20", resv.Status, resv.RequestedQty)
	}

	// The reservation now eats the availability for a second batch.
	other := mkBatchWithRecipe(t, db, mat.ID, "10")
	gap2, err := models.AnalyzeGap(db, other.ID, mat.ID, decimal.Zero, 0)
	if err != nil {
		t.Fatalf("AnalyzeGap (second batch): %v", err)
	}
	if !gap2.Available.Equal(decimal.Zero) || !gap2.Deficit.Equal(decimal.NewFromInt(10)) {
		t.Errorf("second batch gap = available %s deficit %s, want 0/10", gap2.Available, gap2.Deficit)
	}

	// Deleting the reservation releases it.
	if _, err := models.DeletePurchaseRequest(db, *res.ReservationID, 1, false); err != nil {
		t.Fatalf("delete reservation: %v", err)
	}
	gap3, err := models.AnalyzeGap(db, other.ID, mat.ID, decimal.Zero, 0)
	if err != nil {
		t.Fatalf("AnalyzeGap (after release): %v", err)
	}
	if !gap3.Available.Equal(decimal.NewFromInt(20)) {
		t.Errorf("available after release = %s, want 20", gap3.Available)
	}
}

// Scenario: 100 ordered, 80 accepted, 20 rejected, replacement confirmed once.
func TestReceiptRejectionAndReplacementLoop(t *testing.T) {
	db := testDB(t)

	mat := mkMaterial(t, db, "5")
	batch := mkBatchWithRecipe(t, db, mat.ID, "100")
	vendor := mkVendor(t, db)

	res, err := models.SubmitGapRequest(db, models.GapSubmission{
		BatchID:      batch.ID,
		MaterialID:   mat.ID,
		RequestInput: decimal.NewFromInt(100),
		ActorID:      1,
	})
	if err != nil {
		t.Fatalf("SubmitGapRequest: %v", err)
	}
	po := issuedOrderFor(t, db, *res.BuyRequestID, vendor.ID)

	grn, err := models.SaveGoodsReceipt(db, models.ReceiptInput{
		PurchaseOrderID: po.ID,
		SupplierRef:     "DN-77",
		ProofRef:        "photo-77",
		Items: []models.ReceiptLineInput{{
			PurchaseOrderItemID: po.Items[0].ID,
			AcceptedQty:         decimal.NewFromInt(80),
			RejectedQty:         decimal.NewFromInt(20),
		}},
	}, 1)
	if err != nil {
		t.Fatalf("SaveGoodsReceipt: %v", err)
	}

	// Only the accepted quantity hits the ledger; the order is RECEIVED
	// regardless of the rejection.
	mustOnHand(t, db, mat.ID, "80")
	reloaded, err := models.ListOrders(db, models.OrderReceived)
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	found := false
	for i := range reloaded {
		if reloaded[i].ID == po.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("order %d not RECEIVED after receipt", po.ID)
	}

	pending, err := models.PendingReplacements(db)
	if err != nil {
		t.Fatalf("PendingReplacements: %v", err)
	}
	var line *models.PendingReplacement
	for i := range pending {
		if pending[i].GoodsReceiptID == grn.ID {
			line = &pending[i]
		}
	}
	if line == nil {
		t.Fatalf("rejected line missing from pending replacements")
	}
	if !line.RejectedQty.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("pending rejected qty = %s, want 20", line.RejectedQty)
	}

	if _, err := models.ConfirmReplacement(db, grn.ID, line.ItemID, 1); err != nil {
		t.Fatalf("ConfirmReplacement: %v", err)
	}
	mustOnHand(t, db, mat.ID, "100")

	// Confirming twice must not post a second entry.
	_, err = models.ConfirmReplacement(db, grn.ID, line.ItemID, 1)
	var conflict *models.StateConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("second confirm err = %v, want *StateConflictError", err)
	}
	mustOnHand(t, db, mat.ID, "100")

	pending, err = models.PendingReplacements(db)
	if err != nil {
		t.Fatalf("PendingReplacements (after confirm): %v", err)
	}
	for i := range pending {
		if pending[i].GoodsReceiptID == grn.ID {
			t.Fatalf("line still pending after confirmation")
		}
	}
}

// Scenario: $500 order, $300 then $200 recorded against it.
func TestCumulativePaymentsDriveOrderStatus(t *testing.T) {
	db := testDB(t)

	mat := mkMaterial(t, db, "5")
	batch := mkBatchWithRecipe(t, db, mat.ID, "100")
	vendor := mkVendor(t, db)

	res, err := models.SubmitGapRequest(db, models.GapSubmission{
		BatchID:      batch.ID,
		MaterialID:   mat.ID,
		RequestInput: decimal.NewFromInt(100),
		ActorID:      1,
	})
	if err != nil {
		t.Fatalf("SubmitGapRequest: %v", err)
	}
	po := issuedOrderFor(t, db, *res.BuyRequestID, vendor.ID)
	if !po.TotalAmount.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("order total = %s, want 500", po.TotalAmount)
	}

	// Payment before delivery is refused.
	_, err = models.RecordPayment(db, po.ID, models.PaymentInput{
		Amount: decimal.NewFromInt(300), Method: "bank", ProofRef: "slip-0",
	}, 1)
	var conflict *models.StateConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("pre-delivery payment err = %v, want *StateConflictError", err)
	}

	if _, err := models.SaveGoodsReceipt(db, models.ReceiptInput{
		PurchaseOrderID: po.ID,
		SupplierRef:     "DN-1",
		ProofRef:        "photo-1",
		Items: []models.ReceiptLineInput{{
			PurchaseOrderItemID: po.Items[0].ID,
			AcceptedQty:         decimal.NewFromInt(100),
			RejectedQty:         decimal.Zero,
		}},
	}, 1); err != nil {
		t.Fatalf("SaveGoodsReceipt: %v", err)
	}

	first, err := models.RecordPayment(db, po.ID, models.PaymentInput{
		Amount: decimal.NewFromInt(300), Method: "bank", ProofRef: "slip-1",
	}, 1)
	if err != nil {
		t.Fatalf("first payment: %v", err)
	}
	if first.Status != models.OrderPartialPaid || !first.PaidToDate.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("after $300: status %s paid %s, want PARTIAL_PAID 300", first.Status, first.PaidToDate)
	}

	second, err := models.RecordPayment(db, po.ID, models.PaymentInput{
		Amount: decimal.NewFromInt(200), Method: "bank", ProofRef: "slip-2",
	}, 1)
	if err != nil {
		t.Fatalf("second payment: %v", err)
	}
	if second.Status != models.OrderPaid || !second.PaidToDate.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("after $500: status %s paid %s, want PAID 500", second.Status, second.PaidToDate)
	}

	vouchers, err := models.ListPayments(db, po.ID)
	if err != nil {
		t.Fatalf("ListPayments: %v", err)
	}
	if len(vouchers) != 2 {
		t.Fatalf("voucher count = %d, want 2", len(vouchers))
	}
}

// Scenario: deleting a pending-approval order puts its requests back in the
// orderable pool.
func TestOrderDeleteRevertsRequests(t *testing.T) {
	db := testDB(t)

	mat := mkMaterial(t, db, "2")
	batch := mkBatchWithRecipe(t, db, mat.ID, "40")
	vendor := mkVendor(t, db)

	res, err := models.SubmitGapRequest(db, models.GapSubmission{
		BatchID:      batch.ID,
		MaterialID:   mat.ID,
		RequestInput: decimal.NewFromInt(40),
		ActorID:      1,
	})
	if err != nil {
		t.Fatalf("SubmitGapRequest: %v", err)
	}
	prID := *res.BuyRequestID
	if _, err := models.ReviewPurchaseRequest(db, prID, true, ""); err != nil {
		t.Fatalf("approve request: %v", err)
	}
	po, err := models.CreatePurchaseOrder(db, []uint{prID}, vendor.ID, "", 1)
	if err != nil {
		t.Fatalf("CreatePurchaseOrder: %v", err)
	}

	// Ordered requests are locked against deletion.
	_, err = models.DeletePurchaseRequest(db, prID, 1, true)
	var conflict *models.StateConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("delete ordered request err = %v, want *StateConflictError", err)
	}

	if _, err := models.DeletePurchaseOrder(db, po.ID, false); err != nil {
		t.Fatalf("DeletePurchaseOrder: %v", err)
	}

	var pr models.PurchaseRequest
	if err := db.First(&pr, prID).Error; err != nil {
		t.Fatalf("reload request: %v", err)
	}
	if pr.Status != models.RequestApproved || pr.PurchaseOrderID != nil {
		t.Fatalf("request after order delete = %s (po %v), want APPROVED unlinked", pr.Status, pr.PurchaseOrderID)
	}

	orderable, err := models.ListOrderable(db)
	if err != nil {
		t.Fatalf("ListOrderable: %v", err)
	}
	found := false
	for i := range orderable {
		if orderable[i].ID == prID {
			found = true
		}
	}
	if !found {
		t.Fatalf("request %d missing from orderable pool", prID)
	}
}

// Scenario: resubmitting a gap after stock moved adjusts the reservation in
// the same transaction as the buy request.
func TestRequestEditRebalancesReservation(t *testing.T) {
	db := testDB(t)

	mat := mkMaterial(t, db, "3")
	batch := mkBatchWithRecipe(t, db, mat.ID, "50")
	seedStock(t, db, mat.ID, "20", 1)

	res, err := models.SubmitGapRequest(db, models.GapSubmission{
		BatchID:      batch.ID,
		MaterialID:   mat.ID,
		RequestInput: decimal.NewFromInt(30),
		ActorID:      7,
	})
	if err != nil {
		t.Fatalf("SubmitGapRequest: %v", err)
	}

	// Operator decides to buy everything instead.
	upd, err := models.UpdatePurchaseRequest(db, *res.BuyRequestID, decimal.NewFromInt(50), 7)
	if err != nil {
		t.Fatalf("UpdatePurchaseRequest: %v", err)
	}
	if !upd.QtyToBuy.Equal(decimal.NewFromInt(50)) || !upd.QtyToReserve.IsZero() {
		t.Fatalf("split after edit = buy %s reserve %s, want 50/0", upd.QtyToBuy, upd.QtyToReserve)
	}
	if upd.ReservationID != nil {
		t.Fatalf("reservation should be released when nothing is left to reserve")
	}

	var count int64
	if err := db.Model(&models.PurchaseRequest{}).
		Where("batch_id = ? AND material_id = ? AND status = ?", batch.ID, mat.ID, models.RequestStockAllocated).
		Count(&count).Error; err != nil {
		t.Fatalf("count reservations: %v", err)
	}
	if count != 0 {
		t.Fatalf("reservation rows = %d, want 0", count)
	}

	// A wrong owner cannot edit.
	_, err = models.UpdatePurchaseRequest(db, *res.BuyRequestID, decimal.NewFromInt(10), 99)
	var conflict *models.StateConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("foreign edit err = %v, want *StateConflictError", err)
	}
}
