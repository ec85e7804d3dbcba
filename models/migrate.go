package models

import "gorm.io/gorm"

// MigrateTables creates/updates the schema. Called from main and from the
// DB-backed tests.
func MigrateTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&Admin{},
		&User{},
		&Material{},
		&MaterialStock{},
		&Vendor{},
		&Batch{},
		&BatchMaterial{},
		&InventoryLedgerEntry{},
		&PurchaseRequest{},
		&PurchaseOrder{},
		&PurchaseOrderItem{},
		&GoodsReceipt{},
		&GoodsReceiptItem{},
		&PaymentVoucher{},
	)
}
