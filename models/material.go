package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Material is master data owned by an upstream collaborator; the core only
// checks referential existence and reads uom/standard cost.
type Material struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Code         string          `gorm:"uniqueIndex;size:100;not null" json:"code"`
	Name         string          `gorm:"size:200;not null" json:"name"`
	UOM          string          `gorm:"size:30;not null" json:"uom"`
	StandardCost decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"standard_cost"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// MaterialStock is the cached on-hand projection per material. It is derived
// from the ledger and rebuildable at any time; the ledger sum stays the
// source of truth.
type MaterialStock struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	MaterialID uint            `gorm:"uniqueIndex;not null" json:"material_id"`
	Qty        decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"qty"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
