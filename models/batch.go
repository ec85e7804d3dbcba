package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Batch is a production batch. The batch collaborator owns its lifecycle;
// procurement only needs the recipe rows below as input.
type Batch struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"uniqueIndex;size:100;not null" json:"code"`
	Name      string    `gorm:"size:200;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BatchMaterial is one recipe row: how much of a material the batch needs.
type BatchMaterial struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	BatchID     uint            `gorm:"index:idx_batch_material,unique;not null" json:"batch_id"`
	MaterialID  uint            `gorm:"index:idx_batch_material,unique;not null" json:"material_id"`
	Material    Material        `gorm:"foreignKey:MaterialID" json:"material"`
	RequiredQty decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"required_qty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
