package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"go-postgres-procurement/config"
	"go-postgres-procurement/models"
	"go-postgres-procurement/service"
	"go-postgres-procurement/utils"
)

type AdjustmentInput struct {
	MaterialID     uint                   `json:"material_id" binding:"required"`
	QuantityChange decimal.Decimal        `json:"quantity_change"`
	EntryType      models.LedgerEntryType `json:"entry_type" binding:"required"`
	Reason         string                 `json:"reason" binding:"required"`
}

// PostAdjustment lets an admin post manual ADJUSTMENT or INITIAL entries.
// Workflow entry types (PROCUREMENT, CONSUMPTION, REPLACEMENT) are only ever
// posted by their own operations.
func PostAdjustment(c *gin.Context) {
	adminID, err := currentAdminID(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	var in AdjustmentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}
	if in.EntryType != models.EntryAdjustment && in.EntryType != models.EntryInitial {
		utils.Error(c, http.StatusBadRequest, "entry type must be ADJUSTMENT or INITIAL", nil)
		return
	}
	var cnt int64
	if err := config.DB.Model(&models.Material{}).Where("id = ?", in.MaterialID).Count(&cnt).Error; err != nil || cnt == 0 {
		utils.Error(c, http.StatusNotFound, "material not found", nil)
		return
	}

	entry := models.InventoryLedgerEntry{
		MaterialID:     in.MaterialID,
		QuantityChange: in.QuantityChange,
		EntryType:      in.EntryType,
		Reason:         in.Reason,
		PerformedByID:  adminID,
	}
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		return models.PostEntry(tx, &entry)
	})
	if err != nil {
		utils.HandleError(c, "failed to post ledger entry", err)
		return
	}

	service.RecordActivity(adminID, "ledger_entry", 0, "ledger.adjusted", entry.ID)
	utils.Created(c, "ledger entry posted", entry)
}

func LedgerByMaterial(c *gin.Context) {
	materialID, _ := strconv.Atoi(c.Param("materialId"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	rows, err := models.ListLedger(config.DB, uint(materialID), limit)
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "failed to load ledger", err)
		return
	}
	utils.Success(c, "ledger entries", rows)
}

func StockOnHand(c *gin.Context) {
	materialID, _ := strconv.Atoi(c.Param("materialId"))
	qty, err := models.QuantityOnHand(config.DB, uint(materialID))
	if err != nil {
		utils.HandleError(c, "failed to read on-hand quantity", err)
		return
	}
	utils.Success(c, "quantity on hand", gin.H{
		"material_id": materialID,
		"qty":         qty,
	})
}

type ConsumptionInput struct {
	Items []models.ConsumptionItem `json:"items" binding:"required,min=1"`
}

// CreateConsumption logs material usage for one batch as negative ledger
// deltas. Stock may go negative; procurement catches up later.
func CreateConsumption(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	batchID, _ := strconv.Atoi(c.Param("id"))
	var in ConsumptionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}

	if err := models.PostConsumption(config.DB, uint(batchID), in.Items, userID); err != nil {
		utils.HandleError(c, "failed to log consumption", err)
		return
	}

	service.RecordActivity(userID, "batch", uint(batchID), "consumption.logged", strconv.Itoa(len(in.Items))+" materials")
	utils.Created(c, "consumption logged", nil)
}
