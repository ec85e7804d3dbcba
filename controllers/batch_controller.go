package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"

	"go-postgres-procurement/config"
	"go-postgres-procurement/models"
	"go-postgres-procurement/utils"
)

// Batches and their recipes come in from the batch collaborator; these
// endpoints are the ingestion side of that contract.

type BatchInput struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name" binding:"required"`
}

type RecipeLineInput struct {
	MaterialID  uint            `json:"material_id" binding:"required"`
	RequiredQty decimal.Decimal `json:"required_qty" binding:"gt=0"`
}

func GetAllBatches(c *gin.Context) {
	var rows []models.Batch
	if err := config.DB.Order("id DESC").Find(&rows).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "failed to list batches", err)
		return
	}
	utils.Success(c, "batches", rows)
}

func CreateBatch(c *gin.Context) {
	var in BatchInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}
	b := models.Batch{Code: in.Code, Name: in.Name}
	if err := config.DB.Create(&b).Error; err != nil {
		if isUniqueViolation(err) {
			utils.Error(c, http.StatusBadRequest, "batch code already exists", err)
			return
		}
		utils.Error(c, http.StatusInternalServerError, "failed to create batch", err)
		return
	}
	utils.Created(c, "batch created", b)
}

// SetBatchRecipe upserts the batch's material requirements, one row per
// material.
func SetBatchRecipe(c *gin.Context) {
	batchID, _ := strconv.Atoi(c.Param("id"))

	var b models.Batch
	if err := config.DB.First(&b, batchID).Error; err != nil {
		utils.HandleError(c, "batch not found", err)
		return
	}

	var in []RecipeLineInput
	if err := c.ShouldBindJSON(&in); err != nil || len(in) == 0 {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}

	for _, line := range in {
		var cnt int64
		if err := config.DB.Model(&models.Material{}).Where("id = ?", line.MaterialID).Count(&cnt).Error; err != nil || cnt == 0 {
			utils.Error(c, http.StatusNotFound, "material not found", nil)
			return
		}
	}

	rows := make([]models.BatchMaterial, 0, len(in))
	for _, line := range in {
		rows = append(rows, models.BatchMaterial{
			BatchID:     b.ID,
			MaterialID:  line.MaterialID,
			RequiredQty: line.RequiredQty,
		})
	}
	err := config.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "batch_id"}, {Name: "material_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"required_qty", "updated_at"}),
	}).Create(&rows).Error
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "failed to save recipe", err)
		return
	}
	utils.Success(c, "recipe saved", rows)
}

func GetBatchRecipe(c *gin.Context) {
	batchID, _ := strconv.Atoi(c.Param("id"))
	var rows []models.BatchMaterial
	if err := config.DB.Preload("Material").
		Where("batch_id = ?", batchID).Order("material_id").
		Find(&rows).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "failed to load recipe", err)
		return
	}
	utils.Success(c, "recipe", rows)
}

// BatchMaterialCost is the outbound cost rollup for the pricing collaborator.
func BatchMaterialCost(c *gin.Context) {
	batchID, _ := strconv.Atoi(c.Param("id"))
	rows, total, err := models.CalculateBatchMaterialCost(config.DB, uint(batchID))
	if err != nil {
		utils.HandleError(c, "failed to calculate batch cost", err)
		return
	}
	utils.Success(c, "batch material cost", gin.H{
		"batch_id":    batchID,
		"materials":   rows,
		"grand_total": total,
	})
}
