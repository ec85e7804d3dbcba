package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"go-postgres-procurement/config"
	"go-postgres-procurement/models"
	"go-postgres-procurement/utils"
)

// Materials are master data from an upstream collaborator; the endpoints
// below exist so the rest of the workflows have something to reference.

type MaterialInput struct {
	Code         string          `json:"code" binding:"required"`
	Name         string          `json:"name" binding:"required"`
	UOM          string          `json:"uom" binding:"required"`
	StandardCost decimal.Decimal `json:"standard_cost" binding:"gte=0"`
}

func GetAllMaterials(c *gin.Context) {
	var rows []models.Material
	if err := config.DB.Order("code ASC").Find(&rows).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "failed to list materials", err)
		return
	}
	utils.Success(c, "materials", rows)
}

func GetMaterialByID(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	var m models.Material
	if err := config.DB.First(&m, id).Error; err != nil {
		utils.HandleError(c, "material not found", err)
		return
	}
	utils.Success(c, "material", m)
}

func CreateMaterial(c *gin.Context) {
	var in MaterialInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}
	m := models.Material{
		Code:         in.Code,
		Name:         in.Name,
		UOM:          in.UOM,
		StandardCost: in.StandardCost,
	}
	if err := config.DB.Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			utils.Error(c, http.StatusBadRequest, "material code already exists", err)
			return
		}
		utils.Error(c, http.StatusInternalServerError, "failed to create material", err)
		return
	}
	utils.Created(c, "material created", m)
}

func UpdateMaterial(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	var m models.Material
	if err := config.DB.First(&m, id).Error; err != nil {
		utils.HandleError(c, "material not found", err)
		return
	}
	var in MaterialInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}
	m.Code = in.Code
	m.Name = in.Name
	m.UOM = in.UOM
	m.StandardCost = in.StandardCost
	if err := config.DB.Save(&m).Error; err != nil {
		if isUniqueViolation(err) {
			utils.Error(c, http.StatusBadRequest, "material code already exists", err)
			return
		}
		utils.Error(c, http.StatusInternalServerError, "failed to update material", err)
		return
	}
	utils.Success(c, "material updated", m)
}

func DeleteMaterial(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	var cnt int64
	if err := config.DB.Model(&models.InventoryLedgerEntry{}).
		Where("material_id = ?", id).Count(&cnt).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "failed to check ledger", err)
		return
	}
	if cnt > 0 {
		utils.Error(c, http.StatusConflict, "material has ledger history and cannot be deleted", nil)
		return
	}
	if err := config.DB.Delete(&models.Material{}, id).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "failed to delete material", err)
		return
	}
	utils.Success(c, "material deleted", nil)
}

// isUniqueViolation checks for postgres error 23505.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
