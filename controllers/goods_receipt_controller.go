package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"go-postgres-procurement/config"
	"go-postgres-procurement/models"
	"go-postgres-procurement/service"
	"go-postgres-procurement/utils"
)

// OpenReceipt seeds a draft reconciliation for an ISSUED order: every line
// fully accepted until the operator says otherwise. Nothing is persisted.
func OpenReceipt(c *gin.Context) {
	poID, _ := strconv.Atoi(c.Param("poId"))
	draft, err := models.OpenReceiptDraft(config.DB, uint(poID))
	if err != nil {
		utils.HandleError(c, "failed to open receipt", err)
		return
	}
	utils.Success(c, "receipt draft", draft)
}

// SaveReceipt persists the reconciliation, posts accepted quantities to the
// ledger and moves the order to RECEIVED.
func SaveReceipt(c *gin.Context) {
	adminID, err := currentAdminID(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	var in models.ReceiptInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}

	grn, err := models.SaveGoodsReceipt(config.DB, in, adminID)
	if err != nil {
		utils.HandleError(c, "failed to save receipt", err)
		return
	}

	service.RecordActivity(adminID, "goods_receipt", grn.ID, "grn.saved", grn.ReceiptNo)
	utils.Created(c, "receipt saved", grn)
}

func ListReceipts(c *gin.Context) {
	rows, err := models.ListReceipts(config.DB)
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "failed to list receipts", err)
		return
	}
	utils.Success(c, "receipts", rows)
}

func GetReceiptByID(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	var grn models.GoodsReceipt
	if err := config.DB.Preload("Items").First(&grn, id).Error; err != nil {
		utils.HandleError(c, "receipt not found", err)
		return
	}
	utils.Success(c, "receipt", grn)
}
