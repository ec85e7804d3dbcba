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

// ListPendingReplacements shows every rejected line across all receipts
// still waiting for a replacement delivery.
func ListPendingReplacements(c *gin.Context) {
	rows, err := models.PendingReplacements(config.DB)
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "failed to list pending replacements", err)
		return
	}
	utils.Success(c, "pending replacements", rows)
}

// ConfirmReplacement records the replacement delivery for one rejected line.
// All-or-nothing: the full rejected quantity is posted back to stock.
func ConfirmReplacement(c *gin.Context) {
	adminID, err := currentAdminID(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	grnID, _ := strconv.Atoi(c.Param("id"))
	itemID, _ := strconv.Atoi(c.Param("itemId"))

	item, err := models.ConfirmReplacement(config.DB, uint(grnID), uint(itemID), adminID)
	if err != nil {
		utils.HandleError(c, "failed to confirm replacement", err)
		return
	}

	service.RecordActivity(adminID, "goods_receipt", uint(grnID), "grn.replacement_confirmed",
		"line "+strconv.Itoa(itemID)+" qty "+item.RejectedQty.String())
	utils.Success(c, "replacement confirmed", item)
}
