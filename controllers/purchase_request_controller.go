package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"go-postgres-procurement/config"
	"go-postgres-procurement/models"
	"go-postgres-procurement/service"
	"go-postgres-procurement/utils"
)

// Requester side of the PR workflow.

func MyRequests(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	rows, err := models.ListRequests(config.DB, userID, models.RequestStatus(c.Query("status")))
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "failed to list requests", err)
		return
	}
	utils.Success(c, "my requests", rows)
}

type RequestUpdateInput struct {
	RequestInput decimal.Decimal `json:"request_input" binding:"gte=0"`
}

// UpdateRequest re-splits an editable request. A REJECTED request returns to
// PENDING for a fresh review.
func UpdateRequest(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	id, _ := strconv.Atoi(c.Param("id"))
	var in RequestUpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}

	result, err := models.UpdatePurchaseRequest(config.DB, uint(id), in.RequestInput, userID)
	if err != nil {
		utils.HandleError(c, "failed to update request", err)
		return
	}

	service.RecordActivity(userID, "purchase_request", uint(id), "pr.updated",
		"buy "+result.QtyToBuy.String()+", reserve "+result.QtyToReserve.String())
	utils.Success(c, "request updated", result)
}

// DeleteRequest removes a request the caller owns. Deleting a reservation
// releases it; APPROVED/ORDERED requests are refused.
func DeleteRequest(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	id, _ := strconv.Atoi(c.Param("id"))
	pr, err := models.DeletePurchaseRequest(config.DB, uint(id), userID, false)
	if err != nil {
		utils.HandleError(c, "failed to delete request", err)
		return
	}

	action := "pr.deleted"
	if pr.Status == models.RequestStockAllocated {
		action = "pr.reservation_released"
	}
	service.RecordActivity(userID, "purchase_request", pr.ID, action, string(pr.Status))
	utils.Success(c, "request deleted", nil)
}
