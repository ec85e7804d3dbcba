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

// RecordPayment appends a voucher against a received order and rolls the
// order's paid status forward.
func RecordPayment(c *gin.Context) {
	adminID, err := currentAdminID(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	poID, _ := strconv.Atoi(c.Param("id"))
	var in models.PaymentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}

	result, err := models.RecordPayment(config.DB, uint(poID), in, adminID)
	if err != nil {
		utils.HandleError(c, "failed to record payment", err)
		return
	}

	service.RecordActivity(adminID, "purchase_order", uint(poID), "po.payment_recorded",
		result.Voucher.VoucherNo+" "+result.Voucher.Amount.String())
	utils.Created(c, "payment recorded", result)
}

// PaymentHistory lists an order's vouchers in payment order.
func PaymentHistory(c *gin.Context) {
	poID, _ := strconv.Atoi(c.Param("id"))
	rows, err := models.ListPayments(config.DB, uint(poID))
	if err != nil {
		utils.HandleError(c, "failed to list payments", err)
		return
	}
	utils.Success(c, "payments", rows)
}
