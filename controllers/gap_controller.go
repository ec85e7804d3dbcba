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

// GapAnalyze sizes a request for one recipe line: required vs physical vs
// reserved-by-others. exclude_pr_id leaves out the request being edited so
// it does not reserve against itself. required_qty overrides the stored
// recipe when the batch collaborator supplies it inline.
func GapAnalyze(c *gin.Context) {
	batchID, _ := strconv.Atoi(c.Query("batch_id"))
	materialID, _ := strconv.Atoi(c.Query("material_id"))
	excludePR, _ := strconv.Atoi(c.DefaultQuery("exclude_pr_id", "0"))

	requiredQty := decimal.Zero
	if raw := c.Query("required_qty"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil || parsed.IsNegative() {
			utils.Error(c, http.StatusBadRequest, "required_qty must be a non-negative number", err)
			return
		}
		requiredQty = parsed
	}

	gap, err := models.AnalyzeGap(config.DB, uint(batchID), uint(materialID), requiredQty, uint(excludePR))
	if err != nil {
		utils.HandleError(c, "gap analysis failed", err)
		return
	}
	utils.Success(c, "gap analysis", gap)
}

type GapSubmitInput struct {
	BatchID      uint            `json:"batch_id" binding:"required"`
	MaterialID   uint            `json:"material_id" binding:"required"`
	RequestInput decimal.Decimal `json:"request_input" binding:"gte=0"`
}

// GapSubmit turns a sizing decision into records: a PENDING buy request
// and/or a STOCK_ALLOCATED reservation, atomically.
func GapSubmit(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	var in GapSubmitInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}

	result, err := models.SubmitGapRequest(config.DB, models.GapSubmission{
		BatchID:      in.BatchID,
		MaterialID:   in.MaterialID,
		RequestInput: in.RequestInput,
		ActorID:      userID,
	})
	if err != nil {
		utils.HandleError(c, "failed to submit request", err)
		return
	}

	if result.BuyRequestID != nil {
		service.RecordActivity(userID, "purchase_request", *result.BuyRequestID, "pr.created",
			"buy "+result.QtyToBuy.String())
	}
	if result.ReservationID != nil {
		service.RecordActivity(userID, "purchase_request", *result.ReservationID, "pr.reserved",
			"reserve "+result.QtyToReserve.String())
	}

	utils.Created(c, "request submitted", result)
}
