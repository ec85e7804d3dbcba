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

// Reviewer side of the PR workflow.

func AdminListRequests(c *gin.Context) {
	rows, err := models.ListRequests(config.DB, 0, models.RequestStatus(c.Query("status")))
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "failed to list requests", err)
		return
	}
	utils.Success(c, "requests", rows)
}

type ReviewInput struct {
	Notes string `json:"notes"`
}

func ApproveRequest(c *gin.Context) {
	reviewRequest(c, true, "pr.approved")
}

func RejectRequest(c *gin.Context) {
	reviewRequest(c, false, "pr.rejected")
}

func reviewRequest(c *gin.Context, approve bool, action string) {
	adminID, err := currentAdminID(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	id, _ := strconv.Atoi(c.Param("id"))
	var in ReviewInput
	_ = c.ShouldBindJSON(&in)

	pr, err := models.ReviewPurchaseRequest(config.DB, uint(id), approve, in.Notes)
	if err != nil {
		utils.HandleError(c, "failed to review request", err)
		return
	}

	service.RecordActivity(adminID, "purchase_request", pr.ID, action, in.Notes)
	utils.Success(c, "request reviewed", pr)
}

// AdminDeleteRequest removes any requester's deletable request.
func AdminDeleteRequest(c *gin.Context) {
	adminID, err := currentAdminID(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	id, _ := strconv.Atoi(c.Param("id"))
	pr, err := models.DeletePurchaseRequest(config.DB, uint(id), adminID, true)
	if err != nil {
		utils.HandleError(c, "failed to delete request", err)
		return
	}

	service.RecordActivity(adminID, "purchase_request", pr.ID, "pr.deleted", string(pr.Status))
	utils.Success(c, "request deleted", nil)
}
