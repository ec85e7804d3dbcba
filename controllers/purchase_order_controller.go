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

// ListOrderableRequests returns APPROVED requests not yet on any order.
func ListOrderableRequests(c *gin.Context) {
	rows, err := models.ListOrderable(config.DB)
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "failed to list orderable requests", err)
		return
	}
	utils.Success(c, "orderable requests", rows)
}

type OrderCreateInput struct {
	VendorID     uint   `json:"vendor_id" binding:"required"`
	RequestIDs   []uint `json:"request_ids" binding:"required,min=1"`
	QuotationRef string `json:"quotation_ref"`
}

func CreateOrder(c *gin.Context) {
	adminID, err := currentAdminID(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	var in OrderCreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}

	po, err := models.CreatePurchaseOrder(config.DB, in.RequestIDs, in.VendorID, "", adminID)
	if err != nil {
		utils.HandleError(c, "failed to create order", err)
		return
	}
	if in.QuotationRef != "" {
		po, err = models.SetQuotation(config.DB, po.ID, in.QuotationRef)
		if err != nil {
			utils.HandleError(c, "order created but quotation not set", err)
			return
		}
	}

	service.RecordActivity(adminID, "purchase_order", po.ID, "po.created", po.OrderNo)
	utils.Created(c, "order created", po)
}

func ListOrders(c *gin.Context) {
	rows, err := models.ListOrders(config.DB, models.OrderStatus(c.Query("status")))
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "failed to list orders", err)
		return
	}
	utils.Success(c, "orders", rows)
}

func GetOrderByID(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	po, err := orderDetail(uint(id))
	if err != nil {
		utils.HandleError(c, "order not found", err)
		return
	}
	utils.Success(c, "order", po)
}

type OrderItemInput struct {
	Qty       decimal.Decimal `json:"qty" binding:"gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"gte=0"`
}

func UpdateOrderItem(c *gin.Context) {
	adminID, err := currentAdminID(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	poID, _ := strconv.Atoi(c.Param("id"))
	itemID, _ := strconv.Atoi(c.Param("itemId"))
	var in OrderItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}

	po, err := models.UpdateOrderItem(config.DB, uint(poID), uint(itemID), in.Qty, in.UnitPrice)
	if err != nil {
		utils.HandleError(c, "failed to update order line", err)
		return
	}

	service.RecordActivity(adminID, "purchase_order", po.ID, "po.line_updated", strconv.Itoa(itemID))
	utils.Success(c, "order line updated", po)
}

type QuotationInput struct {
	QuotationRef string `json:"quotation_ref" binding:"required"`
}

func SetOrderQuotation(c *gin.Context) {
	adminID, err := currentAdminID(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	poID, _ := strconv.Atoi(c.Param("id"))
	var in QuotationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}

	po, err := models.SetQuotation(config.DB, uint(poID), in.QuotationRef)
	if err != nil {
		utils.HandleError(c, "failed to set quotation", err)
		return
	}

	service.RecordActivity(adminID, "purchase_order", po.ID, "po.quotation_set", in.QuotationRef)
	utils.Success(c, "quotation set", po)
}

func ApproveOrder(c *gin.Context) {
	adminID, err := currentAdminID(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	poID, _ := strconv.Atoi(c.Param("id"))
	po, err := models.ApprovePurchaseOrder(config.DB, uint(poID))
	if err != nil {
		utils.HandleError(c, "failed to approve order", err)
		return
	}

	service.RecordActivity(adminID, "purchase_order", po.ID, "po.approved", po.OrderNo)
	utils.Success(c, "order issued", po)
}

// DeleteOrder removes an order; its requests become orderable again. The
// admin role is the elevated role, so deletion past PENDING_APPROVAL is
// allowed here.
func DeleteOrder(c *gin.Context) {
	adminID, err := currentAdminID(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	poID, _ := strconv.Atoi(c.Param("id"))
	po, err := models.DeletePurchaseOrder(config.DB, uint(poID), true)
	if err != nil {
		utils.HandleError(c, "failed to delete order", err)
		return
	}

	service.RecordActivity(adminID, "purchase_order", po.ID, "po.deleted", po.OrderNo)
	utils.Success(c, "order deleted, linked requests are orderable again", nil)
}

func orderDetail(id uint) (*models.PurchaseOrder, error) {
	var po models.PurchaseOrder
	err := config.DB.Preload("Vendor").Preload("Items").Preload("Items.Material").
		Preload("Requests").First(&po, id).Error
	if err != nil {
		return nil, err
	}
	return &po, nil
}
