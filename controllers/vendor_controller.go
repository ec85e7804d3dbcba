package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"go-postgres-procurement/config"
	"go-postgres-procurement/models"
	"go-postgres-procurement/utils"
)

type VendorInput struct {
	Name          string `json:"name" binding:"required"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
}

func GetAllVendors(c *gin.Context) {
	var rows []models.Vendor
	if err := config.DB.Order("name ASC").Find(&rows).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "failed to list vendors", err)
		return
	}
	utils.Success(c, "vendors", rows)
}

func GetVendorByID(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	var v models.Vendor
	if err := config.DB.First(&v, id).Error; err != nil {
		utils.HandleError(c, "vendor not found", err)
		return
	}
	utils.Success(c, "vendor", v)
}

func CreateVendor(c *gin.Context) {
	var in VendorInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}
	v := models.Vendor{
		Name:          in.Name,
		ContactPerson: in.ContactPerson,
		Phone:         in.Phone,
		Email:         in.Email,
		Address:       in.Address,
		IsActive:      true,
	}
	if err := config.DB.Create(&v).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "failed to create vendor", err)
		return
	}
	utils.Created(c, "vendor created", v)
}

func UpdateVendor(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	var v models.Vendor
	if err := config.DB.First(&v, id).Error; err != nil {
		utils.HandleError(c, "vendor not found", err)
		return
	}
	var in VendorInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}
	v.Name = in.Name
	v.ContactPerson = in.ContactPerson
	v.Phone = in.Phone
	v.Email = in.Email
	v.Address = in.Address
	if err := config.DB.Save(&v).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "failed to update vendor", err)
		return
	}
	utils.Success(c, "vendor updated", v)
}

func DeleteVendor(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	var cnt int64
	if err := config.DB.Model(&models.PurchaseOrder{}).
		Where("vendor_id = ?", id).Count(&cnt).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "failed to check orders", err)
		return
	}
	if cnt > 0 {
		utils.Error(c, http.StatusConflict, "vendor has purchase orders and cannot be deleted", nil)
		return
	}
	if err := config.DB.Delete(&models.Vendor{}, id).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "failed to delete vendor", err)
		return
	}
	utils.Success(c, "vendor deleted", nil)
}
