package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"go-postgres-procurement/config"
	"go-postgres-procurement/models"
	"go-postgres-procurement/utils"
)

// Identity is a boundary concern: these endpoints only exchange seeded
// credentials for tokens, there is no session state. Accounts are created
// with cmd/seed-admin.

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func AdminLogin(c *gin.Context) {
	var in LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}

	var admin models.Admin
	if err := config.DB.Where("username = ? AND is_active = true", in.Username).First(&admin).Error; err != nil {
		utils.Error(c, http.StatusUnauthorized, "unknown admin", nil)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(in.Password)) != nil {
		utils.Error(c, http.StatusUnauthorized, "wrong password", nil)
		return
	}

	token, err := utils.GenerateAdminToken(admin.ID, admin.Username, 24*time.Hour)
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "failed to issue token", err)
		return
	}

	now := time.Now().UTC()
	_ = config.DB.Model(&models.Admin{}).Where("id = ?", admin.ID).Update("last_login_at", &now).Error

	utils.Success(c, "admin login ok", gin.H{"token": token})
}

func UserLogin(c *gin.Context) {
	var in LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}

	var user models.User
	if err := config.DB.Where("username = ? AND is_active = true", in.Username).First(&user).Error; err != nil {
		utils.Error(c, http.StatusUnauthorized, "unknown user", nil)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		utils.Error(c, http.StatusUnauthorized, "wrong password", nil)
		return
	}

	token, err := utils.GenerateUserToken(user.ID, user.Username, 24*time.Hour)
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "failed to issue token", err)
		return
	}

	now := time.Now().UTC()
	_ = config.DB.Model(&models.User{}).Where("id = ?", user.ID).Update("last_login_at", &now).Error

	utils.Success(c, "login ok", gin.H{"token": token})
}
