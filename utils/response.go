package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"go-postgres-procurement/models"
)

func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"data":    data,
	})
}

func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{
		"message": message,
		"data":    data,
	})
}

func Error(c *gin.Context, status int, message string, err error) {
	resp := gin.H{"message": message}
	if err != nil {
		resp["error"] = err.Error()
	}
	c.JSON(status, resp)
}

// HandleError maps the domain error taxonomy to HTTP statuses: validation
// 400, state conflict 409, referential / not found 404, anything else 500
// (retryable, the caller re-issues the mutation).
func HandleError(c *gin.Context, message string, err error) {
	var (
		vErr *models.ValidationError
		sErr *models.StateConflictError
		rErr *models.ReferentialError
	)
	switch {
	case errors.As(err, &vErr):
		Error(c, http.StatusBadRequest, message, err)
	case errors.As(err, &sErr):
		Error(c, http.StatusConflict, message, err)
	case errors.As(err, &rErr):
		Error(c, http.StatusNotFound, message, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		Error(c, http.StatusNotFound, message, err)
	default:
		Error(c, http.StatusInternalServerError, message, err)
	}
}
