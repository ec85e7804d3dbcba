package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-postgres-procurement/utils"
)

// AdminAuth gates the elevated role: review, approval, receiving, payments.
func AdminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := utils.VerifyAdminToken(bearerToken(c))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid admin token"})
			c.Abort()
			return
		}
		id := utils.ClaimUint(claims, "admin_id")
		if id == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid admin token"})
			c.Abort()
			return
		}
		c.Set("admin_id", id)
		c.Set("username", claims["username"])
		c.Next()
	}
}

// UserAuth gates requester endpoints: gap analysis, request submission,
// consumption logging.
func UserAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := utils.VerifyUserToken(bearerToken(c))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}
		id := utils.ClaimUint(claims, "user_id")
		if id == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}
		c.Set("user_id", id)
		c.Set("username", claims["username"])
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	return strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
}
