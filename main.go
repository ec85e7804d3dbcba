package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"go-postgres-procurement/config"
	"go-postgres-procurement/models"
	"go-postgres-procurement/routes"
	"go-postgres-procurement/utils"
)

func main() {
	_ = godotenv.Load()

	config.ConnectDB()
	config.ConnectRedis()

	if err := models.MigrateTables(config.DB); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	// override dev secrets from the environment
	if s := os.Getenv("ADMIN_JWT_SECRET"); s != "" {
		utils.AdminSecret = []byte(s)
	}
	if s := os.Getenv("USER_JWT_SECRET"); s != "" {
		utils.UserSecret = []byte(s)
	}

	utils.RegisterDecimalType()

	r := gin.Default()
	routes.SetupRoutes(r)

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "procurement API is running"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	_ = r.Run(":" + port)
}
