package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"go-postgres-procurement/config"
	"go-postgres-procurement/models"
)

// Seeds one account so the API has someone to log in as. Accounts are
// otherwise owned by the identity collaborator.
func main() {
	username := flag.String("username", "", "Required: login username")
	password := flag.String("password", "", "Required: initial password")
	fullName := flag.String("full-name", "", "Display name")
	role := flag.String("role", "admin", "admin or operator")
	flag.Parse()

	if *username == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "--username and --password are required")
		os.Exit(1)
	}

	_ = godotenv.Load()
	config.ConnectDB()
	if err := models.MigrateTables(config.DB); err != nil {
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash failed: %v\n", err)
		os.Exit(1)
	}

	switch *role {
	case "admin":
		admin := models.Admin{
			Username:     *username,
			FullName:     *fullName,
			PasswordHash: string(hash),
			IsActive:     true,
		}
		if err := config.DB.Create(&admin).Error; err != nil {
			fmt.Fprintf(os.Stderr, "create admin failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("admin %q created (id=%d)\n", admin.Username, admin.ID)
	case "operator":
		user := models.User{
			Username:     *username,
			FullName:     *fullName,
			PasswordHash: string(hash),
			IsActive:     true,
		}
		if err := config.DB.Create(&user).Error; err != nil {
			fmt.Fprintf(os.Stderr, "create operator failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("operator %q created (id=%d)\n", user.Username, user.ID)
	default:
		fmt.Fprintf(os.Stderr, "unknown role %q\n", *role)
		os.Exit(1)
	}
}
