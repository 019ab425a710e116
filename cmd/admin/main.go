// Command admin manages superuser accounts from the command line.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"refugio/internal/config"
	"refugio/internal/database"
	"refugio/internal/models"

	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/admin/main.go promote <user_id>   - Promote user to superuser")
		fmt.Println("  go run ./cmd/admin/main.go demote <user_id>    - Demote user from superuser")
		fmt.Println("  go run ./cmd/admin/main.go list-admins         - List all superusers")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	command := os.Args[1]

	switch command {
	case "promote":
		if len(os.Args) < 3 {
			fmt.Println("Usage: go run ./cmd/admin/main.go promote <user_id>")
			os.Exit(1)
		}
		setSuperuser(db, os.Args[2], true)

	case "demote":
		if len(os.Args) < 3 {
			fmt.Println("Usage: go run ./cmd/admin/main.go demote <user_id>")
			os.Exit(1)
		}
		setSuperuser(db, os.Args[2], false)

	case "list-admins":
		listAdmins(db)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func setSuperuser(db *gorm.DB, userID string, superuser bool) {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Printf("User with ID %s not found\n", userID)
		} else {
			log.Fatalf("Database error: %v", err)
		}
		os.Exit(1)
	}

	if user.IsSuperuser == superuser {
		if superuser {
			fmt.Printf("User %s (ID: %d) is already a superuser\n", user.Username, user.ID)
		} else {
			fmt.Printf("User %s (ID: %d) is not a superuser\n", user.Username, user.ID)
		}
		return
	}

	user.IsSuperuser = superuser
	if err := db.Save(&user).Error; err != nil {
		log.Fatalf("Failed to update user: %v", err)
	}

	if superuser {
		fmt.Printf("Promoted %s (ID: %d) to superuser\n", user.Username, user.ID)
	} else {
		fmt.Printf("Demoted %s (ID: %d) from superuser\n", user.Username, user.ID)
	}
}

func listAdmins(db *gorm.DB) {
	var admins []models.User
	if err := db.Where("is_superuser = ?", true).Find(&admins).Error; err != nil {
		log.Fatalf("Failed to fetch superusers: %v", err)
	}

	if len(admins) == 0 {
		fmt.Println("No superusers found")
		return
	}

	fmt.Println("Current superusers:")
	for _, admin := range admins {
		fmt.Printf("ID: %d | Username: %s | Email: %s\n", admin.ID, admin.Username, admin.Email)
	}
}
