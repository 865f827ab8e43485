package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/dabhanushali/enacton-training/config"
	"github.com/dabhanushali/enacton-training/database"
)

func main() {
	// Load environment variables
	if err := config.LoadENV(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	// Initialize database connection using GORM
	store, err := database.StartGORM()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	separator := strings.Repeat("=", 60)
	fmt.Println(separator)
	fmt.Println("Enacton Training - Database Seeding")
	fmt.Println(separator)
	fmt.Println()

	if err := database.RunSeeds(store.GetDB()); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	fmt.Println()
	fmt.Println(separator)
	fmt.Println("Seeding completed successfully")
	fmt.Println(separator)
	fmt.Println()
	fmt.Println("The HR account is created from HR_ADMIN_EMAIL and HR_ADMIN_PASSWORD.")
	fmt.Println("If either is unset, account creation is skipped.")
}
