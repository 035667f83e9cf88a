package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"plagiarism-check-platform/internal/config"
	"plagiarism-check-platform/models"
	"plagiarism-check-platform/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// Seeds the initial admin account. Safe to run repeatedly.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	client, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())

	usersCollection := client.Database(cfg.DBName).Collection("users")

	adminUsername := os.Getenv("ADMIN_USERNAME")
	if adminUsername == "" {
		adminUsername = "admin"
	}

	var existing models.User
	err = usersCollection.FindOne(context.Background(),
		bson.M{"username": adminUsername, "role": models.RoleAdmin}).Decode(&existing)
	if err == nil {
		fmt.Println("Admin user already exists!")
		fmt.Printf("   Username: %s\n", existing.Username)
		os.Exit(0)
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "ChangeMe123!"
		fmt.Println("WARNING: Using default password. Set ADMIN_PASSWORD environment variable!")
	}

	hashedPassword, err := utils.HashPassword(adminPassword, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	now := time.Now()
	adminUser := models.User{
		ID:            uuid.NewString(),
		Username:      adminUsername,
		Name:          "Administrator",
		PasswordHash:  hashedPassword,
		Role:          models.RoleAdmin,
		LastResetDate: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := usersCollection.InsertOne(context.Background(), adminUser); err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}

	fmt.Println("Admin user created successfully!")
	fmt.Printf("   Username: %s\n", adminUsername)
	fmt.Printf("   User ID:  %s\n", adminUser.ID)
	fmt.Println("\nIMPORTANT: Change the password after first login!")
}
