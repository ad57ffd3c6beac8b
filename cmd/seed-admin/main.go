package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/ventiam/ventiam_backend/config"
	"github.com/ventiam/ventiam_backend/models"
)

// Creates the initial admin user. Intended as a one-shot job, not part of
// the serving path.
func main() {
	_ = godotenv.Load()

	username := flag.String("username", "admin", "admin username")
	name := flag.String("name", "Administrator", "display name")
	email := flag.String("email", "", "admin email")
	flag.Parse()

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		log.Fatal("ADMIN_PASSWORD is required")
	}

	config.ConnectDatabaseWithRetry()
	models.MigrateTable()

	ctx := context.Background()
	if _, err := models.GetUserByUsername(ctx, *username); err == nil {
		log.Printf("user %q already exists; nothing to do", *username)
		return
	}

	user, err := models.Signup(ctx, &models.NewUser{
		Username: *username,
		Name:     *name,
		Email:    *email,
		Password: password,
		Role:     models.UserRoleAdmin,
	})
	if err != nil {
		log.Fatalf("failed to create admin: %v", err)
	}
	log.Printf("created admin user %q (id=%d)", user.Username, user.ID)
}
