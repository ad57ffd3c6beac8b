package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/ventiam/ventiam_backend/config"
	"github.com/ventiam/ventiam_backend/models"
)

// Reconciles the AI model catalog against the live Gemini model list.
// Meant to run on a schedule (Cloud Scheduler / cron).
func main() {
	_ = godotenv.Load()

	config.ConnectDatabaseWithRetry()

	result, err := models.RefreshCatalog(context.Background())
	if err != nil {
		log.Fatalf("catalog refresh failed: %v", err)
	}
	log.Printf("catalog refreshed: %d discovered, %d updated, %d deactivated",
		result.Discovered, result.Updated, result.Deactivated)
}
