package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/ventiam/ventiam_backend/config"
	"github.com/ventiam/ventiam_backend/utils"
	"github.com/ventiam/ventiam_backend/workflow"
)

// Builds monthly cash-flow snapshots for every active user. Run at month
// end, or with -month to rebuild history.
func main() {
	_ = godotenv.Load()

	month := flag.String("month", "", "month to build (YYYY-MM-DD, any day in the month); defaults to now")
	flag.Parse()

	ref := time.Now().UTC()
	if *month != "" {
		parsed, err := utils.ParseDateString(*month)
		if err != nil {
			log.Fatalf("invalid -month: %v", err)
		}
		ref = parsed
	}

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	built, failed := workflow.BuildSnapshotsForAllUsers(context.Background(), ref)
	log.Printf("snapshots built=%d failed=%d for %s", built, failed, ref.Format("2006-01"))
	if failed > 0 {
		log.Fatal("some snapshots failed; see logs")
	}
}
