package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/ventiam/ventiam_backend/config"
	"github.com/ventiam/ventiam_backend/models"
	"github.com/ventiam/ventiam_backend/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var tracer trace.Tracer = otel.Tracer("ventiam-backend")

// BuildSnapshotForUser computes and stores the monthly finance snapshot for
// one user under a per-user lock, so a scheduled run and a manual ops call
// cannot double-write.
func BuildSnapshotForUser(ctx context.Context, userId int, ref time.Time) (*models.FinanceMonthlySnapshot, error) {
	ctx, span := tracer.Start(ctx, "workflow.BuildSnapshotForUser")
	defer span.End()

	release, err := utils.UserLock(ctx, userId, "SnapshotLock", "workflow", "BuildSnapshotForUser")
	if err != nil {
		return nil, err
	}
	defer release()

	userCtx := utils.SetUserIdInContext(ctx, userId)
	return models.BuildMonthlySnapshot(userCtx, ref)
}

// BuildSnapshotsForAllUsers runs the monthly snapshot for every active user.
// One user's failure does not stop the run.
func BuildSnapshotsForAllUsers(ctx context.Context, ref time.Time) (built int, failed int) {
	logger := config.GetLogger()

	adminCtx := utils.SetSkipUserScopeInContext(ctx, true)
	users, err := models.GetAllUsers(adminCtx)
	if err != nil {
		config.LogError(logger, "workflow", "BuildSnapshotsForAllUsers", "Failed to list users", "", err)
		return 0, 0
	}

	for _, user := range users {
		if user.IsActive != nil && !*user.IsActive {
			continue
		}
		if _, err := BuildSnapshotForUser(ctx, user.ID, ref); err != nil {
			failed++
			config.LogError(logger, "workflow", "BuildSnapshotsForAllUsers", "Snapshot build failed", fmt.Sprint(user.ID), err)
			continue
		}
		built++
	}

	logger.WithFields(logrus.Fields{
		"field":  "SnapshotWorkflow",
		"month":  ref.Format("2006-01"),
		"built":  built,
		"failed": failed,
	}).Info("monthly snapshot run finished")
	return built, failed
}
