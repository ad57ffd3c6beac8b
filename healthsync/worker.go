package healthsync

import (
	"context"
	"errors"
	"fmt"

	"github.com/ventiam/ventiam_backend/config"
	"github.com/ventiam/ventiam_backend/models"
	"github.com/ventiam/ventiam_backend/utils"
	"github.com/ventiam/ventiam_backend/workflow"
)

const importHandlerName = "healthsync.import"

// ProcessImportJob runs one import end to end: claim the job, download the
// export from GCS, parse it, upsert the readings, record the outcome. Safe
// under duplicate pub/sub delivery.
func ProcessImportJob(ctx context.Context, payload config.ImportJobMessage) error {
	if payload.JobId == "" || payload.UserId == 0 {
		return errors.New("invalid payload")
	}
	logger := config.GetLogger()
	db := config.GetDB()

	skip, err := workflow.BeginIdempotency(db.WithContext(ctx), payload.UserId, importHandlerName, payload.JobId)
	if err != nil {
		return err
	}
	if skip {
		return nil
	}

	job, claimed, err := models.MarkImportJobRunning(ctx, payload.JobId)
	if err != nil {
		_ = workflow.MarkIdempotencyFailed(db.WithContext(ctx), payload.UserId, importHandlerName, payload.JobId, err)
		return err
	}
	if !claimed && job.Status != models.ImportJobStatusRunning {
		// already finished by an earlier delivery
		_ = workflow.MarkIdempotencySucceeded(db.WithContext(ctx), payload.UserId, importHandlerName, payload.JobId)
		return nil
	}

	outcome, err := runImport(ctx, job)
	if err != nil {
		failMsg := err.Error()
		_ = models.FinishImportJob(ctx, payload.JobId, &models.ImportJobOutcome{FirstError: failMsg})
		_ = workflow.MarkIdempotencyFailed(db.WithContext(ctx), payload.UserId, importHandlerName, payload.JobId, err)
		config.LogError(logger, "healthsync", "ProcessImportJob", "Import failed", payload.JobId, err)
		return err
	}

	if err := models.FinishImportJob(ctx, payload.JobId, outcome); err != nil {
		_ = workflow.MarkIdempotencyFailed(db.WithContext(ctx), payload.UserId, importHandlerName, payload.JobId, err)
		return err
	}
	if err := workflow.MarkIdempotencySucceeded(db.WithContext(ctx), payload.UserId, importHandlerName, payload.JobId); err != nil {
		return err
	}

	logger.Info(fmt.Sprintf("health import %s finished: %d/%d rows written", payload.JobId, outcome.RowsWritten, outcome.RowsTotal))
	return nil
}

func runImport(ctx context.Context, job *models.HealthImportJob) (*models.ImportJobOutcome, error) {
	data, err := utils.DownloadObjectFromGCS(ctx, job.ObjectKey)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}

	parsed, err := ParseExport(data, job.Format)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	written := 0
	if len(parsed.Metrics) > 0 {
		written, err = models.UpsertHealthMetricsForUser(ctx, job.UserId, parsed.Metrics)
		if err != nil {
			return nil, fmt.Errorf("upsert: %w", err)
		}
	}

	return &models.ImportJobOutcome{
		RowsTotal:   parsed.RowsTotal,
		RowsWritten: written,
		RowsFailed:  parsed.RowsFailed,
		FirstError:  parsed.FirstError,
	}, nil
}
