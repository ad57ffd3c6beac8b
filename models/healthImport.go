package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ventiam/ventiam_backend/config"
	"github.com/ventiam/ventiam_backend/utils"
)

type HealthImportJob struct {
	ID          int             `gorm:"primary_key" json:"id"`
	UserId      int             `gorm:"index;not null" json:"user_id"`
	JobId       string          `gorm:"size:64;not null;unique" json:"job_id"`
	ObjectKey   string          `gorm:"size:500;not null" json:"object_key"`
	Format      string          `gorm:"size:10;not null" json:"format"`
	Status      ImportJobStatus `gorm:"size:20;not null;default:pending" json:"status"`
	RowsTotal   int             `gorm:"default:0" json:"rows_total"`
	RowsWritten int             `gorm:"default:0" json:"rows_written"`
	RowsFailed  int             `gorm:"default:0" json:"rows_failed"`
	FirstError  string          `gorm:"size:500" json:"first_error"`
	StartedAt   *time.Time      `json:"started_at"`
	FinishedAt  *time.Time      `json:"finished_at"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewHealthImportJob struct {
	ObjectKey string `json:"object_key" binding:"required"`
	Format    string `json:"format" binding:"required"`
}

func (input *NewHealthImportJob) validate() error {
	format := strings.ToLower(input.Format)
	if format != "csv" && format != "json" {
		return errors.New("format must be csv or json")
	}
	return nil
}

// CreateHealthImportJob records the job and hands it to the healthsync worker
// over pub/sub. The upload itself happened beforehand via a signed URL.
func CreateHealthImportJob(ctx context.Context, input *NewHealthImportJob) (*HealthImportJob, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	exists, err := utils.ObjectExistsInGCS(ctx, input.ObjectKey)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.New("uploaded file not found")
	}

	job := HealthImportJob{
		UserId:    userId,
		JobId:     uuid.New().String(),
		ObjectKey: input.ObjectKey,
		Format:    strings.ToLower(input.Format),
		Status:    ImportJobStatusPending,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&job).Error; err != nil {
		return nil, err
	}

	correlationId, _ := utils.GetCorrelationIdFromContext(ctx)
	message := config.ImportJobMessage{
		JobId:         job.JobId,
		UserId:        userId,
		ObjectKey:     job.ObjectKey,
		Format:        job.Format,
		CorrelationId: correlationId,
	}
	if _, err := config.PublishImportJob(ctx, message); err != nil {
		// the job row stays pending; the ops resubmit path can retry it
		logger := config.GetLogger()
		config.LogError(logger, "models", "CreateHealthImportJob", "Failed to publish import job", job.JobId, err)
		return nil, errors.New("failed to queue import job")
	}
	return &job, nil
}

func GetHealthImportJobs(ctx context.Context, limit int) ([]*HealthImportJob, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	db := config.GetDB()
	var results []*HealthImportJob
	err := db.WithContext(ctx).Where("user_id = ?", userId).
		Order("id DESC").Limit(limit).Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func GetHealthImportJob(ctx context.Context, jobId string) (*HealthImportJob, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}

	db := config.GetDB()
	var job HealthImportJob
	err := db.WithContext(ctx).Where("user_id = ? AND job_id = ?", userId, jobId).First(&job).Error
	if err != nil {
		return nil, errors.New("import job not found")
	}
	return &job, nil
}

// MarkImportJobRunning is called by the worker when it picks the job up.
// Returns false when the job is already past pending (duplicate delivery).
func MarkImportJobRunning(ctx context.Context, jobId string) (*HealthImportJob, bool, error) {
	db := config.GetDB()
	now := time.Now().UTC()

	result := db.WithContext(utils.SetSkipUserScopeInContext(ctx, true)).Model(&HealthImportJob{}).
		Where("job_id = ? AND status = ?", jobId, ImportJobStatusPending).
		Updates(map[string]interface{}{"status": ImportJobStatusRunning, "started_at": now})
	if result.Error != nil {
		return nil, false, result.Error
	}

	var job HealthImportJob
	if err := db.WithContext(utils.SetSkipUserScopeInContext(ctx, true)).Where("job_id = ?", jobId).First(&job).Error; err != nil {
		return nil, false, errors.New("import job not found")
	}
	return &job, result.RowsAffected == 1, nil
}

type ImportJobOutcome struct {
	RowsTotal   int
	RowsWritten int
	RowsFailed  int
	FirstError  string
}

// FinishImportJob records the terminal status from the row counts: all rows
// written is success, some is partial, none is failed.
func FinishImportJob(ctx context.Context, jobId string, outcome *ImportJobOutcome) error {
	status := ImportJobStatusSuccess
	if outcome.RowsFailed > 0 {
		status = ImportJobStatusPartial
	}
	if outcome.RowsWritten == 0 && (outcome.RowsFailed > 0 || outcome.RowsTotal == 0) {
		status = ImportJobStatusFailed
	}

	db := config.GetDB()
	now := time.Now().UTC()
	return db.WithContext(utils.SetSkipUserScopeInContext(ctx, true)).Model(&HealthImportJob{}).
		Where("job_id = ?", jobId).
		Updates(map[string]interface{}{
			"status":       status,
			"rows_total":   outcome.RowsTotal,
			"rows_written": outcome.RowsWritten,
			"rows_failed":  outcome.RowsFailed,
			"first_error":  outcome.FirstError,
			"finished_at":  now,
		}).Error
}
