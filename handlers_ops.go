package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/ventiam/ventiam_backend/config"
	"github.com/ventiam/ventiam_backend/models"
	"github.com/ventiam/ventiam_backend/utils"
	"github.com/ventiam/ventiam_backend/workflow"
)

// refreshCatalogHandler pulls the live Gemini model list and reconciles the
// local catalog against it.
func refreshCatalogHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := models.RefreshCatalog(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": result})
	}
}

type buildSnapshotsRequest struct {
	UserId int    `json:"user_id"`
	Month  string `json:"month"`
}

func buildSnapshotsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req buildSnapshotsRequest
		_ = c.ShouldBindJSON(&req)

		ref := time.Now().UTC()
		if req.Month != "" {
			parsed, err := utils.ParseDateString(req.Month)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
				return
			}
			ref = parsed
		}

		if req.UserId > 0 {
			snapshot, err := workflow.BuildSnapshotForUser(c.Request.Context(), req.UserId, ref)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"data": snapshot})
			return
		}

		built, failed := workflow.BuildSnapshotsForAllUsers(c.Request.Context(), ref)
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"built": built, "failed": failed}})
	}
}

// replayDeadOutboxHandler requeues DEAD reminder events for another delivery
// attempt. The attempt counter is reset so the backoff ladder starts over.
func replayDeadOutboxHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := utils.SetSkipUserScopeInContext(c.Request.Context(), true)
		now := time.Now().UTC()

		result := config.GetDB().WithContext(ctx).Model(&models.ReminderOutbox{}).
			Where("publish_status = ?", models.OutboxStatusDead).
			Updates(map[string]interface{}{
				"publish_status":     models.OutboxStatusPending,
				"publish_attempts":   0,
				"last_publish_error": nil,
				"next_attempt_at":    now,
				"locked_at":          nil,
				"locked_by":          nil,
			})
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": result.Error.Error()})
			return
		}

		config.GetLogger().WithFields(logrus.Fields{
			"requeued": result.RowsAffected,
		}).Info("dead reminder events requeued")
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"requeued": result.RowsAffected}})
	}
}

type resubmitImportRequest struct {
	JobId string `json:"job_id" binding:"required"`
}

// resubmitImportHandler re-publishes a stuck import job. Covers the case
// where the row was written but the first publish never made it out.
func resubmitImportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req resubmitImportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "job_id is required"})
			return
		}

		ctx := utils.SetSkipUserScopeInContext(c.Request.Context(), true)
		var job models.HealthImportJob
		if err := config.GetDB().WithContext(ctx).Where("job_id = ?", req.JobId).First(&job).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "import job not found"})
			return
		}
		if job.Status != models.ImportJobStatusPending && job.Status != models.ImportJobStatusFailed {
			c.JSON(http.StatusBadRequest, gin.H{"error": "job is not resubmittable"})
			return
		}

		correlationId, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		message := config.ImportJobMessage{
			JobId:         job.JobId,
			UserId:        job.UserId,
			ObjectKey:     job.ObjectKey,
			Format:        job.Format,
			CorrelationId: correlationId,
		}
		if _, err := config.PublishImportJob(c.Request.Context(), message); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to publish import job"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"job_id": job.JobId, "resubmitted": true}})
	}
}

// clearCacheHandler flushes the redis cache; sessions go with it.
func clearCacheHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := config.ClearRedis(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": true})
	}
}
