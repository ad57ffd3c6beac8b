package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ventiam/ventiam_backend/models"
)

func upsertHealthMetricHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewHealthMetric
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		metric, err := models.UpsertHealthMetric(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": metric})
	}
}

func getHealthMetricsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		from, to, err := dateRangeQuery(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var metricType *models.MetricType
		if raw := strings.ToLower(strings.TrimSpace(c.Query("type"))); raw != "" {
			parsed := models.MetricType(raw)
			if !parsed.IsValid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid metric type"})
				return
			}
			metricType = &parsed
		}
		metrics, err := models.GetHealthMetrics(c.Request.Context(), metricType, from, to)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": metrics})
	}
}

func getHealthSummaryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		from, to, err := dateRangeQuery(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		summary, err := models.GetHealthSummary(c.Request.Context(), from, to)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": summary})
	}
}

// createHealthImportHandler records an import job for an already-uploaded
// export and queues it for the worker.
func createHealthImportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewHealthImportJob
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		job, err := models.CreateHealthImportJob(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"data": job})
	}
}

func getHealthImportsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 0
		if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
				return
			}
			limit = parsed
		}
		jobs, err := models.GetHealthImportJobs(c.Request.Context(), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": jobs})
	}
}

func getHealthImportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		jobId := strings.TrimSpace(c.Param("jobId"))
		if jobId == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "job id is required"})
			return
		}
		job, err := models.GetHealthImportJob(c.Request.Context(), jobId)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": job})
	}
}
