package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/ventiam/ventiam_backend/config"
	"github.com/ventiam/ventiam_backend/healthsync"
	"github.com/ventiam/ventiam_backend/middlewares"
	"github.com/ventiam/ventiam_backend/models"
	"github.com/ventiam/ventiam_backend/workflow"
)

const defaultPort = "8080"

// RateLimiter throttles per client IP using a redis counter per window.
type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func getRedisClient(redisAddress string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: redisAddress,
	})
	return client
}

func NewRateLimiter(client *redis.Client, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

// Middleware function to check rate limits.
func (rl *RateLimiter) RateLimitMiddleware(c *gin.Context) {
	key := c.ClientIP()

	exists, err := rl.client.Exists(c.Request.Context(), key).Result()
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	// If the key doesn't exist, create it and set expiry.
	if exists == 0 {
		err := rl.client.Set(c.Request.Context(), key, 1, rl.window).Err()
		if err != nil {
			c.AbortWithError(http.StatusInternalServerError, err)
			return
		}
		c.Next()
		return
	}

	count, err := rl.client.Incr(c.Request.Context(), key).Result()
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	if count > rl.limit {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": fmt.Sprintf("Rate limit exceeded. Try again in %d seconds", int(rl.window.Seconds())),
		})
		return
	}

	c.Next()
}

// customErrorLogger is a custom Gin middleware that logs only errors
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String())
		}
	}
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func registerRoutes(r *gin.Engine) {
	auth := r.Group("/api/auth")
	{
		auth.POST("/login", loginHandler())
		auth.POST("/signup", signupHandler())
		auth.POST("/logout", middlewares.RequireSession(), logoutHandler())
		auth.POST("/change-password", middlewares.RequireSession(), changePasswordHandler())
	}

	api := r.Group("/api", middlewares.RequireSession())

	api.GET("/profile", getProfileHandler())
	api.PUT("/profile", updateProfileHandler())

	finance := api.Group("/finance")
	{
		finance.GET("/accounts", getFinanceAccountsHandler())
		finance.POST("/accounts", createFinanceAccountHandler())
		finance.PUT("/accounts/:id", updateFinanceAccountHandler())
		finance.DELETE("/accounts/:id", deleteFinanceAccountHandler())

		finance.GET("/bills", getFinanceBillsHandler())
		finance.POST("/bills", createFinanceBillHandler())
		finance.PUT("/bills/:id", updateFinanceBillHandler())
		finance.DELETE("/bills/:id", deleteFinanceBillHandler())

		finance.GET("/periods", getBillingPeriodsHandler())
		finance.GET("/periods/current", getCurrentBillingPeriodHandler())
		finance.POST("/periods", createBillingPeriodHandler())
		finance.PUT("/periods/:id", updateBillingPeriodHandler())
		finance.POST("/periods/mark-paid", markBillPaidHandler())

		finance.GET("/projection", getProjectionHandler())
		finance.GET("/projections", getProjectionHistoryHandler())
		finance.POST("/projections", saveProjectionHandler())
		finance.POST("/projections/bulk", bulkInsertProjectionsHandler())

		finance.GET("/snapshots", getMonthlySnapshotsHandler())
	}

	chat := api.Group("/chat")
	{
		chat.GET("/conversations", getConversationsHandler())
		chat.POST("/conversations", createConversationHandler())
		chat.GET("/conversations/:id", getConversationHandler())
		chat.PUT("/conversations/:id", updateConversationHandler())
		chat.DELETE("/conversations/:id", deleteConversationHandler())
		chat.POST("/conversations/:id/archive", archiveConversationHandler(true))
		chat.POST("/conversations/:id/unarchive", archiveConversationHandler(false))
		chat.GET("/conversations/:id/messages", getMessagesHandler())
		chat.POST("/messages", sendMessageHandler())
		chat.POST("/messages/stream", streamMessageHandler())

		chat.GET("/agents", getAgentsHandler())
		chat.POST("/agents", createAgentHandler())
		chat.PUT("/agents/:id", updateAgentHandler())
		chat.DELETE("/agents/:id", deleteAgentHandler())
	}

	api.GET("/models", getAiModelsHandler())

	habits := api.Group("/habits")
	{
		habits.GET("", getHabitsHandler())
		habits.POST("", createHabitHandler())
		habits.GET("/week", getHabitWeekHandler())
		habits.POST("/entries", upsertHabitEntryHandler())
		habits.GET("/:id", getHabitHandler())
		habits.PUT("/:id", updateHabitHandler())
		habits.DELETE("/:id", deleteHabitHandler())
		habits.GET("/:id/entries", getHabitEntriesHandler())
		habits.DELETE("/:id/entries", deleteHabitEntryHandler())
	}

	health := api.Group("/health")
	{
		health.POST("/metrics", upsertHealthMetricHandler())
		health.GET("/metrics", getHealthMetricsHandler())
		health.GET("/summary", getHealthSummaryHandler())
		health.POST("/imports", createHealthImportHandler())
		health.GET("/imports", getHealthImportsHandler())
		health.GET("/imports/:jobId", getHealthImportHandler())
	}

	tables := api.Group("/tables")
	{
		tables.GET("", getUserTablesHandler())
		tables.POST("", createUserTableHandler())
		tables.GET("/:id", getUserTableHandler())
		tables.PUT("/:id", updateUserTableHandler())
		tables.DELETE("/:id", deleteUserTableHandler())
		tables.GET("/:id/rows", getTableRowsHandler())
		tables.GET("/:id/export", exportUserTableHandler())
		tables.POST("/columns", createTableColumnHandler())
		tables.PUT("/columns/:id", updateTableColumnHandler())
		tables.DELETE("/columns/:id", deleteTableColumnHandler())
		tables.POST("/rows", createTableRowHandler())
		tables.PUT("/rows/:id", updateTableRowHandler())
		tables.DELETE("/rows/:id", deleteTableRowHandler())
	}

	uploads := api.Group("/uploads")
	{
		uploads.POST("/sign", signUploadHandler())
		uploads.POST("/complete", completeUploadHandler())
		uploads.GET("/object", uploadObjectHandler())
	}

	// Push delivery from the import subscription; no session, pub/sub signs
	// its own requests.
	r.POST("/pubsub/import", healthsync.PubSubPushHandler())

	// Ops tooling (admin only).
	ops := r.Group("/internal/ops", middlewares.RequireSession(), middlewares.RequireAdmin())
	{
		ops.POST("/models/refresh", refreshCatalogHandler())
		ops.POST("/snapshots/build", buildSnapshotsHandler())
		ops.POST("/outbox/replay", replayDeadOutboxHandler())
		ops.POST("/imports/resubmit", resubmitImportHandler())
		ops.POST("/cache/clear", clearCacheHandler())
	}
}

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		// Cloud Run standard env var.
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	// Cloud Run sends SIGTERM on revision shutdown; handle it for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start the HTTP server ASAP so Cloud Run considers the revision healthy.
	// Until DB/Redis are ready, app endpoints return 503.
	r := gin.New()
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	r.Use(middlewares.CorrelationMiddleware())
	r.Use(middlewares.ReadinessMiddleware())

	corsConfig := cors.DefaultConfig()
	// Production-safe CORS:
	// - In production, require explicit allowlist via CORS_ALLOWED_ORIGINS (comma-separated).
	// - In non-production, allow all (developer convenience).
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			// Safer default: deny all if not configured in production.
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("token", "Origin", "Content-Type", "Authorization")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	// Optional rate limiting (recommended for production).
	// Env:
	// - RATE_LIMIT_ENABLED=true
	// - RATE_LIMIT_WINDOW_SECONDS=60
	// - RATE_LIMIT_MAX_REQUESTS=600
	if strings.EqualFold(strings.TrimSpace(os.Getenv("RATE_LIMIT_ENABLED")), "true") {
		client := getRedisClient(os.Getenv("REDIS_ADDRESS"))
		limit := int64(600)
		if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_MAX_REQUESTS")); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				limit = n
			}
		}
		windowSec := int64(60)
		if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_WINDOW_SECONDS")); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				windowSec = n
			}
		}
		rateLimiter := NewRateLimiter(client, limit, time.Duration(windowSec)*time.Second)
		r.Use(rateLimiter.RateLimitMiddleware)
	}

	r.Use(middlewares.SessionMiddleware())
	r.Use(middlewares.LoaderMiddleware())
	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	registerRoutes(r)
	r.NoRoute(customNotFoundHandler)

	// Start listening immediately (Cloud Run startup probe is TCP based).
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		// ListenAndServe returns http.ErrServerClosed on graceful shutdown.
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	// IMPORTANT: AutoMigrate can run DDL that blocks tables and causes 504/502 timeouts.
	// Allow disabling migrations on startup (run them as a separate job instead).
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		models.MigrateTable()
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	middlewares.MarkReady()

	// Background workers: reminder dispatcher and the import subscriber.
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	go workflow.NewOutboxDispatcher(db, logger).Run(workerCtx)
	if strings.EqualFold(strings.TrimSpace(os.Getenv("IMPORT_SUBSCRIBER_ENABLED")), "true") {
		go func() {
			if err := healthsync.RunSubscriber(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.WithFields(logrus.Fields{"field": "healthsync"}).Error("import subscriber stopped: " + err.Error())
			}
		}()
	}

	// Set the session isolation level to READ COMMITTED
	for attempt := 1; ; attempt++ {
		err := db.Exec("SET SESSION TRANSACTION ISOLATION LEVEL READ COMMITTED").Error
		if err == nil {
			break
		}
		sleep := time.Second * time.Duration(1<<minInt(attempt, 5))
		if sleep > 30*time.Second {
			sleep = 30 * time.Second
		}
		logger.WithFields(logrus.Fields{
			"field":   "database",
			"attempt": attempt,
		}).Warn("failed to set isolation level; retrying in " + sleep.String() + ": " + err.Error())
		time.Sleep(sleep)
	}

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("listening on http://localhost:", port, "/")
	log.Println("Server started successfully")

	// Block until shutdown or server error.
	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	// Stop background workers first so they don't start new work while we're draining.
	cancelWorkers()

	// Drain HTTP requests.
	shutdownTimeout := 30 * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	// Close Redis (best-effort).
	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
