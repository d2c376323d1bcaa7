package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/piscine-hq/piscine-admin-api/api/swagger"
	"github.com/piscine-hq/piscine-admin-api/internal/handler"
	"github.com/piscine-hq/piscine-admin-api/internal/importer"
	"github.com/piscine-hq/piscine-admin-api/internal/middleware"
	"github.com/piscine-hq/piscine-admin-api/internal/models"
	"github.com/piscine-hq/piscine-admin-api/internal/repository"
	"github.com/piscine-hq/piscine-admin-api/internal/service"
	"github.com/piscine-hq/piscine-admin-api/pkg/cache"
	"github.com/piscine-hq/piscine-admin-api/pkg/config"
	"github.com/piscine-hq/piscine-admin-api/pkg/database"
	"github.com/piscine-hq/piscine-admin-api/pkg/jobs"
	"github.com/piscine-hq/piscine-admin-api/pkg/logger"
	corsmiddleware "github.com/piscine-hq/piscine-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/piscine-hq/piscine-admin-api/pkg/middleware/requestid"
	"github.com/piscine-hq/piscine-admin-api/pkg/storage"
)

// @title Piscine Admin API
// @version 1.0.0
// @description Staff backend for piscine administration
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, leaderboard cache disabled", "error", err)
		redisClient = nil
	}

	uploads, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare uploads directory", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)

	validate := validator.New()

	// Repositories.
	studentRepo := repository.NewStudentRepository(db)
	gradeRepo := repository.NewExamGradeRepository(db)
	rushRepo := repository.NewRushScoreRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	userRepo := repository.NewUserRepository(db)
	runRepo := repository.NewImportRunRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "piscine-admin-api",
	})
	studentSvc := service.NewStudentService(studentRepo, gradeRepo, rushRepo, validate, logr)
	scoreSvc := service.NewScoreService(studentRepo, gradeRepo, rushRepo, validate, logr)
	noteSvc := service.NewNoteService(noteRepo, studentRepo, validate, logr)
	leaderboardSvc := service.NewLeaderboardService(studentRepo, cacheRepo, metricsSvc, cfg.Leaderboard.CacheTTL, logr)
	exportSvc := service.NewExportService(studentRepo, nil, nil, logr)

	imp := importer.New(studentRepo, gradeRepo, rushRepo, importer.Config{
		MaxRows:         cfg.Import.MaxRows,
		MaxFileSize:     cfg.Import.MaxFileSize,
		Timeout:         cfg.Import.Timeout,
		UpdateChunkSize: cfg.Import.UpdateChunkSize,
		EmailDomain:     cfg.Import.EmailDomain,
	}, logr).WithMetrics(metricsSvc)

	// Background queue for post-import housekeeping.
	queue := jobs.NewQueue("post-import", func(ctx context.Context, job jobs.Job) error {
		switch job.Type {
		case service.JobTypeLeaderboardInvalidate:
			return leaderboardSvc.Invalidate(ctx)
		default:
			logr.Sugar().Warnw("unknown job type", "type", job.Type)
			return nil
		}
	}, jobs.QueueConfig{Workers: 2, Logger: logr})
	queue.Start(context.Background())
	defer queue.Stop()

	importSvc := service.NewImportService(imp, runRepo, uploads, signer, queue, logr)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	scoreHandler := handler.NewScoreHandler(scoreSvc)
	noteHandler := handler.NewNoteHandler(noteSvc)
	importHandler := handler.NewImportHandler(importSvc, uploads)
	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
			auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
		}

		protected := api.Group("")
		protected.Use(middleware.JWT(authSvc))
		{
			protected.POST("/import", importHandler.Upload)
			protected.GET("/import/runs", importHandler.History)
			protected.GET("/import/runs/:id", importHandler.Get)
			protected.POST("/import/runs/:id/download-token", importHandler.DownloadToken)

			protected.GET("/students", studentHandler.List)
			protected.POST("/students", studentHandler.Create)
			protected.GET("/students/:username", studentHandler.Get)
			protected.PATCH("/students/:username", studentHandler.Update)
			protected.DELETE("/students/:username", middleware.RequireRole(models.RoleAdmin), studentHandler.Delete)
			protected.GET("/students/:username/notes", noteHandler.ListForStudent)

			protected.PUT("/grades", scoreHandler.UpsertGrade)
			protected.PUT("/rushes", scoreHandler.UpsertRush)

			protected.POST("/notes", noteHandler.Create)
			protected.PUT("/notes/:id", noteHandler.Update)
			protected.DELETE("/notes/:id", noteHandler.Delete)

			protected.GET("/leaderboard", leaderboardHandler.Top)
			protected.GET("/export/students", exportHandler.Roster)
		}

		// Token-authenticated download, usable from a plain link.
		api.GET("/import/download", importHandler.Download)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
