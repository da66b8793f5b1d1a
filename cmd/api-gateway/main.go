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

	_ "github.com/noah-isme/ppdb-selection-api/api/swagger"
	"github.com/noah-isme/ppdb-selection-api/internal/handler"
	"github.com/noah-isme/ppdb-selection-api/internal/middleware"
	"github.com/noah-isme/ppdb-selection-api/internal/repository"
	"github.com/noah-isme/ppdb-selection-api/internal/service"
	"github.com/noah-isme/ppdb-selection-api/pkg/cache"
	"github.com/noah-isme/ppdb-selection-api/pkg/config"
	"github.com/noah-isme/ppdb-selection-api/pkg/database"
	"github.com/noah-isme/ppdb-selection-api/pkg/jobs"
	"github.com/noah-isme/ppdb-selection-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/ppdb-selection-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/ppdb-selection-api/pkg/middleware/requestid"
)

// @title PPDB Selection API
// @version 0.1.0
// @description Student admissions selection and ranking service
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
	defer db.Close()

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Admissions.StatsCacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		defer redisClient.Close()
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Admissions.StatsCacheTTL, logr, true)
	} else {
		cacheSvc = service.NewCacheService(nil, metricsSvc, cfg.Admissions.StatsCacheTTL, logr, false)
	}

	periodRepo := repository.NewPeriodRepository(db)
	pathRepo := repository.NewPathRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	selectionRepo := repository.NewSelectionRepository(db)

	notificationSvc := service.NewNotificationService(service.NewLogOutcomeSink(logr), jobs.QueueConfig{
		Workers:    cfg.Admissions.NotifyWorkerConcurrency,
		MaxRetries: cfg.Admissions.NotifyWorkerRetries,
		RetryDelay: cfg.Admissions.NotifyRetryDelay,
		Logger:     logr,
	}, logr)
	notificationSvc.Start(context.Background())
	defer notificationSvc.Stop()

	periodSvc := service.NewPeriodService(periodRepo, validate, logr)
	pathSvc := service.NewPathService(pathRepo, periodRepo, validate, logr)
	registrationSvc := service.NewRegistrationService(registrationRepo, pathRepo, validate, logr)
	selectionSvc := service.NewSelectionService(pathRepo, periodRepo, registrationRepo, selectionRepo,
		notificationSvc, metricsSvc, cfg.Admissions.ReserveWindow, validate, logr)
	statsSvc := service.NewStatsService(selectionRepo, periodRepo, cacheSvc, logr)
	exportSvc := service.NewExportService(selectionRepo, pathRepo, logr)

	periodHandler := handler.NewPeriodHandler(periodSvc, selectionSvc, statsSvc)
	pathHandler := handler.NewPathHandler(pathSvc, selectionSvc, exportSvc, statsSvc)
	registrationHandler := handler.NewRegistrationHandler(registrationSvc)
	selectionHandler := handler.NewSelectionHandler(selectionSvc)
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
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/periods", periodHandler.List)
		api.POST("/periods", periodHandler.Create)
		api.GET("/periods/:id", periodHandler.Get)
		api.PUT("/periods/:id", periodHandler.Update)
		api.POST("/periods/:id/close", periodHandler.Close)
		api.POST("/periods/:id/announce", periodHandler.Announce)
		api.GET("/periods/:id/stats", periodHandler.Stats)

		api.GET("/paths", pathHandler.List)
		api.POST("/paths", pathHandler.Create)
		api.GET("/paths/:id", pathHandler.Get)
		api.PUT("/paths/:id", pathHandler.Update)
		api.POST("/paths/:id/selection/run", pathHandler.RunSelection)
		api.GET("/paths/:id/selection/results", pathHandler.SelectionResults)
		api.GET("/paths/:id/selection/export", pathHandler.ExportResults)

		api.GET("/registrations", registrationHandler.List)
		api.POST("/registrations", registrationHandler.Create)
		api.GET("/registrations/:id", registrationHandler.Get)
		api.PUT("/registrations/:id/verify", registrationHandler.Verify)

		api.GET("/selections/:id", selectionHandler.Get)
		api.PUT("/selections/:id/status", selectionHandler.UpdateStatus)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
