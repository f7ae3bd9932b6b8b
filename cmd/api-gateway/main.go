package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/soma-studio/soma-approve-api/api/swagger"
	"github.com/soma-studio/soma-approve-api/internal/drive"
	"github.com/soma-studio/soma-approve-api/internal/handler"
	"github.com/soma-studio/soma-approve-api/internal/identity"
	"github.com/soma-studio/soma-approve-api/internal/middleware"
	"github.com/soma-studio/soma-approve-api/internal/models"
	"github.com/soma-studio/soma-approve-api/internal/repository"
	"github.com/soma-studio/soma-approve-api/internal/service"
	"github.com/soma-studio/soma-approve-api/pkg/cache"
	"github.com/soma-studio/soma-approve-api/pkg/config"
	"github.com/soma-studio/soma-approve-api/pkg/database"
	"github.com/soma-studio/soma-approve-api/pkg/export"
	"github.com/soma-studio/soma-approve-api/pkg/jobs"
	"github.com/soma-studio/soma-approve-api/pkg/logger"
	corsmiddleware "github.com/soma-studio/soma-approve-api/pkg/middleware/cors"
	reqidmiddleware "github.com/soma-studio/soma-approve-api/pkg/middleware/requestid"
	"github.com/soma-studio/soma-approve-api/pkg/storage"
)

// @title Soma Approve API
// @version 1.0.0
// @description Video approval workflow backend for Soma Studio clients
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	validate := validator.New()

	videoRepo := repository.NewVideoRepository(db)
	clientRepo := repository.NewClientRepository(db)
	sessionRepo := repository.NewSessionRepository(redisClient, logr)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsService := service.NewMetricsService()

	verifier := identity.NewGoogleVerifier(cfg.Google)
	authService := service.NewAuthService(verifier, sessionRepo, validate, logr, cfg.JWT, cfg.Auth)

	clientService := service.NewClientService(clientRepo, cacheRepo, metricsService, validate, logr, cfg.Clients.CacheTTL)
	videoService := service.NewVideoService(videoRepo, clientRepo, validate, logr)

	// A committed decision changes the activity dashboard, so drop its cache.
	decisionSink := service.DecisionSinkFunc(func(ctx context.Context, decision models.ReviewDecision) error {
		clientService.InvalidateActivity(ctx)
		logr.Sugar().Infow("review decision published",
			"video_id", decision.VideoID,
			"client_id", decision.ClientID,
			"status", decision.Status,
		)
		return nil
	})
	reviewService := service.NewReviewService(videoRepo, clientRepo, logr, cfg.Review,
		service.WithDecisionSink(decisionSink),
		service.WithReviewMetrics(metricsService),
	)

	authHandler := handler.NewAuthHandler(authService)
	videoHandler := handler.NewVideoHandler(videoService, reviewService)
	clientHandler := handler.NewClientHandler(clientService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/google", authHandler.GoogleLogin)
	auth.POST("/logout", middleware.JWT(authService), authHandler.Logout)
	auth.GET("/me", middleware.JWT(authService), authHandler.Me)

	authed := api.Group("")
	authed.Use(middleware.JWT(authService))

	videos := authed.Group("/videos")
	videos.GET("", videoHandler.List)
	videos.POST("", middleware.RequireRoles(models.RoleAdmin), videoHandler.Create)
	videos.GET("/queue", videoHandler.Queue)
	videos.GET("/:id", videoHandler.Get)
	videos.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), videoHandler.Delete)
	videos.POST("/:id/approve", videoHandler.Approve)
	videos.POST("/:id/reject", videoHandler.Reject)

	clients := authed.Group("/clients", middleware.RequireRoles(models.RoleAdmin))
	clients.POST("", clientHandler.Create)
	clients.GET("/activity", clientHandler.Activity)
	clients.GET("/:id", clientHandler.Get)

	if cfg.Reports.Enabled {
		localStorage, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init report storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
		exportService := service.NewExportService(clientRepo, videoRepo, localStorage, signer,
			service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Reports.SignedURLTTL},
			logr, export.NewCSVExporter(), export.NewPDFExporter())

		reportRepo := repository.NewReportRepository(db)
		reportWorker := service.NewReportWorker(reportRepo, exportService, cfg.Reports.WorkerRetries, logr)
		reportQueue := jobs.NewQueue("reports", reportWorker.Handle, jobs.QueueConfig{
			Workers:    cfg.Reports.WorkerConcurrency,
			MaxRetries: cfg.Reports.WorkerRetries,
			Logger:     logr,
		})
		reportQueue.Start(ctx)
		defer reportQueue.Stop()

		reportService := service.NewReportService(reportRepo, reportQueue, exportService, logr, service.ReportServiceConfig{
			ResultTTL:       cfg.Reports.SignedURLTTL,
			CleanupInterval: cfg.Reports.CleanupInterval,
			MaxRetries:      cfg.Reports.WorkerRetries,
		})
		reportService.RecoverPendingJobs(ctx)
		reportService.StartCleanup(ctx)

		reportHandler := handler.NewReportHandler(reportService)
		reports := authed.Group("/reports")
		reports.POST("/generate", middleware.RequireRoles(models.RoleAdmin), reportHandler.GenerateReport)
		reports.GET("/status/:id", reportHandler.ReportStatus)

		// Downloads carry a signed token, no session needed.
		api.GET("/reports/download/:token", reportHandler.DownloadReport)
	}

	if cfg.Drive.Enabled {
		browser, err := drive.NewBrowser(ctx, cfg.Drive)
		if err != nil {
			logr.Sugar().Fatalw("failed to init drive browser", "error", err)
		}
		driveService := service.NewDriveSyncService(browser, videoRepo, clientRepo, logr)
		driveHandler := handler.NewDriveHandler(driveService)

		driveRoutes := authed.Group("/drive", middleware.RequireRoles(models.RoleAdmin))
		driveRoutes.GET("/mappings", driveHandler.Mappings)
		driveRoutes.POST("/sync/:id", driveHandler.Sync)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
