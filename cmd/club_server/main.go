package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/SscSPs/club_management_app/internal/handlers"
	"github.com/SscSPs/club_management_app/internal/jobs"
	"github.com/SscSPs/club_management_app/internal/middleware"
	"github.com/SscSPs/club_management_app/internal/platform/app"
	"github.com/SscSPs/club_management_app/internal/platform/config"
	"github.com/SscSPs/club_management_app/internal/utils"
	"github.com/SscSPs/club_management_app/pkg/database"
)

// @title Club Management API
// @version 1.0
// @description Dues ledger, calendar and catalog sync, and checkout for the club backend.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Running database migrations...")
	if err := database.RunMigrations(cfg.DatabaseURL, "file://migrations", logger); err != nil {
		logger.Error("Database migrations failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	application, err := app.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer application.Close()

	if cfg.EnableJobs {
		stopJobs, err := startJobs(ctx, application, logger)
		if err != nil {
			logger.Error("Failed to start background jobs", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer stopJobs()
	}

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, cfg.PosthogEndpoint, logger)
	defer posthogClient.Close()

	webhookLimiter, err := middleware.NewMemoryLimiter(cfg.WebhookRateLimit)
	if err != nil {
		logger.Error("Invalid WEBHOOK_RATE_LIMIT", slog.String("value", cfg.WebhookRateLimit), slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendBaseURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.PosthogMiddleware(posthogClient))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, application.Services, middleware.RateLimit(webhookLimiter))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
}

// startJobs migrates River's tables and starts the periodic sync and refresh jobs.
func startJobs(ctx context.Context, application *app.App, logger *slog.Logger) (func(), error) {
	if err := jobs.Migrate(ctx, application.Pool); err != nil {
		return nil, err
	}
	client, err := jobs.NewClient(application.Pool, application.Services, jobs.Schedule{
		SyncInterval:         application.Config.SyncInterval,
		TokenRefreshInterval: application.Config.TokenRefreshInterval,
	}, logger)
	if err != nil {
		return nil, err
	}
	if err := client.Start(ctx); err != nil {
		return nil, err
	}
	logger.Info("Background jobs started")
	return func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.Stop(stopCtx); err != nil {
			logger.Warn("River client did not stop cleanly", slog.String("error", err.Error()))
		}
	}, nil
}
