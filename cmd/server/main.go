package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/bezem-backend/internal/config"
	"github.com/stemsi/bezem-backend/internal/database"
	"github.com/stemsi/bezem-backend/internal/handler"
	"github.com/stemsi/bezem-backend/internal/logger"
	"github.com/stemsi/bezem-backend/internal/middleware"
	"github.com/stemsi/bezem-backend/internal/repository"
	"github.com/stemsi/bezem-backend/internal/router"
	"github.com/stemsi/bezem-backend/internal/service"
	"github.com/stemsi/bezem-backend/internal/validator"
	"github.com/stemsi/bezem-backend/internal/worker"
)

const workerDrainTimeout = 30 * time.Second

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Bezem Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	conversionRepo := repository.NewConversionRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)
	jobRepo := repository.NewImportJobRepository(rdb)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg)
	adminService := service.NewAdminService(adminRepo, authService)
	uploadService := service.NewUploadService(cfg)
	conversionService := service.NewConversionService(conversionRepo, rdb, cfg.CacheTTL, log)
	importService := service.NewImportService(cfg, conversionRepo, uploadService, jobRepo, conversionService, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(adminService),
		Conversion: handler.NewConversionHandler(conversionService, log),
		Import:     handler.NewImportHandler(importService, uploadService, jobRepo, log),
		WS:         handler.NewWSHandler(importService, jobRepo, log, cfg.AllowedOrigins),
		System:     handler.NewSystemHandler(pool, rdb, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	importWorker := worker.NewImportWorker(jobRepo, importService, log)
	go importWorker.Start(workerCtx)

	loginLimiter := middleware.NewRateLimiter(cfg.LoginRateLimit, time.Minute)
	go loginLimiter.RunCleanup(workerCtx.Done())

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg, loginLimiter, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the import worker and let a running import finish.
	workerCancel()
	select {
	case <-importWorker.Done():
	case <-time.After(workerDrainTimeout):
		log.Warn().Msg("Import worker did not finish in time")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
