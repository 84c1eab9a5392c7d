package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"steward/internal/backend"
	"steward/internal/config"
	applog "steward/internal/log"
	"steward/internal/services"
	"steward/internal/storage"
	"steward/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	logger.Info("Starting steward-cron")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	loc := cfg.Location()

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	kind, err := backend.ParseKind(cfg.ReportBackend)
	if err != nil {
		logger.Error("Invalid report backend", "error", err)
		os.Exit(1)
	}
	sinkResult, err := backend.NewFactory(logger.Logger).CreateSink(ctx, backend.Config{
		Kind:                kind,
		GoogleSpreadsheetID: cfg.GoogleSpreadsheetID,
		GoogleReportSheet:   cfg.GoogleReportSheet,
	})
	if err != nil {
		logger.Error("Failed to initialize report sink", "error", err, "backend", cfg.ReportBackend)
		os.Exit(1)
	}
	if sinkResult.Cleanup != nil {
		defer sinkResult.Cleanup()
	}

	budgetSvc := services.NewBudgetService(repo, repo, repo, repo, nil, loc)
	reportWorker := worker.NewReportWorker(budgetSvc, repo, sinkResult.Sink, loc)

	// Exports run on the configured schedule in the configured timezone,
	// so "first of the month at 06:00" means 06:00 parish time.
	scheduler := cron.New(cron.WithLocation(loc))
	_, err = scheduler.AddFunc(cfg.ExportCron, func() {
		logger.Info("Running scheduled export", "schedule", cfg.ExportCron)
		if err := reportWorker.ExportCurrentYear(ctx, ""); err != nil {
			logger.Error("Scheduled export failed", "error", err)
			return
		}
		logger.Info("Scheduled export complete")
	})
	if err != nil {
		logger.Error("Invalid cron schedule", "error", err, "schedule", cfg.ExportCron)
		os.Exit(1)
	}

	scheduler.Start()
	logger.Info("Export schedule registered", "schedule", cfg.ExportCron, "timezone", cfg.Timezone)

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	logger.Info("Shutting down steward-cron...")
	stopCtx := scheduler.Stop()
	cancel()

	select {
	case <-stopCtx.Done():
		logger.Info("Scheduler stopped")
	case <-time.After(30 * time.Second):
		logger.Warn("Shutdown timeout reached")
	}
}
