package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"steward/internal/amqp"
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

	logger.Info("Starting steward-worker")

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

	// Pick the report sink (memory for local runs, Google Sheets in prod).
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

	// The worker only reads, so it never publishes change events.
	budgetSvc := services.NewBudgetService(repo, repo, repo, repo, nil, loc)
	reportWorker := worker.NewReportWorker(budgetSvc, repo, sinkResult.Sink, loc)

	// Export once on startup so a fresh deployment has a current sheet
	// before any event arrives.
	if err := reportWorker.ExportCurrentYear(ctx, ""); err != nil {
		logger.Error("Startup export failed", "error", err)
		// Don't exit - the consumer and periodic pass will retry
	}

	// Consume change events; reconnects with backoff on broker failures.
	if cfg.AMQPURL != "" {
		go func() {
			err := amqp.ConsumeWithReconnect(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, reportWorker.HandleEnvelope)
			if err != nil && err != context.Canceled {
				logger.Error("Message consumption failed", "error", err)
			}
			cancel()
		}()
	} else {
		logger.Info("AMQP disabled - relying on periodic export only")
	}

	// Periodic full export catches events lost while disconnected.
	go reportWorker.RunPeriodic(ctx, cfg.ExportInterval)

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	logger.Info("Shutting down worker...")
	cancel()

	// Give in-flight exports a moment to finish
	time.Sleep(2 * time.Second)
	logger.Info("Worker shutdown complete")
}
