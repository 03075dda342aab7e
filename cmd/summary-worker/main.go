package main

import (
	"context"
	"errors"
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadConfig("")
	if err != nil {
		cli.SetupLogger("info").Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg.LogLevel).WithComponent(log.ComponentWorker)

	logger.Info("Starting summary-worker")

	// The worker reads what the server writes, so it needs the shared SQLite
	// database rather than a per-process store.
	if cfg.DataBackend != config.BackendSQLite {
		logger.Error("summary-worker requires the sqlite backend", log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("summary-worker requires AMQP_URL")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	// Read-only here: no publisher, the worker never adds records.
	svc := services.NewLedgerService(repo, nil, logger)
	summaryWorker := worker.NewSummaryWorker(svc, cfg.ReportDir, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	if err := summaryWorker.RefreshCurrentMonth(ctx); err != nil {
		logger.Error("Failed initial refresh", "error", err)
	}

	go func() {
		if err := amqpClient.ConsumeRecordAdded(ctx, summaryWorker.HandleRecordAdded); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", "error", err)
		}
	}()

	// Periodic refresh covers messages lost while the broker was unreachable.
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := summaryWorker.RefreshCurrentMonth(ctx); err != nil {
					logger.Error("Periodic refresh failed", "error", err)
				}
			}
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
