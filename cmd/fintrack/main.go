package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"fintrack/internal/cli"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadConfig("")
	if err != nil {
		cli.SetupLogger("info").Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg.LogLevel)

	svc, result, err := cli.OpenLedger(context.Background(), logger, cfg)
	if err != nil {
		logger.Error("Failed to open ledger", "error", err, log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		CacheSize: cfg.SummaryCacheSize,
		CacheTTL:  cfg.SummaryCacheTTL,
		Health:    result.Health,
		Logger:    logger,
	})
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := svc.Close(); err != nil {
			logger.Error("Ledger close error", "error", err)
		}
	})

	logger.Info("Starting fintrack server",
		"port", cfg.Port,
		log.FieldBackend, cfg.DataBackend,
		"amqp_enabled", result.Publisher != nil)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		_ = svc.Close()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
