// Package cli provides common CLI initialization utilities shared by
// cmd/fintrack, cmd/fintrack-cli and cmd/summary-worker.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fintrack/internal/backend"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

// ConfigFileEnv names the variable pointing at an optional YAML config file.
const ConfigFileEnv = "CONFIG_FILE"

// SetupLogger initializes structured logging at the given level and sets it
// as the default logger.
func SetupLogger(level string) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Level = log.ParseLevel(level)
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadConfig reads the YAML file named by path, or by CONFIG_FILE when path
// is empty, falling back to environment variables only. The result is
// validated.
func LoadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = os.Getenv(ConfigFileEnv)
	}

	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.Load()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg, err := LoadConfig("")
	if err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// OpenLedger creates the configured backend and a ledger service on top of
// it. Closing the service releases the backend.
func OpenLedger(ctx context.Context, logger *log.Logger, cfg *config.Config) (*services.LedgerService, *backend.BackendResult, error) {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}

	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s backend: %w", backendCfg.Type, err)
	}

	svc := services.NewLedgerService(result.Store, result.Publisher, logger.WithComponent(log.ComponentLedger))
	if result.Cleanup != nil {
		svc.OnClose(result.Cleanup)
	}
	return svc, result, nil
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that is cancelled on SIGINT or SIGTERM, and a channel
// closed once cleanup has run or timed out.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		finished := make(chan struct{})
		go func() {
			if cleanup != nil {
				cleanup(shutdownCtx)
			}
			close(finished)
		}()

		select {
		case <-finished:
			logger.Info("Shutdown complete")
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached")
		}
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup ended.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
