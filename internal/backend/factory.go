package backend

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/ledger/jsonfile"
	"fintrack/internal/ledger/memory"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		result *BackendResult
		err    error
	)
	switch config.Type {
	case MemoryBackend:
		result = f.createMemoryBackend()
	case JSONBackend:
		result, err = f.createJSONBackend(config)
	case SQLiteBackend:
		result, err = f.createSQLiteBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	f.attachPublisher(config, result)
	return result, nil
}

func (f *DefaultFactory) createMemoryBackend() *BackendResult {
	f.logger.Info("Initialized memory backend")
	return &BackendResult{
		Store: memory.New(core.Records{}),
	}
}

func (f *DefaultFactory) createJSONBackend(config Config) (*BackendResult, error) {
	store, err := jsonfile.Open(config.DataFile, f.logger.WithComponent(log.ComponentStorage))
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}

	f.logger.Info("Initialized JSON file backend", log.FieldFile, store.Path())

	return &BackendResult{Store: store}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Store:   repo,
		Health:  repo.Ping,
		Cleanup: repo.Close,
	}, nil
}

// attachPublisher connects to AMQP when configured. A broker that cannot be
// reached only disables record events.
func (f *DefaultFactory) attachPublisher(config Config, result *BackendResult) {
	if config.AMQPURL == "" {
		return
	}

	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without record events", "error", err)
		return
	}

	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)

	result.Publisher = client
	storeCleanup := result.Cleanup
	result.Cleanup = func() error {
		var errs []error
		if err := client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close amqp client: %w", err))
		}
		if storeCleanup != nil {
			if err := storeCleanup(); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}
