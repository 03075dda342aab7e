package backend

import (
	"context"

	"fintrack/internal/ledger"
	"fintrack/internal/services"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// HealthFunc reports whether the backing storage is reachable.
type HealthFunc func(ctx context.Context) error

// BackendResult contains the record store plus what callers need to run and
// shut it down.
type BackendResult struct {
	Store ledger.Store
	// Publisher is nil when AMQP is not configured or unreachable.
	Publisher services.Publisher
	Health    HealthFunc
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// JSON file specific
	DataFile string

	// SQLite specific
	SQLiteDBPath string

	// Optional for every backend
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	JSONBackend   BackendType = "json"
	SQLiteBackend BackendType = "sqlite"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, JSONBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}
