package backend

import (
	"fmt"

	"fintrack/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type:         backendType,
		DataFile:     appConfig.DataFile,
		SQLiteDBPath: appConfig.SQLiteDBPath,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case JSONBackend:
		if c.DataFile == "" {
			return fmt.Errorf("data file is required for json backend")
		}
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	case MemoryBackend:
		// nothing to check, records live for the process lifetime
	}

	// AMQP is optional, only the names are checked when a URL is given
	if c.AMQPURL != "" && (c.AMQPExchange == "" || c.AMQPQueue == "") {
		return fmt.Errorf("AMQP exchange and queue are required when an AMQP URL is set")
	}

	return nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{MemoryBackend, JSONBackend, SQLiteBackend}
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	types := GetBackendTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
