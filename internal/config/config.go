package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Backend names accepted by DATA_BACKEND.
const (
	BackendMemory = "memory"
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

type Config struct {
	// HTTP Server
	Port string `yaml:"port"`

	// Backend selection
	DataBackend  string `yaml:"data_backend"`
	DataFile     string `yaml:"data_file"`
	SQLiteDBPath string `yaml:"sqlite_db_path"`

	// AMQP, optional: an empty URL disables record events
	AMQPURL      string `yaml:"amqp_url"`
	AMQPExchange string `yaml:"amqp_exchange"`
	AMQPQueue    string `yaml:"amqp_queue"`

	// Worker
	ReportDir string `yaml:"report_dir"`

	LogLevel string `yaml:"log_level"`

	// Summary cache
	SummaryCacheSize int           `yaml:"summary_cache_size"`
	SummaryCacheTTL  time.Duration `yaml:"summary_cache_ttl"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		Port:             "8081",
		DataBackend:      BackendJSON,
		DataFile:         "./data/financial_data.json",
		SQLiteDBPath:     "./data/fintrack.db",
		AMQPExchange:     "fintrack",
		AMQPQueue:        "summary_refresh",
		LogLevel:         "info",
		SummaryCacheSize: 64,
		SummaryCacheTTL:  5 * time.Minute,
	}
}

// Load reads the configuration from environment variables on top of Defaults.
func Load() *Config {
	return Defaults().applyEnv()
}

// LoadFile reads a YAML file on top of Defaults, then applies environment
// variables, which win over file values.
func LoadFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	cfg := Defaults()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg.applyEnv(), nil
}

func (c *Config) applyEnv() *Config {
	c.Port = getEnv("PORT", c.Port)
	c.DataBackend = getEnv("DATA_BACKEND", c.DataBackend)
	c.DataFile = getEnv("DATA_FILE", c.DataFile)
	c.SQLiteDBPath = getEnv("SQLITE_DB_PATH", c.SQLiteDBPath)
	c.AMQPURL = getEnv("AMQP_URL", c.AMQPURL)
	c.AMQPExchange = getEnv("AMQP_EXCHANGE", c.AMQPExchange)
	c.AMQPQueue = getEnv("AMQP_QUEUE", c.AMQPQueue)
	c.ReportDir = getEnv("REPORT_DIR", c.ReportDir)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.SummaryCacheSize = getEnvInt("SUMMARY_CACHE_SIZE", c.SummaryCacheSize)
	c.SummaryCacheTTL = getEnvDuration("SUMMARY_CACHE_TTL", c.SummaryCacheTTL)
	return c
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validBackends := []string{BackendMemory, BackendJSON, BackendSQLite}
	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case BackendJSON:
		if c.DataFile == "" {
			errors = append(errors, "data file cannot be empty when using json backend")
		} else if msg := ensureDir(c.DataFile); msg != "" {
			errors = append(errors, msg)
		}
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if msg := ensureDir(c.SQLiteDBPath); msg != "" {
			errors = append(errors, msg)
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, strings.ToLower(c.LogLevel)) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLevels))
	}

	if c.SummaryCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid summary cache size %d: must be at least 1", c.SummaryCacheSize))
	} else if c.SummaryCacheSize > 10000 {
		errors = append(errors, fmt.Sprintf("invalid summary cache size %d: must be at most 10000", c.SummaryCacheSize))
	}

	if c.SummaryCacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid summary cache TTL %v: must be at least 1 second", c.SummaryCacheTTL))
	} else if c.SummaryCacheTTL > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid summary cache TTL %v: must be at most 24 hours", c.SummaryCacheTTL))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ensureDir creates the parent directory of path when missing and returns a
// validation message when that fails.
func ensureDir(path string) string {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return ""
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Sprintf("cannot create directory '%s': %v", dir, err)
		}
	}
	return ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
