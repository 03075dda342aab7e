package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger with a component name that is attached to every record.
type Logger struct {
	*slog.Logger
	component string
}

// Config holds logger configuration
type Config struct {
	Level     slog.Level
	Component string
	Handler   slog.Handler
}

// DefaultConfig returns sensible defaults for logging
func DefaultConfig() Config {
	return Config{
		Level:     slog.LevelInfo,
		Component: ComponentApp,
	}
}

// New creates a new logger with the given configuration. Without an explicit
// handler it writes text records to stdout at config.Level.
func New(config Config) *Logger {
	handler := config.Handler
	if handler == nil {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: config.Level})
	}
	return &Logger{
		Logger:    slog.New(handler),
		component: config.Component,
	}
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *Logger {
	return New(Config{Component: "test", Handler: slog.NewTextHandler(io.Discard, nil)})
}

// ParseLevel maps debug, info, warn and error (any case) to a slog level.
// Anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a new logger with the given attributes
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger:    l.Logger.With(args...),
		component: l.component,
	}
}

// WithComponent returns a new logger with a specific component name
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger:    l.Logger,
		component: component,
	}
}

func (l *Logger) Info(msg string, args ...any) {
	l.Logger.Info(msg, l.prepend(args)...)
}

func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.Logger.InfoContext(ctx, msg, l.prepend(args)...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.Logger.Warn(msg, l.prepend(args)...)
}

func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.Logger.WarnContext(ctx, msg, l.prepend(args)...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.Logger.Error(msg, l.prepend(args)...)
}

func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.Logger.ErrorContext(ctx, msg, l.prepend(args)...)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.Logger.Debug(msg, l.prepend(args)...)
}

func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.Logger.DebugContext(ctx, msg, l.prepend(args)...)
}

func (l *Logger) prepend(args []any) []any {
	return append([]any{FieldComponent, l.component}, args...)
}

// SetDefault sets the default logger for the application
func SetDefault(logger *Logger) {
	slog.SetDefault(logger.Logger)
}

// Component returns the logger's component name
func (l *Logger) Component() string {
	return l.component
}
