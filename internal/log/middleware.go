package log

import (
	"context"
	"log/slog"
	"net/http"

	"fintrack/internal/core"
)

// ContextKey type for context keys
type ContextKey string

// LoggerContextKey is the context key for the logger
const LoggerContextKey ContextKey = "logger"

// Middleware creates HTTP middleware that adds a logger to the request context
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), LoggerContextKey, logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithContext stores logger in ctx.
func WithContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// FromContext extracts a logger from the request context, falling back to
// the slog default.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// RequestIDMiddleware adds request ID to logger context
func RequestIDMiddleware(extractRequestID func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := FromContext(r.Context()).With(FieldRequestID, extractRequestID(r))
			next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), logger)))
		})
	}
}

// StructuredLogger provides structured logging methods with context awareness
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

// LogHTTPEnd logs the completion of an HTTP request at a level derived from
// the status code.
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, statusCode int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	if statusCode >= 400 && statusCode < 500 {
		level = slog.LevelWarn
	} else if statusCode >= 500 {
		level = slog.LevelError
	}

	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent")).
		WithHTTPResponse(statusCode, durationMs, statusCode < 400).
		WithClientIP(clientIP).
		WithComponent(ComponentHTTP)

	sl.logger.Logger.Log(ctx, level, "HTTP request completed", fields.ToSlice()...)
}

func (sl *StructuredLogger) LogRecordAdded(ctx context.Context, kind core.RecordKind, id string, date core.Date, amount core.Money) {
	fields := NewFields().
		WithRecord(kind, id, date, amount).
		WithOperation(OpCreate).
		WithComponent(ComponentLedger)

	sl.logger.Logger.InfoContext(ctx, "Record added", fields.ToSlice()...)
}

// LogSummary logs a computed summary; skipped records raise it to warn.
func (sl *StructuredLogger) LogSummary(ctx context.Context, s core.Summary) {
	level := slog.LevelInfo
	if s.Skipped > 0 {
		level = slog.LevelWarn
	}
	fields := NewFields().
		WithSummary(s).
		WithOperation(OpSummarize).
		WithComponent(ComponentAggregator)

	sl.logger.Logger.Log(ctx, level, "Summary computed", fields.ToSlice()...)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component string, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	allFields := fields.
		WithError(err).
		WithOperation(operation).
		WithComponent(component)

	sl.logger.Logger.ErrorContext(ctx, msg, allFields.ToSlice()...)
}
