package http

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fintrack/internal/core"
)

// sanitizeInput removes control characters except tab, newline and carriage
// return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// requestID keeps a well-formed incoming X-Request-ID, otherwise makes one.
func requestID(r *http.Request) string {
	id := strings.TrimSpace(r.Header.Get("X-Request-ID"))
	if id == "" || len(id) > 64 || strings.ContainsFunc(id, func(r rune) bool { return r < 33 || r > 126 }) {
		return generateRequestID()
	}
	return id
}

// isValidationError reports whether err comes from rejecting user input.
func isValidationError(err error) bool {
	for _, target := range []error{
		core.ErrInvalidDate,
		core.ErrInvalidAmount,
		core.ErrInvalidFrequency,
		core.ErrInvalidWindow,
		core.ErrEmptyDescription,
		core.ErrEmptySource,
		core.ErrDescriptionTooLong,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// statusRecorder wraps http.ResponseWriter to capture the status code
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
