// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for constructing JSON responses,
// so every handler reports success and failure in the same shape.

package http

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// ResponseBuilder provides a fluent API for building HTTP responses.
type ResponseBuilder struct {
	statusCode  int
	contentType string
	body        []byte
	headers     map[string]string
	err         error
}

// errorView is the body of every error response.
type errorView struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// NewResponse creates a new response builder with default 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// JSON encodes v as the response body. An encoding failure turns the
// response into a 500 when written.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	body, err := json.Marshal(v)
	if err != nil {
		b.err = err
		return b
	}
	b.contentType = "application/json"
	b.body = body
	return b
}

// Body sets a raw body with its content type.
func (b *ResponseBuilder) Body(contentType string, content []byte) *ResponseBuilder {
	b.contentType = contentType
	b.body = content
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	if b.err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}

	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.contentType != "" {
		w.Header().Set("Content-Type", b.contentType)
	}
	if len(b.body) > 0 {
		w.Header().Set("Content-Length", strconv.Itoa(len(b.body)))
	}

	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse creates a standard JSON error response.
func ErrorResponse(statusCode int, message string) *ResponseBuilder {
	return NewResponse().
		Status(statusCode).
		JSON(errorView{Error: message, Status: statusCode})
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// UnprocessableEntityError creates a 422 Unprocessable Entity error response.
func UnprocessableEntityError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// TooManyRequestsError asks the client to retry after retryAfter seconds.
func TooManyRequestsError(retryAfter int) *ResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, please try again later").
		Header("Retry-After", strconv.Itoa(retryAfter))
}

// ServiceUnavailableError creates a 503 Service Unavailable error response.
func ServiceUnavailableError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusServiceUnavailable, message)
}
