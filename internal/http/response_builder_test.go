package http

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResponseBuilderJSON(t *testing.T) {
	w := httptest.NewRecorder()
	NewResponse().
		Status(http.StatusCreated).
		Header("X-Test", "yes").
		JSON(map[string]string{"id": "abc"}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Header().Get("X-Test") != "yes" {
		t.Error("custom header missing")
	}
	if w.Body.String() != `{"id":"abc"}` {
		t.Errorf("Body = %q", w.Body.String())
	}
}

func TestResponseBuilderEncodingFailure(t *testing.T) {
	w := httptest.NewRecorder()
	NewResponse().JSON(math.Inf(1)).Write(w)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status code = %d, want 500", w.Code)
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name    string
		builder *ResponseBuilder
		want    int
	}{
		{"bad request", BadRequestError("bad"), http.StatusBadRequest},
		{"unprocessable", UnprocessableEntityError("bad"), http.StatusUnprocessableEntity},
		{"internal", InternalServerError("boom"), http.StatusInternalServerError},
		{"unavailable", ServiceUnavailableError("down"), http.StatusServiceUnavailable},
		{"too many", TooManyRequestsError(30), http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)
			if w.Code != tt.want {
				t.Fatalf("Status code = %d, want %d", w.Code, tt.want)
			}
			var body errorView
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("body is not JSON: %v", err)
			}
			if body.Status != tt.want || body.Error == "" {
				t.Errorf("body = %+v", body)
			}
		})
	}
}
