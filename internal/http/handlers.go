package http

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/report"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]any{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    s.now().Sub(s.appMetrics.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady checks the storage and reports cache and limiter state.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.health == nil {
		checks["storage"] = "ok"
	} else if err := s.health(ctx); err != nil {
		checks["storage"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["storage"] = "ok"
	}

	checks["cache"] = map[string]any{
		"summary_entries": s.summaryCache.Size(),
		"listing_entries": s.listingCache.Size(),
	}
	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
	}

	NewResponse().Status(httpStatus).JSON(map[string]any{
		"status":    status,
		"timestamp": s.now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	sec := s.security.snapshot()
	summaryStats := s.summaryCache.Stats()
	listingStats := s.listingCache.Stats()

	var b bytes.Buffer
	metric := func(name, help, kind string, lines ...string) {
		fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s %s\n", name, help, name, kind)
		for _, l := range lines {
			b.WriteString(l + "\n")
		}
		b.WriteString("\n")
	}

	metric("records_added_total", "Total number of records created", "counter",
		fmt.Sprintf("records_added_total %d", atomic.LoadInt64(&s.appMetrics.recordsAdded)))
	metric("cache_hits_total", "Total cache hits", "counter",
		fmt.Sprintf("cache_hits_total{cache=\"summary\"} %d", summaryStats.Hits),
		fmt.Sprintf("cache_hits_total{cache=\"listing\"} %d", listingStats.Hits))
	metric("cache_misses_total", "Total cache misses", "counter",
		fmt.Sprintf("cache_misses_total{cache=\"summary\"} %d", summaryStats.Misses),
		fmt.Sprintf("cache_misses_total{cache=\"listing\"} %d", listingStats.Misses))
	metric("cache_entries", "Current cache entries", "gauge",
		fmt.Sprintf("cache_entries{cache=\"summary\"} %d", summaryStats.Size),
		fmt.Sprintf("cache_entries{cache=\"listing\"} %d", listingStats.Size))
	metric("rate_limit_hits_total", "Total rate limit hits", "counter",
		fmt.Sprintf("rate_limit_hits_total %d", sec.RateLimitHits))
	metric("suspicious_requests_total", "Total suspicious requests detected", "counter",
		fmt.Sprintf("suspicious_requests_total %d", sec.SuspiciousRequests))
	metric("active_rate_limit_clients", "Currently tracked rate limit clients", "gauge",
		fmt.Sprintf("active_rate_limit_clients %d", s.rateLimiter.ActiveClients()))
	metric("uptime_seconds", "Application uptime in seconds", "gauge",
		fmt.Sprintf("uptime_seconds %.0f", s.now().Sub(s.appMetrics.started).Seconds()))

	NewResponse().Body("text/plain; charset=utf-8", b.Bytes()).Write(w)
}

// windowOrFail parses the window query, writing a 400 when it is invalid.
func (s *Server) windowOrFail(w http.ResponseWriter, r *http.Request) (core.DateWindow, bool) {
	win, err := ParseWindowParams(r.URL.Query(), s.now())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return core.DateWindow{}, false
	}
	return win, true
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	win, ok := s.windowOrFail(w, r)
	if !ok {
		return
	}
	summary, err := s.summary(r.Context(), win)
	if err != nil {
		s.serverError(w, r, "Summary computation failed", err, win)
		return
	}
	NewResponse().JSON(newSummaryView(summary)).Write(w)
}

func (s *Server) handleOccurrences(w http.ResponseWriter, r *http.Request) {
	win, ok := s.windowOrFail(w, r)
	if !ok {
		return
	}
	listing, err := s.listing(r.Context(), win)
	if err != nil {
		s.serverError(w, r, "Occurrence listing failed", err, win)
		return
	}
	NewResponse().JSON(newListingView(listing)).Write(w)
}

func (s *Server) handleSummaryWorkbook(w http.ResponseWriter, r *http.Request) {
	win, ok := s.windowOrFail(w, r)
	if !ok {
		return
	}
	summary, err := s.summary(r.Context(), win)
	if err != nil {
		s.serverError(w, r, "Summary computation failed", err, win)
		return
	}
	listing, err := s.listing(r.Context(), win)
	if err != nil {
		s.serverError(w, r, "Occurrence listing failed", err, win)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteWorkbook(&buf, summary, listing); err != nil {
		s.serverError(w, r, "Workbook rendering failed", err, win)
		return
	}
	NewResponse().
		Header("Content-Disposition", `attachment; filename="`+report.FileName(win)+`"`).
		Body("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes()).
		Write(w)
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBodyOrFail(w, r)
	if !ok {
		return
	}
	in, err := parseIncome(p, s.now())
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}
	id, err := s.ledger.AddIncome(r.Context(), in)
	s.created(w, r, core.KindIncome, id, err)
}

func (s *Server) handleCreateRecurringExpense(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBodyOrFail(w, r)
	if !ok {
		return
	}
	re, err := parseRecurringExpense(p, s.now())
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}
	id, err := s.ledger.AddRecurringExpense(r.Context(), re)
	s.created(w, r, core.KindRecurringExpense, id, err)
}

func (s *Server) handleCreateOccasionalExpense(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBodyOrFail(w, r)
	if !ok {
		return
	}
	oe, err := parseOccasionalExpense(p, s.now())
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}
	id, err := s.ledger.AddOccasionalExpense(r.Context(), oe)
	s.created(w, r, core.KindOccasionalExpense, id, err)
}

func parseBodyOrFail(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, bool) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("invalid request body: " + err.Error()).Write(w)
		return nil, false
	}
	return p, true
}

// created finishes a record creation request.
func (s *Server) created(w http.ResponseWriter, r *http.Request, kind core.RecordKind, id string, err error) {
	if err != nil {
		if isValidationError(err) {
			UnprocessableEntityError(err.Error()).Write(w)
			return
		}
		fields := log.NewFields()
		fields[log.FieldRecordKind] = string(kind)
		log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(), "Record creation failed", err,
			log.ComponentHTTP, log.OpCreate, fields)
		InternalServerError("failed to save record").Write(w)
		return
	}

	s.invalidate()
	atomic.AddInt64(&s.appMetrics.recordsAdded, 1)
	NewResponse().
		Status(http.StatusCreated).
		JSON(createdView{ID: id, Kind: kind}).
		Write(w)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, msg string, err error, win core.DateWindow) {
	log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(), msg, err,
		log.ComponentHTTP, log.OpSummarize, log.NewFields().WithWindow(win))
	InternalServerError("internal error").Write(w)
}
