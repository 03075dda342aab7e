package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

// Ledger is what the API needs from the ledger service.
type Ledger interface {
	AddIncome(ctx context.Context, in core.Income) (string, error)
	AddRecurringExpense(ctx context.Context, re core.RecurringExpense) (string, error)
	AddOccasionalExpense(ctx context.Context, oe core.OccasionalExpense) (string, error)
	Summary(ctx context.Context, w core.DateWindow) (core.Summary, error)
	Occurrences(ctx context.Context, w core.DateWindow) (services.WindowListing, error)
}

// Options tunes a Server. Zero values pick the defaults.
type Options struct {
	CacheSize int
	CacheTTL  time.Duration
	// RateLimit is the number of writes a client may make per minute.
	RateLimit int
	// Health checks the storage for /readyz; nil means always ready.
	Health func(ctx context.Context) error
	Logger *log.Logger
	// Now is the clock used for default windows and dates.
	Now func() time.Time
}

type appMetrics struct {
	started      time.Time
	recordsAdded int64
}

type Server struct {
	http.Server
	ledger  Ledger
	health  func(ctx context.Context) error
	logger  *log.Logger
	now     func() time.Time
	timeout time.Duration

	summaryCache *cache.LRUCache[core.Summary]
	listingCache *cache.LRUCache[services.WindowListing]
	summaries    *cache.Loader[core.Summary]
	listings     *cache.Loader[services.WindowListing]
	cacheManager *cache.Manager

	rateLimiter *rateLimiter
	security    *securityMetrics
	appMetrics  *appMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, ledger Ledger, opts Options) *Server {
	if opts.CacheSize < 1 {
		opts.CacheSize = 64
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		ledger:       ledger,
		health:       opts.Health,
		logger:       opts.Logger.WithComponent(log.ComponentHTTP),
		now:          opts.Now,
		timeout:      7 * time.Second,
		summaryCache: cache.NewLRUCache[core.Summary](opts.CacheSize, opts.CacheTTL),
		listingCache: cache.NewLRUCache[services.WindowListing](opts.CacheSize, opts.CacheTTL),
		cacheManager: cache.NewManager(opts.Logger),
		rateLimiter:  newRateLimiter(opts.RateLimit, time.Minute),
		security:     &securityMetrics{},
		appMetrics:   &appMetrics{started: opts.Now()},
	}
	s.summaries = cache.NewLoader[core.Summary](s.summaryCache)
	s.listings = cache.NewLoader[services.WindowListing](s.listingCache)
	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.Register(s.listingCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/summary", s.withSecurityHeaders(s.handleSummary))
	mux.HandleFunc("GET /api/summary.xlsx", s.withSecurityHeaders(s.handleSummaryWorkbook))
	mux.HandleFunc("GET /api/occurrences", s.withSecurityHeaders(s.handleOccurrences))
	mux.HandleFunc("POST /api/incomes", s.withSecurityHeaders(s.handleCreateIncome))
	mux.HandleFunc("POST /api/recurring-expenses", s.withSecurityHeaders(s.handleCreateRecurringExpense))
	mux.HandleFunc("POST /api/occasional-expenses", s.withSecurityHeaders(s.handleCreateOccasionalExpense))

	return s
}

// withSecurityHeaders adds security headers, rate limiting, and request
// logging to responses.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		reqID := requestID(r)

		logger := s.logger.With(log.FieldRequestID, reqID)
		ctx := log.WithContext(r.Context(), logger)
		r = r.WithContext(ctx)

		if detectSuspiciousRequest(r, s.security) {
			logger.WarnContext(ctx, "Suspicious request",
				log.FieldClientIP, clientIP,
				"method", r.Method,
				"url", r.URL.Path)
		}

		w.Header().Set("X-Request-ID", reqID)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store")

		rw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP, s.security) {
			logger.WarnContext(ctx, "Rate limit exceeded", log.FieldClientIP, clientIP, "url", r.URL.Path)
			TooManyRequestsError(max(s.rateLimiter.retryAfter(clientIP), 1)).Write(rw)
		} else {
			next(rw, r)
		}

		log.NewStructuredLogger(logger).LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

// invalidate drops every cached window: a new record can change any of them.
func (s *Server) invalidate() {
	s.summaries.Invalidate()
	s.listings.Invalidate()
}

func (s *Server) summary(ctx context.Context, w core.DateWindow) (core.Summary, error) {
	return s.summaries.Get(w.String(), func() (core.Summary, error) {
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return s.ledger.Summary(cctx, w)
	})
}

func (s *Server) listing(ctx context.Context, w core.DateWindow) (services.WindowListing, error) {
	return s.listings.Get(w.String(), func() (services.WindowListing, error) {
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return s.ledger.Occurrences(cctx, w)
	})
}

// Shutdown stops background goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
