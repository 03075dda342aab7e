package http

import (
	"sync"
	"sync/atomic"
	"time"
)

// rateLimiter counts requests per client IP in fixed windows.
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	limit        int
	window       time.Duration
	now          func() time.Time
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	windowStart time.Time
	lastRequest time.Time
	requests    int
}

// newRateLimiter allows limit requests per client per window. It starts a
// cleanup goroutine that stop ends.
func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	if limit < 1 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		limit:       limit,
		window:      window,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries drops clients idle for ten windows.
func (rl *rateLimiter) cleanupStaleEntries() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-10 * rl.window)
	removed := 0
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
			removed++
		}
	}
	return removed
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

// allow records a request from clientIP and reports whether it is within
// the limit. Rejections are counted in metrics when it is non-nil.
func (rl *rateLimiter) allow(clientIP string, metrics *securityMetrics) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	client, exists := rl.clients[clientIP]
	if !exists {
		rl.clients[clientIP] = &clientInfo{windowStart: now, lastRequest: now, requests: 1}
		return true
	}

	client.lastRequest = now
	if now.Sub(client.windowStart) >= rl.window {
		client.windowStart = now
		client.requests = 1
		return true
	}

	client.requests++
	if client.requests > rl.limit {
		if metrics != nil {
			atomic.AddInt64(&metrics.rateLimitHits, 1)
		}
		return false
	}
	return true
}

// retryAfter is the number of seconds until clientIP's window resets.
func (rl *rateLimiter) retryAfter(clientIP string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	client, ok := rl.clients[clientIP]
	if !ok {
		return 0
	}
	left := rl.window - rl.now().Sub(client.windowStart)
	if left <= 0 {
		return 0
	}
	return int((left + time.Second - 1) / time.Second)
}

// ActiveClients returns the number of clients currently tracked.
func (rl *rateLimiter) ActiveClients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}
