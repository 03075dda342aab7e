// Package cache keeps computed summaries in memory between requests.
package cache

import (
	"time"

	"fintrack/internal/log"
)

// Cache defines a generic cache interface
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	// Purge drops every entry, e.g. after a write that may change any of them.
	Purge()
	Size() int
}

// Cleaner interface for caches that support cleanup
type Cleaner interface {
	CleanExpired() int
}

// Manager periodically drops expired entries from registered caches.
type Manager struct {
	caches      []Cleaner
	logger      *log.Logger
	stopCleanup chan struct{}
	cleanupDone chan struct{}
	started     bool
}

// NewManager creates a new cache manager
func NewManager(logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Discard()
	}
	return &Manager{
		logger:      logger.WithComponent(log.ComponentCache),
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

// Register adds a cache to the manager for cleanup
func (m *Manager) Register(cache Cleaner) {
	m.caches = append(m.caches, cache)
}

// StartCleanup begins periodic cleanup of all registered caches
func (m *Manager) StartCleanup(interval time.Duration) {
	m.started = true
	go m.cleanup(interval)
}

// CleanNow runs one cleanup pass and returns how many entries were removed.
func (m *Manager) CleanNow() int {
	total := 0
	for _, c := range m.caches {
		total += c.CleanExpired()
	}
	return total
}

func (m *Manager) cleanup(interval time.Duration) {
	defer close(m.cleanupDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := m.CleanNow(); n > 0 {
				m.logger.Debug("Expired cache entries removed", "removed", n)
			}
		case <-m.stopCleanup:
			return
		}
	}
}

// Stop ends the cleanup goroutine. It is safe to call when cleanup never
// started.
func (m *Manager) Stop() {
	if !m.started {
		return
	}
	m.started = false
	close(m.stopCleanup)
	<-m.cleanupDone
}
