package cache

import (
	"container/list"
	"sync"
	"time"
)

// LRUCache evicts the least recently used entry past maxSize and treats
// entries older than ttl as missing.
type LRUCache[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	lru     *list.List
	now     func() time.Time

	hits, misses uint64
}

type cacheItem[T any] struct {
	key       string
	data      T
	expiresAt time.Time
}

// Stats counts lookups since the cache was created.
type Stats struct {
	Hits   uint64
	Misses uint64
	Size   int
}

// NewLRUCache creates a new LRU cache with TTL. A maxSize below one is
// raised to one.
func NewLRUCache[T any](maxSize int, ttl time.Duration) *LRUCache[T] {
	if maxSize < 1 {
		maxSize = 1
	}
	return &LRUCache[T]{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
		now:     time.Now,
	}
}

func (c *LRUCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, exists := c.items[key]
	if !exists {
		c.misses++
		return zero, false
	}

	item := elem.Value.(*cacheItem[T])
	if c.now().After(item.expiresAt) {
		c.removeElement(elem)
		c.misses++
		return zero, false
	}

	c.lru.MoveToFront(elem)
	c.hits++
	return item.data, true
}

func (c *LRUCache[T]) Set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := &cacheItem[T]{
		key:       key,
		data:      data,
		expiresAt: c.now().Add(c.ttl),
	}

	if elem, exists := c.items[key]; exists {
		elem.Value = item
		c.lru.MoveToFront(elem)
		return
	}

	c.items[key] = c.lru.PushFront(item)

	if c.lru.Len() > c.maxSize {
		if oldest := c.lru.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
}

func (c *LRUCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[key]; exists {
		c.removeElement(elem)
	}
}

func (c *LRUCache[T]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.lru.Init()
}

func (c *LRUCache[T]) removeElement(elem *list.Element) {
	item := elem.Value.(*cacheItem[T])
	delete(c.items, item.key)
	c.lru.Remove(elem)
}

// CleanExpired removes all expired entries and returns count of removed items
func (c *LRUCache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for elem := c.lru.Front(); elem != nil; {
		next := elem.Next()
		if now.After(elem.Value.(*cacheItem[T]).expiresAt) {
			c.removeElement(elem)
			removed++
		}
		elem = next
	}
	return removed
}

func (c *LRUCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *LRUCache[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Hits: c.hits, Misses: c.misses, Size: len(c.items)}
}
