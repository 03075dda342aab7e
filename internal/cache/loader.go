package cache

import (
	"strconv"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Loader fills a cache on miss. Concurrent misses for the same key share one
// call to the load function.
type Loader[T any] struct {
	cache Cache[T]
	group singleflight.Group
	// generation moves on every Invalidate so loads that began earlier
	// neither join later callers nor store their result.
	generation atomic.Uint64
	// storeMu makes the generation check and Set one step with respect to
	// Invalidate.
	storeMu sync.Mutex
}

func NewLoader[T any](c Cache[T]) *Loader[T] {
	return &Loader[T]{cache: c}
}

// Get returns the cached value for key or computes it with load. Errors are
// returned to every waiting caller and nothing is cached.
func (l *Loader[T]) Get(key string, load func() (T, error)) (T, error) {
	if v, ok := l.cache.Get(key); ok {
		return v, nil
	}
	gen := l.generation.Load()
	v, err, _ := l.group.Do(strconv.FormatUint(gen, 10)+"/"+key, func() (any, error) {
		v, err := load()
		if err != nil {
			return v, err
		}
		l.storeMu.Lock()
		if l.generation.Load() == gen {
			l.cache.Set(key, v)
		}
		l.storeMu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Invalidate drops every cached value.
func (l *Loader[T]) Invalidate() {
	l.storeMu.Lock()
	defer l.storeMu.Unlock()
	l.generation.Add(1)
	l.cache.Purge()
}
