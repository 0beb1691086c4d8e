// internal/cache/expiring.go
package cache

import (
	"context"
	"sync"
	"time"
)

// Expiring is an in-process expiring map for values that cannot be
// serialized into the byte cache. GetOrCompute returns the cached value for
// a key while it is unexpired, otherwise recomputes and stores it.
// Concurrent recomputation for the same key is tolerated; compute must be
// idempotent.
type Expiring[V any] struct {
	mu    sync.RWMutex
	items map[string]expiringEntry[V]

	// now is replaceable in tests
	now func() time.Time
}

type expiringEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// NewExpiring creates an empty expiring map.
func NewExpiring[V any]() *Expiring[V] {
	return &Expiring[V]{
		items: make(map[string]expiringEntry[V]),
		now:   time.Now,
	}
}

// Get returns the unexpired value for key, if any.
func (e *Expiring[V]) Get(key string) (V, bool) {
	e.mu.RLock()
	entry, ok := e.items[key]
	e.mu.RUnlock()

	if !ok || e.now().After(entry.expiresAt) {
		var zero V
		return zero, false
	}
	return entry.value, true
}

// Set stores a value with the given TTL.
func (e *Expiring[V]) Set(key string, value V, ttl time.Duration) {
	e.mu.Lock()
	e.items[key] = expiringEntry[V]{
		value:     value,
		expiresAt: e.now().Add(ttl),
	}
	e.mu.Unlock()
}

// Delete removes a key.
func (e *Expiring[V]) Delete(key string) {
	e.mu.Lock()
	delete(e.items, key)
	e.mu.Unlock()
}

// GetOrCompute returns the cached value for key, computing and storing it
// when absent or expired.
func (e *Expiring[V]) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(context.Context) (V, error)) (V, error) {
	if v, ok := e.Get(key); ok {
		return v, nil
	}

	v, err := compute(ctx)
	if err != nil {
		var zero V
		return zero, err
	}

	e.Set(key, v, ttl)
	return v, nil
}

// SetClock replaces the time source; tests use this to force expiry.
func (e *Expiring[V]) SetClock(now func() time.Time) {
	e.mu.Lock()
	e.now = now
	e.mu.Unlock()
}
