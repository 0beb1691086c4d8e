// internal/cache/cache.go

// Package cache provides the caching layer: a byte-oriented store with
// memory and redis backends for repository reads, and an in-process
// expiring map for values that never leave the process.
package cache

import (
	"context"
	"errors"
	"time"
)

// Common cache errors.
var (
	// ErrCacheMiss indicates that the key was not found in the cache.
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidConfig indicates that the cache configuration is invalid.
	ErrInvalidConfig = errors.New("invalid cache configuration")
)

// Cache is the byte-oriented cache interface.
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns ErrCacheMiss if the key is not found or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with the given TTL.
	// A TTL of 0 means the entry never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string) error

	// Close closes the cache connection.
	Close() error
}

// Wrap returns the cached value for key when present, otherwise invokes
// compute, stores its result with the given TTL, and returns it. Concurrent
// computations for the same key may race; the last write wins, which is safe
// as long as compute is idempotent.
func Wrap(ctx context.Context, c Cache, key string, ttl time.Duration, compute func(context.Context) ([]byte, error)) ([]byte, error) {
	if v, err := c.Get(ctx, key); err == nil {
		return v, nil
	} else if !errors.Is(err, ErrCacheMiss) {
		return nil, err
	}

	v, err := compute(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.Set(ctx, key, v, ttl); err != nil {
		return nil, err
	}
	return v, nil
}
