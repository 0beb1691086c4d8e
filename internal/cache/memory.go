// internal/cache/memory.go
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"catshelter/internal/observability/logging"
)

// memoryCache implements an in-memory LRU cache with per-entry TTL.
type memoryCache struct {
	logger     *logging.Logger
	maxEntries int

	mu       sync.Mutex
	items    map[string]*list.Element
	eviction *list.List

	stopCh chan struct{}
}

type memoryCacheEntry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

// NewMemory creates a new in-memory cache. maxEntries <= 0 selects a default
// capacity of 10000.
func NewMemory(maxEntries int, logger *logging.Logger) Cache {
	if maxEntries <= 0 {
		maxEntries = 10000
	}

	c := &memoryCache{
		logger:     logger.WithModule("cache.memory"),
		maxEntries: maxEntries,
		items:      make(map[string]*list.Element),
		eviction:   list.New(),
		stopCh:     make(chan struct{}),
	}

	go c.cleanupLoop()

	c.logger.Debug("memory cache initialized", "maxEntries", maxEntries)
	return c
}

// Get retrieves a value from the cache.
func (c *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, exists := c.items[key]
	if !exists {
		return nil, ErrCacheMiss
	}

	entry := elem.Value.(*memoryCacheEntry)
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		c.removeElement(elem)
		return nil, ErrCacheMiss
	}

	c.eviction.MoveToFront(elem)
	return entry.value, nil
}

// Set stores a value in the cache.
func (c *memoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	entry := &memoryCacheEntry{
		key:       key,
		value:     value,
		expiresAt: expiresAt,
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[key]; exists {
		c.eviction.MoveToFront(elem)
		elem.Value = entry
		return nil
	}

	elem := c.eviction.PushFront(entry)
	c.items[key] = elem

	for c.eviction.Len() > c.maxEntries {
		c.evictOldest()
	}

	return nil
}

// Delete removes a value from the cache.
func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[key]; exists {
		c.removeElement(elem)
	}
	return nil
}

// Close stops the background cleanup goroutine.
func (c *memoryCache) Close() error {
	close(c.stopCh)
	return nil
}

// removeElement removes an entry; callers must hold the lock.
func (c *memoryCache) removeElement(elem *list.Element) {
	entry := elem.Value.(*memoryCacheEntry)
	c.eviction.Remove(elem)
	delete(c.items, entry.key)
}

// evictOldest drops the least recently used entry; callers must hold the lock.
func (c *memoryCache) evictOldest() {
	if elem := c.eviction.Back(); elem != nil {
		c.removeElement(elem)
	}
}

// cleanupLoop periodically sweeps expired entries so they do not pin memory
// until the next Get.
func (c *memoryCache) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.removeExpired()
		}
	}
}

func (c *memoryCache) removeExpired() {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for elem := c.eviction.Back(); elem != nil; {
		prev := elem.Prev()
		entry := elem.Value.(*memoryCacheEntry)
		if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
			c.removeElement(elem)
		}
		elem = prev
	}
}
