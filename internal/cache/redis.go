// internal/cache/redis.go
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"catshelter/internal/observability/logging"
)

// redisCache implements a Redis-backed cache.
type redisCache struct {
	logger    *logging.Logger
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds connection settings for the redis backend.
type RedisConfig struct {
	// Addr is the redis host:port.
	Addr string

	// Password is the redis password, empty for none.
	Password string

	// DB is the redis database number.
	DB int

	// KeyPrefix is prepended to every cache key.
	KeyPrefix string
}

// NewRedis creates a redis-backed cache and verifies connectivity.
func NewRedis(ctx context.Context, cfg RedisConfig, logger *logging.Logger) (Cache, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: redis address is required", ErrInvalidConfig)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger = logger.WithModule("cache.redis")
	logger.Info("redis cache initialized", "addr", logging.RedactRedisAddr(cfg.Addr))

	return &redisCache{
		logger:    logger,
		client:    client,
		keyPrefix: cfg.KeyPrefix,
	}, nil
}

func (c *redisCache) resolveKey(key string) string {
	return c.keyPrefix + key
}

// Get retrieves a value from redis.
func (c *redisCache) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := c.client.Get(ctx, c.resolveKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return v, nil
}

// Set stores a value in redis with the given TTL.
func (c *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.resolveKey(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes a value from redis.
func (c *redisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.resolveKey(key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Close closes the redis client.
func (c *redisCache) Close() error {
	return c.client.Close()
}
