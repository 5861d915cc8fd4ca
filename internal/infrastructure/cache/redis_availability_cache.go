package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	appstock "github.com/storefront/backend/internal/application/stock"
	"github.com/storefront/backend/internal/infrastructure/config"
)

const availabilityKeyPrefix = "stock:availability:"

// RedisAvailabilityCache caches aggregate product availability in Redis so
// repeated availability reads skip the database. Suitable for distributed
// deployments where multiple instances share the cache.
type RedisAvailabilityCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisAvailabilityCache creates a cache backed by a new Redis connection
func NewRedisAvailabilityCache(cfg config.RedisConfig, ttl time.Duration) (*RedisAvailabilityCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisAvailabilityCacheWithClient(client, ttl), nil
}

// NewRedisAvailabilityCacheWithClient creates a cache over an existing client.
// Useful for testing or when sharing a client across components.
func NewRedisAvailabilityCacheWithClient(client *redis.Client, ttl time.Duration) *RedisAvailabilityCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisAvailabilityCache{
		client:    client,
		keyPrefix: availabilityKeyPrefix,
		ttl:       ttl,
	}
}

// Get returns the cached availability and whether it was present
func (c *RedisAvailabilityCache) Get(ctx context.Context, productID uuid.UUID) (decimal.Decimal, bool, error) {
	value, err := c.client.Get(ctx, c.key(productID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, fmt.Errorf("failed to read availability: %w", err)
	}

	available, err := decimal.NewFromString(value)
	if err != nil {
		// A corrupt entry behaves like a miss; the caller will overwrite it
		return decimal.Zero, false, nil
	}
	return available, true, nil
}

// Set stores the availability for a product with the configured TTL
func (c *RedisAvailabilityCache) Set(ctx context.Context, productID uuid.UUID, available decimal.Decimal) error {
	if err := c.client.Set(ctx, c.key(productID), available.String(), c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache availability: %w", err)
	}
	return nil
}

// Invalidate drops the cached entry for a product
func (c *RedisAvailabilityCache) Invalidate(ctx context.Context, productID uuid.UUID) error {
	if err := c.client.Del(ctx, c.key(productID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate availability: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisAvailabilityCache) Close() error {
	return c.client.Close()
}

func (c *RedisAvailabilityCache) key(productID uuid.UUID) string {
	return c.keyPrefix + productID.String()
}

// Ensure RedisAvailabilityCache implements AvailabilityCache
var _ appstock.AvailabilityCache = (*RedisAvailabilityCache)(nil)
