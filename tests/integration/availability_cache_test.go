package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/storefront/backend/internal/infrastructure/cache"
)

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "Failed to start Redis container")
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	require.NoError(t, client.Ping(ctx).Err())
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func TestRedisAvailabilityCache(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	client := newRedisClient(t)
	ctx := context.Background()
	productID := uuid.New()

	t.Run("miss before set, hit after", func(t *testing.T) {
		c := cache.NewRedisAvailabilityCacheWithClient(client, time.Minute)

		_, ok, err := c.Get(ctx, productID)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, c.Set(ctx, productID, decimal.NewFromInt(42)))

		got, ok, err := c.Get(ctx, productID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, got.Equal(decimal.NewFromInt(42)))
	})

	t.Run("invalidate removes the entry", func(t *testing.T) {
		c := cache.NewRedisAvailabilityCacheWithClient(client, time.Minute)

		require.NoError(t, c.Set(ctx, productID, decimal.NewFromInt(7)))
		require.NoError(t, c.Invalidate(ctx, productID))

		_, ok, err := c.Get(ctx, productID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("entries expire after the TTL", func(t *testing.T) {
		c := cache.NewRedisAvailabilityCacheWithClient(client, time.Second)

		require.NoError(t, c.Set(ctx, productID, decimal.NewFromInt(3)))
		time.Sleep(1500 * time.Millisecond)

		_, ok, err := c.Get(ctx, productID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
