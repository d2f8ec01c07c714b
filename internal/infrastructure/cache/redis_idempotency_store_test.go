package cache

import (
	"context"
	"testing"
	"time"

	"github.com/distro/backoffice/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// unreachableClient points at a port nothing listens on
func unreachableClient(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNewRedisIdempotencyStore_DefaultPrefix(t *testing.T) {
	store := NewRedisIdempotencyStore(unreachableClient(t), "")
	assert.Equal(t, DefaultIdempotencyKeyPrefix, store.keyPrefix)
	assert.NoError(t, store.Close())
}

func TestRedisIdempotencyStore_WrapsErrors(t *testing.T) {
	ctx := context.Background()
	store := NewRedisIdempotencyStore(unreachableClient(t), "test:")

	_, err := store.MarkProcessed(ctx, "bill", time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to mark idempotency key")

	_, err = store.IsProcessed(ctx, "bill")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to check idempotency key")
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	_, err := NewRedisClient(context.Background(), config.RedisConfig{Host: "127.0.0.1", Port: 1})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "127.0.0.1:1")
}

func TestNewIdempotencyStore(t *testing.T) {
	memory := NewIdempotencyStore(nil, zap.NewNop())
	defer memory.Close()
	assert.IsType(t, &InMemoryIdempotencyStore{}, memory)

	assert.IsType(t, &RedisIdempotencyStore{}, NewIdempotencyStore(unreachableClient(t), nil))
}
