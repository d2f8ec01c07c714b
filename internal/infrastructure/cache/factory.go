package cache

import (
	"github.com/distro/backoffice/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewIdempotencyStore returns a Redis-backed store when client is set and an
// in-memory store otherwise.
func NewIdempotencyStore(client redis.UniversalClient, logger *zap.Logger) shared.IdempotencyStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client != nil {
		logger.Info("Using Redis idempotency store")
		return NewRedisIdempotencyStore(client, DefaultIdempotencyKeyPrefix)
	}
	logger.Warn("Redis disabled, idempotency keys are kept in process memory " +
		"and are not shared between instances")
	return NewInMemoryIdempotencyStore()
}
