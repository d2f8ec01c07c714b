package middleware

import (
	"net/http"
	"time"

	"github.com/distro/backoffice/internal/domain/shared"
	"github.com/distro/backoffice/internal/infrastructure/logger"
	"github.com/distro/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// IdempotencyKeyHeader is the request header naming a retry-safe operation
	IdempotencyKeyHeader = "Idempotency-Key"
	// MaxIdempotencyKeyLength bounds client-supplied keys
	MaxIdempotencyKeyLength = 255
)

// IdempotencyConfig configures the Idempotency middleware
type IdempotencyConfig struct {
	Store shared.IdempotencyStore
	// TTL is how long a processed key is remembered
	TTL time.Duration
	// Prefix namespaces keys in the store, e.g. "free-issue"
	Prefix string
}

// Idempotency makes a handler safe to retry. Requests without an Idempotency-Key
// header pass through untouched. A key already recorded for the business is answered
// with 409 and the handler does not run; a 2xx response records the key.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.TTL <= 0 {
		cfg.TTL = shared.DefaultIdempotencyConfig().TTL
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" || cfg.Store == nil {
			c.Next()
			return
		}
		if len(key) > MaxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(
				dto.ErrCodeInvalidInput,
				"Idempotency-Key must be at most 255 characters",
				GetRequestID(c),
			))
			return
		}

		storeKey := cfg.Prefix + ":" + GetBusinessID(c) + ":" + key
		log := logger.GetGinLogger(c).With(zap.String("idempotency_key", key))

		processed, err := cfg.Store.IsProcessed(c.Request.Context(), storeKey)
		if err != nil {
			// A store outage must not block bills
			log.Warn("Idempotency check failed, processing request", zap.Error(err))
		} else if processed {
			log.Info("Duplicate request rejected")
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponse(
				dto.ErrCodeDuplicateRequest,
				"Request with this Idempotency-Key was already processed",
				GetRequestID(c),
			))
			return
		}

		c.Next()

		if status := c.Writer.Status(); status < 200 || status >= 300 {
			return
		}
		marked, err := cfg.Store.MarkProcessed(c.Request.Context(), storeKey, cfg.TTL)
		switch {
		case err != nil:
			log.Warn("Failed to record idempotency key", zap.Error(err))
		case !marked:
			log.Warn("Idempotency key recorded by a concurrent request")
		}
	}
}
