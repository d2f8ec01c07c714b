package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/distro/backoffice/internal/infrastructure/cache"
	"github.com/distro/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockIdempotencyStore struct {
	mock.Mock
}

func (m *mockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *mockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *mockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}

// newIdempotentRouter serves a handler answering with *status and counting its calls
func newIdempotentRouter(cfg IdempotencyConfig, status *int, calls *atomic.Int32) *gin.Engine {
	router := gin.New()
	router.POST("/api/:business/purchases/free",
		func(c *gin.Context) {
			c.Set(BusinessIDKey, c.Param(BusinessParam))
			c.Next()
		},
		Idempotency(cfg),
		func(c *gin.Context) {
			calls.Add(1)
			c.JSON(*status, gin.H{"success": *status < 300})
		},
	)
	return router
}

func postWithKey(router http.Handler, business, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/"+business+"/purchases/free", strings.NewReader("{}"))
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIdempotency(t *testing.T) {
	newStore := func(t *testing.T) *cache.InMemoryIdempotencyStore {
		store := cache.NewInMemoryIdempotencyStore()
		t.Cleanup(func() { _ = store.Close() })
		return store
	}

	t.Run("without header every request runs", func(t *testing.T) {
		status, calls := http.StatusOK, &atomic.Int32{}
		router := newIdempotentRouter(IdempotencyConfig{Store: newStore(t), Prefix: "free-issue"}, &status, calls)

		assert.Equal(t, http.StatusOK, postWithKey(router, "wireman", "").Code)
		assert.Equal(t, http.StatusOK, postWithKey(router, "wireman", "").Code)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("replayed key is rejected with 409", func(t *testing.T) {
		status, calls := http.StatusOK, &atomic.Int32{}
		router := newIdempotentRouter(IdempotencyConfig{Store: newStore(t), Prefix: "free-issue"}, &status, calls)

		assert.Equal(t, http.StatusOK, postWithKey(router, "wireman", "bill-1").Code)

		w := postWithKey(router, "wireman", "bill-1")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeDuplicateRequest)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("keys are scoped per business", func(t *testing.T) {
		status, calls := http.StatusOK, &atomic.Int32{}
		router := newIdempotentRouter(IdempotencyConfig{Store: newStore(t), Prefix: "free-issue"}, &status, calls)

		assert.Equal(t, http.StatusOK, postWithKey(router, "wireman", "bill-1").Code)
		assert.Equal(t, http.StatusOK, postWithKey(router, "retail", "bill-1").Code)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("failed request does not record the key", func(t *testing.T) {
		status, calls := http.StatusInternalServerError, &atomic.Int32{}
		router := newIdempotentRouter(IdempotencyConfig{Store: newStore(t), Prefix: "free-issue"}, &status, calls)

		assert.Equal(t, http.StatusInternalServerError, postWithKey(router, "wireman", "bill-1").Code)

		status = http.StatusOK
		assert.Equal(t, http.StatusOK, postWithKey(router, "wireman", "bill-1").Code)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("oversized key is rejected", func(t *testing.T) {
		status, calls := http.StatusOK, &atomic.Int32{}
		router := newIdempotentRouter(IdempotencyConfig{Store: newStore(t)}, &status, calls)

		w := postWithKey(router, "wireman", strings.Repeat("k", MaxIdempotencyKeyLength+1))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Zero(t, calls.Load())
	})
}

func TestIdempotency_StoreInteraction(t *testing.T) {
	t.Run("records key with configured TTL", func(t *testing.T) {
		store := new(mockIdempotencyStore)
		store.On("IsProcessed", mock.Anything, "free-issue:wireman:bill-1").Return(false, nil)
		store.On("MarkProcessed", mock.Anything, "free-issue:wireman:bill-1", 2*time.Hour).Return(true, nil)

		status, calls := http.StatusOK, &atomic.Int32{}
		router := newIdempotentRouter(IdempotencyConfig{Store: store, TTL: 2 * time.Hour, Prefix: "free-issue"}, &status, calls)

		require.Equal(t, http.StatusOK, postWithKey(router, "wireman", "bill-1").Code)
		store.AssertExpectations(t)
	})

	t.Run("store outage lets the request through", func(t *testing.T) {
		store := new(mockIdempotencyStore)
		store.On("IsProcessed", mock.Anything, mock.Anything).Return(false, errors.New("redis down"))
		store.On("MarkProcessed", mock.Anything, mock.Anything, mock.Anything).Return(false, errors.New("redis down"))

		status, calls := http.StatusOK, &atomic.Int32{}
		router := newIdempotentRouter(IdempotencyConfig{Store: store, Prefix: "free-issue"}, &status, calls)

		assert.Equal(t, http.StatusOK, postWithKey(router, "wireman", "bill-1").Code)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("default TTL applies when unset", func(t *testing.T) {
		store := new(mockIdempotencyStore)
		store.On("IsProcessed", mock.Anything, mock.Anything).Return(false, nil)
		store.On("MarkProcessed", mock.Anything, mock.Anything, 24*time.Hour).Return(true, nil)

		status, calls := http.StatusOK, &atomic.Int32{}
		router := newIdempotentRouter(IdempotencyConfig{Store: store, Prefix: "free-issue"}, &status, calls)

		require.Equal(t, http.StatusOK, postWithKey(router, "wireman", "bill-1").Code)
		store.AssertExpectations(t)
	})
}
