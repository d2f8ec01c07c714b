package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observation struct {
	method string
	route  string
	status int
}

type fakeObserver struct {
	mu       sync.Mutex
	started  int
	observed []observation
}

func (f *fakeObserver) RequestStarted() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started++
}

func (f *fakeObserver) ObserveRequest(method, route string, status int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.observed = append(f.observed, observation{method: method, route: route, status: status})
}

func newMetricsRouter(obs *fakeObserver, skip ...string) *gin.Engine {
	router := gin.New()
	router.Use(Metrics(obs, skip...))
	router.GET("/api/:business/supplier-claims/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.POST("/api/:business/purchases/free", func(c *gin.Context) {
		c.Status(http.StatusConflict)
	})
	router.GET("/metrics", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	obs := &fakeObserver{}
	router := newMetricsRouter(obs)

	for _, id := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/wireman/supplier-claims/"+id, nil))
	}

	require.Len(t, obs.observed, 2)
	for _, o := range obs.observed {
		assert.Equal(t, "/api/:business/supplier-claims/:id", o.route)
		assert.Equal(t, http.MethodGet, o.method)
		assert.Equal(t, http.StatusOK, o.status)
	}
	assert.Equal(t, 2, obs.started)
}

func TestMetrics_RecordsStatus(t *testing.T) {
	obs := &fakeObserver{}
	router := newMetricsRouter(obs)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/wireman/purchases/free", nil))

	require.Len(t, obs.observed, 1)
	assert.Equal(t, http.StatusConflict, obs.observed[0].status)
	assert.Equal(t, http.MethodPost, obs.observed[0].method)
}

func TestMetrics_UnmatchedRoute(t *testing.T) {
	obs := &fakeObserver{}
	router := newMetricsRouter(obs)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/does/not/exist", nil))

	require.Len(t, obs.observed, 1)
	assert.Equal(t, unmatchedRoute, obs.observed[0].route)
	assert.Equal(t, http.StatusNotFound, obs.observed[0].status)
}

func TestMetrics_SkipPaths(t *testing.T) {
	obs := &fakeObserver{}
	router := newMetricsRouter(obs, "/metrics")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, obs.observed)
	assert.Zero(t, obs.started)
}
