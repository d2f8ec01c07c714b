package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/distro/backoffice/internal/application/freeissue"
	"github.com/distro/backoffice/internal/infrastructure/logger"
	"github.com/distro/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WarehouseLocator resolves the shared Main Warehouse
type WarehouseLocator interface {
	MainWarehouse(ctx context.Context) (*freeissue.LocationResponse, error)
}

// Pinger checks a dependency is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// SystemHandler serves location lookups and the health check
type SystemHandler struct {
	BaseHandler
	locations WarehouseLocator
	db        Pinger
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(locations WarehouseLocator, db Pinger) *SystemHandler {
	return &SystemHandler{locations: locations, db: db, startTime: time.Now()}
}

// MainWarehouse handles GET /api/locations/main-warehouse
//
//	@Summary		Get the shared Main Warehouse
//	@Tags			locations
//	@Produce		json
//	@Success		200	{object}	dto.Response{data=freeissue.LocationResponse}
//	@Failure		404	{object}	dto.ErrorResponse
//	@Router			/api/locations/main-warehouse [get]
func (h *SystemHandler) MainWarehouse(c *gin.Context) {
	loc, err := h.locations.MainWarehouse(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, loc)
}

// Health handles GET /health. It answers 503 when the database does not respond.
//
//	@Summary		Health check
//	@Tags			system
//	@Produce		json
//	@Success		200	{object}	dto.HealthResponse
//	@Failure		503	{object}	dto.HealthResponse
//	@Router			/health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	resp := dto.HealthResponse{
		Status:   "healthy",
		Database: "ok",
		Uptime:   time.Since(h.startTime).Round(time.Second).String(),
	}
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		logger.GetGinLogger(c).Warn("Health check failed", zap.Error(err))
		resp.Status, resp.Database = "unhealthy", "unreachable"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}
