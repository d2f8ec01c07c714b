package router

import (
	"github.com/distro/backoffice/internal/infrastructure/config"
	"github.com/distro/backoffice/internal/infrastructure/logger"
	"github.com/distro/backoffice/internal/infrastructure/metrics"
	"github.com/distro/backoffice/internal/interfaces/http/handler"
	"github.com/distro/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers bundles the handlers served by the API
type Handlers struct {
	FreeIssue *handler.FreeIssueHandler
	Claims    *handler.ClaimHandler
	Purchases *handler.PurchaseHandler
	System    *handler.SystemHandler
}

// EngineOptions configures the middleware stack
type EngineOptions struct {
	HTTP        config.HTTPConfig
	Tracing     middleware.TracingConfig
	Businesses  middleware.BusinessResolver
	Idempotency middleware.IdempotencyConfig
	// Metrics enables request metrics and the scrape endpoint when non-nil
	Metrics     *metrics.Metrics
	MetricsPath string
	Logger      *zap.Logger
}

// NewEngine builds the gin engine with the full middleware stack and every route.
// Middleware order: request id, tracing, recovery, request logging, metrics,
// security headers, CORS, body limit.
func NewEngine(opts EngineOptions, h Handlers) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(opts.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(opts.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(opts.Tracing), middleware.SpanAnnotator())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if opts.Metrics != nil {
		engine.Use(middleware.Metrics(opts.Metrics, opts.MetricsPath))
	}
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFrom(opts.HTTP)))
	engine.Use(middleware.BodyLimit(opts.HTTP.MaxBodySize))

	engine.GET("/health", h.System.Health)
	if opts.Metrics != nil {
		engine.GET(opts.MetricsPath, gin.WrapH(opts.Metrics.Handler()))
	}

	locationRoutes := NewDomainGroup("locations", "/locations")
	locationRoutes.GET("/main-warehouse", h.System.MainWarehouse)

	businessRoutes := NewDomainGroup("business", "/:"+middleware.BusinessParam)
	businessRoutes.Use(middleware.Business(opts.Businesses))
	businessRoutes.POST("/purchases/free", middleware.Idempotency(opts.Idempotency), h.FreeIssue.ReceiveFreeIssue)
	businessRoutes.GET("/purchases/:id", h.Purchases.Get)
	businessRoutes.GET("/supplier-claims", h.Claims.List)
	businessRoutes.GET("/supplier-claims/:id", h.Claims.Get)
	businessRoutes.GET("/products/:product_id/free-entitlements", h.Claims.OutstandingEntitlements)
	businessRoutes.GET("/products/:product_id/stock", h.Purchases.ProductStock)

	NewRouter(engine).
		Register(locationRoutes).
		Register(businessRoutes).
		Setup()

	return engine
}
