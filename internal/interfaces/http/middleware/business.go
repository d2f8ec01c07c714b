package middleware

import (
	"net/http"

	"github.com/distro/backoffice/internal/infrastructure/logger"
	"github.com/distro/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	// BusinessParam is the route parameter naming the business sub-brand
	BusinessParam = "business"
	// BusinessIDKey is the gin context key holding the resolved business id
	BusinessIDKey = "business_id"
)

// BusinessResolver maps a URL slug to a business id
type BusinessResolver interface {
	ResolveBusiness(slug string) (string, bool)
}

// Business resolves the :business route parameter and stores the business id in
// both the gin context and the request context. Unknown slugs are answered with 404.
func Business(resolver BusinessResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param(BusinessParam)
		businessID, ok := resolver.ResolveBusiness(slug)
		if !ok {
			logger.GetGinLogger(c).Debug("Unknown business slug", zap.String("slug", slug))
			c.AbortWithStatusJSON(http.StatusNotFound, dto.NewErrorResponse(
				dto.ErrCodeUnknownBusiness,
				"Unknown business: "+slug,
				GetRequestID(c),
			))
			return
		}

		c.Set(BusinessIDKey, businessID)

		ctx := c.Request.Context()
		ctx, reqLogger := logger.WithBusinessID(ctx, logger.GetGinLogger(c), businessID)
		c.Request = c.Request.WithContext(ctx)
		c.Set("logger", reqLogger)

		if span := trace.SpanFromContext(ctx); span.IsRecording() {
			span.SetAttributes(attribute.String("business.id", businessID))
		}

		c.Next()
	}
}

// GetBusinessID returns the business id resolved by Business
func GetBusinessID(c *gin.Context) string {
	return c.GetString(BusinessIDKey)
}
