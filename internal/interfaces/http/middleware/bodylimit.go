package middleware

import (
	"net/http"

	"github.com/distro/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// DefaultMaxBodySize applies when the configured limit is not positive
const DefaultMaxBodySize int64 = 1 << 20

// BodyLimit returns a middleware that limits request body size.
// Declared oversize bodies are rejected up front; chunked bodies are cut off by
// http.MaxBytesReader and fail during binding.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodySize
	}
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponse(
				dto.ErrCodeRequestTooLarge,
				"Request body exceeds maximum allowed size",
				GetRequestID(c),
			))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
