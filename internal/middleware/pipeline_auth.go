package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "finara/internal/errors"
)

// PipelineAuthMiddleware guards the job trigger endpoints with a shared
// X-API-Key. An unset key disables the endpoints entirely.
func PipelineAuthMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			abortWithError(c, apperrors.ErrPipelineNotConfigured)
			return
		}
		key := c.GetHeader("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			abortWithError(c, apperrors.ErrInvalidAPIKey)
			return
		}
		c.Next()
	}
}
