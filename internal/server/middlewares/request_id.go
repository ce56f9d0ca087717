package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vzahanych/weather-display/internal/server/utils"
	"go.uber.org/zap"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = utils.RequestIDKey
)

// RequestIDMiddleware keeps a caller-supplied X-Request-ID only when it is a
// UUID; anything else is replaced with a fresh one.
func RequestIDMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID != "" {
			if _, err := uuid.Parse(requestID); err != nil {
				logger.Debug("Replacing malformed request id", zap.String("received", requestID))
				requestID = ""
			}
		}
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Header(RequestIDHeader, requestID)
		c.Set(RequestIDKey, requestID)

		c.Next()
	}
}
