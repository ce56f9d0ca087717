package utils

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	SpanContextKey = "span_context"
	RequestIDKey   = "request_id"
)

// GetContextFromGinContext extracts the context with span from Gin context
func GetContextFromGinContext(c *gin.Context) context.Context {
	if spanCtx, exists := c.Get(SpanContextKey); exists {
		if ctx, ok := spanCtx.(context.Context); ok {
			return ctx
		}
	}
	return c.Request.Context()
}

// DetachedContext keeps the request's values and span but not its
// cancellation, so a client that hangs up does not abort shared work.
func DetachedContext(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(GetContextFromGinContext(c)), timeout)
}

func GetRequestIDFromGinContext(c *gin.Context) string {
	if requestID, exists := c.Get(RequestIDKey); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return ""
}

// RequestLogger tags base with the request id, when there is one.
func RequestLogger(c *gin.Context, base *zap.Logger) *zap.Logger {
	if id := GetRequestIDFromGinContext(c); id != "" {
		return base.With(zap.String("request_id", id))
	}
	return base
}
