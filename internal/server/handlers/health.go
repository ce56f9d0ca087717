package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/weather-display/internal/state"
	"go.uber.org/zap"
)

type StateReader interface {
	State() state.State
}

type HealthHandler struct {
	logger    *zap.Logger
	display   StateReader
	startTime time.Time
}

func NewHealthHandler(logger *zap.Logger, display StateReader) *HealthHandler {
	return &HealthHandler{
		logger:    logger,
		display:   display,
		startTime: time.Now(),
	}
}

func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "alive",
		Uptime: time.Since(h.startTime).String(),
	})
}

// Readiness does not depend on the last fetch outcome: a failed fetch is a
// display state, not an unhealthy server.
func (h *HealthHandler) Readiness(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:        "ready",
		Uptime:        time.Since(h.startTime).String(),
		DisplayStatus: h.display.State().Status.String(),
	})
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:        "ok",
		Uptime:        time.Since(h.startTime).String(),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		DisplayStatus: h.display.State().Status.String(),
	})
}
