package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/vzahanych/weather-display/internal/controller"
	"github.com/vzahanych/weather-display/internal/location"
	"github.com/vzahanych/weather-display/internal/presentation"
	"github.com/vzahanych/weather-display/internal/server/utils"
	"github.com/vzahanych/weather-display/internal/state"
	"github.com/vzahanych/weather-display/internal/weather"
	"go.uber.org/zap"
)

// Display is what the handlers need from the controller.
type Display interface {
	LoadCurrentLocation(ctx context.Context) error
	Search(ctx context.Context, city string) error
	ToggleUnits() state.State
	State() state.State
	Subscribe() (<-chan state.State, func())
}

// fetchTimeout bounds a fetch that no longer follows its request.
const fetchTimeout = 30 * time.Second

type DisplayHandler struct {
	display Display
	logger  *zap.Logger

	mu      sync.Mutex
	streams map[*websocket.Conn]struct{}
	closed  bool
}

func NewDisplayHandler(display Display, logger *zap.Logger) *DisplayHandler {
	return &DisplayHandler{
		display: display,
		logger:  logger,
		streams: make(map[*websocket.Conn]struct{}),
	}
}

func (h *DisplayHandler) GetDisplay(c *gin.Context) {
	c.JSON(http.StatusOK, presentation.Render(h.display.State()))
}

func (h *DisplayHandler) Search(c *gin.Context) {
	reqLogger := utils.RequestLogger(c, h.logger)

	var req SearchRequest
	if err := c.ShouldBind(&req); err != nil {
		reqLogger.Warn("Invalid request parameters", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request parameters",
			Code:    "INVALID_PARAMS",
			Details: err.Error(),
		})
		return
	}

	if verrs := utils.ValidateStruct(req); len(verrs) > 0 {
		reqLogger.Warn("Search request failed validation", zap.Int("violations", len(verrs)))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request parameters",
			Code:    "INVALID_PARAMS",
			Details: verrs,
		})
		return
	}

	reqLogger.Info("Processing city search", zap.String("city", req.City))

	// The display is shared, so a dropped client must not fail everyone's fetch.
	ctx, cancel := utils.DetachedContext(c, fetchTimeout)
	defer cancel()

	err := h.display.Search(ctx, req.City)
	h.respond(c, reqLogger, err)
}

func (h *DisplayHandler) Locate(c *gin.Context) {
	reqLogger := utils.RequestLogger(c, h.logger)
	reqLogger.Info("Processing location request")

	ctx, cancel := utils.DetachedContext(c, fetchTimeout)
	defer cancel()

	err := h.display.LoadCurrentLocation(ctx)
	h.respond(c, reqLogger, err)
}

func (h *DisplayHandler) ToggleUnits(c *gin.Context) {
	c.JSON(http.StatusOK, presentation.Render(h.display.ToggleUnits()))
}

// respond maps the fetch outcome to a status code. The body carries the
// same user-visible message the display state holds.
func (h *DisplayHandler) respond(c *gin.Context, reqLogger *zap.Logger, err error) {
	view := presentation.Render(h.display.State())

	if err == nil {
		c.JSON(http.StatusOK, view)
		return
	}

	_ = c.Error(err)

	switch {
	case errors.Is(err, controller.ErrEmptyQuery):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "City name is required", Code: "INVALID_PARAMS"})
	case errors.Is(err, location.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: controller.MsgPermissionDenied, Code: "PERMISSION_DENIED"})
	case errors.Is(err, weather.ErrNetwork):
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: view.Error, Code: "FETCH_FAILED"})
	default:
		reqLogger.Error("Display update failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: view.Error, Code: "LOCATION_FAILED"})
	}
}
