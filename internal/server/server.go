package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/weather-display/internal/config"
	"github.com/vzahanych/weather-display/internal/controller"
	"github.com/vzahanych/weather-display/internal/server/handlers"
	"github.com/vzahanych/weather-display/internal/server/middlewares"
	"github.com/vzahanych/weather-display/pkg/telemetry"
	"go.uber.org/zap"
)

type Server struct {
	engine     *gin.Engine
	server     *http.Server
	display    *handlers.DisplayHandler
	controller *controller.Controller
	logger     *zap.Logger
	tele       *telemetry.Telemetry
}

func NewServer(cfg config.ServerConfig, ctrl *controller.Controller, logger *zap.Logger, tele *telemetry.Telemetry) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	httpMetrics := middlewares.NewHTTPMetrics()

	engine.Use(middlewares.RequestIDMiddleware(logger))
	engine.Use(middlewares.LoggingMiddleware(logger))
	engine.Use(middlewares.RecoveryMiddleware(logger, true))
	engine.Use(middlewares.TelemetryMiddleware(logger, tele))
	engine.Use(httpMetrics.Handler())

	s := &Server{
		engine:     engine,
		controller: ctrl,
		logger:     logger,
		tele:       tele,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      engine,
			ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
			IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
		},
	}

	metricsHandler := handlers.NewMetricsHandler(logger, httpMetrics)
	ctrl.SetMetricsRecorder(metricsHandler)

	s.setupRoutes(metricsHandler)
	s.server.RegisterOnShutdown(s.display.CloseStreams)

	return s
}

func (s *Server) setupRoutes(metricsHandler *handlers.MetricsHandler) {
	s.display = handlers.NewDisplayHandler(s.controller, s.logger)

	// Display endpoints
	s.engine.GET("/display", s.display.GetDisplay)
	s.engine.GET("/display/stream", s.display.Stream)
	s.engine.POST("/display/search", s.display.Search)
	s.engine.POST("/display/locate", s.display.Locate)
	s.engine.POST("/display/units", s.display.ToggleUnits)

	// Health endpoints (Kubernetes friendly)
	health := handlers.NewHealthHandler(s.logger, s.controller)
	s.engine.GET("/health", health.Health)
	s.engine.GET("/health/live", health.Liveness)
	s.engine.GET("/health/ready", health.Readiness)

	// Monitoring endpoints
	s.engine.GET("/metrics", metricsHandler.ServeMetrics)
}

// Handler exposes the engine, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start blocks until the server stops. A clean Shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info("Starting server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
