package handlers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/weather-display/internal/server/middlewares"
	"go.uber.org/zap"
)

// AppMetrics holds fetch outcomes per source (location or search).
type AppMetrics struct {
	mutex          sync.RWMutex
	fetchesTotal   map[string]int64
	fetchErrors    map[string]int64
	discardedTotal map[string]int64
}

// MetricsHandler implements controller.MetricsRecorder and serves /metrics.
type MetricsHandler struct {
	logger      *zap.Logger
	httpMetrics *middlewares.HTTPMetrics
	appMetrics  *AppMetrics
}

func NewMetricsHandler(logger *zap.Logger, httpMetrics *middlewares.HTTPMetrics) *MetricsHandler {
	return &MetricsHandler{
		logger:      logger,
		httpMetrics: httpMetrics,
		appMetrics: &AppMetrics{
			fetchesTotal:   make(map[string]int64),
			fetchErrors:    make(map[string]int64),
			discardedTotal: make(map[string]int64),
		},
	}
}

func (h *MetricsHandler) RecordFetch(ctx context.Context, source string, success bool) {
	h.appMetrics.mutex.Lock()
	defer h.appMetrics.mutex.Unlock()

	h.appMetrics.fetchesTotal[source]++
	if !success {
		h.appMetrics.fetchErrors[source]++
	}
}

func (h *MetricsHandler) RecordDiscarded(ctx context.Context, source string) {
	h.appMetrics.mutex.Lock()
	defer h.appMetrics.mutex.Unlock()

	h.appMetrics.discardedTotal[source]++
}

// ServeMetrics writes the Prometheus text exposition format.
func (h *MetricsHandler) ServeMetrics(c *gin.Context) {
	var b strings.Builder

	if h.httpMetrics != nil {
		snap := h.httpMetrics.Snapshot()

		writeHeader(&b, "http_requests_total", "Total number of HTTP requests", "counter")
		writeLabeled(&b, "http_requests_total", "route_status", snap.RequestsTotal)

		writeHeader(&b, "http_request_duration_seconds_avg", "Average duration of HTTP requests", "gauge")
		fmt.Fprintf(&b, "http_request_duration_seconds_avg %.6f\n", snap.AvgDurationSeconds)

		writeHeader(&b, "http_active_requests", "Number of active HTTP requests", "gauge")
		fmt.Fprintf(&b, "http_active_requests %d\n", snap.ActiveRequests)
	}

	h.appMetrics.mutex.RLock()
	writeHeader(&b, "weather_fetches_total", "Total weather fetch cycles", "counter")
	writeLabeled(&b, "weather_fetches_total", "source", h.appMetrics.fetchesTotal)

	writeHeader(&b, "weather_fetch_errors_total", "Weather fetch cycles that ended in an error", "counter")
	writeLabeled(&b, "weather_fetch_errors_total", "source", h.appMetrics.fetchErrors)

	writeHeader(&b, "weather_fetch_discarded_total", "Fetch results dropped because a newer fetch was issued", "counter")
	writeLabeled(&b, "weather_fetch_discarded_total", "source", h.appMetrics.discardedTotal)
	h.appMetrics.mutex.RUnlock()

	c.Header("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	c.String(200, b.String())
}

func writeHeader(b *strings.Builder, name, help, kind string) {
	fmt.Fprintf(b, "\n# HELP %s %s\n# TYPE %s %s\n", name, help, name, kind)
}

func writeLabeled(b *strings.Builder, name, label string, values map[string]int64) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(b, "%s{%s=%q} %d\n", name, label, k, values[k])
	}
}
