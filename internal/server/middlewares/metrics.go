package middlewares

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const maxDurations = 1000

// HTTPMetrics holds only HTTP request metrics
type HTTPMetrics struct {
	mutex            sync.RWMutex
	requestsTotal    map[string]int64
	requestDurations []float64
	activeRequests   int64
}

type HTTPSnapshot struct {
	RequestsTotal      map[string]int64
	AvgDurationSeconds float64
	ActiveRequests     int64
}

func NewHTTPMetrics() *HTTPMetrics {
	return &HTTPMetrics{
		requestsTotal:    make(map[string]int64),
		requestDurations: make([]float64, 0, maxDurations),
	}
}

func (m *HTTPMetrics) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		m.mutex.Lock()
		m.activeRequests++
		m.mutex.Unlock()

		c.Next()

		duration := time.Since(start).Seconds()
		key := c.Request.Method + " " + c.FullPath() + "_" + strconv.Itoa(c.Writer.Status())

		m.mutex.Lock()
		m.requestsTotal[key]++
		m.requestDurations = append(m.requestDurations, duration)
		m.activeRequests--

		// Only the last maxDurations samples feed the average.
		if len(m.requestDurations) > maxDurations {
			m.requestDurations = m.requestDurations[len(m.requestDurations)-maxDurations:]
		}
		m.mutex.Unlock()
	}
}

func (m *HTTPMetrics) Snapshot() HTTPSnapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	totals := make(map[string]int64, len(m.requestsTotal))
	for k, v := range m.requestsTotal {
		totals[k] = v
	}

	var avg float64
	if len(m.requestDurations) > 0 {
		sum := 0.0
		for _, d := range m.requestDurations {
			sum += d
		}
		avg = sum / float64(len(m.requestDurations))
	}

	return HTTPSnapshot{
		RequestsTotal:      totals,
		AvgDurationSeconds: avg,
		ActiveRequests:     m.activeRequests,
	}
}
