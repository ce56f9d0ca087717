package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/vzahanych/weather-display/internal/presentation"
	"github.com/vzahanych/weather-display/internal/server/utils"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Stream pushes the current view, then one view per display transition.
// Intermediate states are skipped for a client that reads slowly.
func (h *DisplayHandler) Stream(c *gin.Context) {
	reqLogger := utils.RequestLogger(c, h.logger)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		reqLogger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	if !h.track(conn) {
		return
	}
	defer h.untrack(conn)

	states, unsubscribe := h.display.Subscribe()
	defer unsubscribe()

	reqLogger.Info("Display stream opened")

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			reqLogger.Info("Display stream closed by client")
			return

		case <-c.Request.Context().Done():
			return

		case s, ok := <-states:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(presentation.Render(s)); err != nil {
				reqLogger.Debug("Display stream write failed", zap.Error(err))
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *DisplayHandler) track(conn *websocket.Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		closeStream(conn)
		return false
	}
	h.streams[conn] = struct{}{}
	return true
}

func (h *DisplayHandler) untrack(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.streams, conn)
}

// CloseStreams sends a going-away close to every open stream and refuses new
// ones. Hijacked connections are not covered by http.Server.Shutdown.
func (h *DisplayHandler) CloseStreams() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for conn := range h.streams {
		closeStream(conn)
	}
	if n := len(h.streams); n > 0 {
		h.logger.Info("Closed display streams", zap.Int("streams", n))
	}
}

func closeStream(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	_ = conn.Close()
}
