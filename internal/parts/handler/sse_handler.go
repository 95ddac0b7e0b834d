package handler

import (
	"fmt"
	"io"
	"time"

	"github.com/bitfantasy/partslib/internal/parts/events"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SSEHandler 库变更事件推送
type SSEHandler struct {
	hub       *events.Hub
	logger    *zap.Logger
	heartbeat time.Duration
}

func NewSSEHandler(hub *events.Hub, logger *zap.Logger) *SSEHandler {
	return &SSEHandler{hub: hub, logger: logger, heartbeat: 30 * time.Second}
}

// Stream 订阅事件流，连接断开时注销
// GET /api/v1/events
func (h *SSEHandler) Stream(c *gin.Context) {
	client := &events.Client{ID: uuid.New().String(), Events: make(chan events.Event, 64)}
	h.hub.Register(client)
	defer h.hub.Unregister(client.ID)

	header := c.Writer.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no") // nginx 不缓冲

	send := func(format string, args ...interface{}) {
		fmt.Fprintf(c.Writer, format, args...)
		c.Writer.Flush()
	}
	send("event: connected\ndata: {\"client_id\":%q}\n\n", client.ID)

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	c.Stream(func(io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			h.logger.Debug("SSE client gone", zap.String("client_id", client.ID))
			return false
		case e, ok := <-client.Events:
			if !ok {
				return false
			}
			send("event: %s\ndata: %s\n\n", e.Type, e.Data)
		case <-ticker.C:
			send(": keepalive\n\n")
		}
		return true
	})
}
