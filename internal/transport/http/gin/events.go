package httpgin

import (
	"io"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/cartodesk/internal/gamestore"
	"github.com/kirinyoku/cartodesk/internal/logger"
)

const (
	eventBuffer    = 32
	heartbeatEvery = 15 * time.Second
)

// @Summary  Live stream of game changes (server-sent events)
// @Security BearerAuth
// @Produce  text/event-stream
// @Success  200  {object}  gamestore.Event
// @Router   /events [get]
func handleStreamEvents(src EventSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		ch := make(chan gamestore.Event, eventBuffer)
		unsubscribe := src.Subscribe(func(ev gamestore.Event) {
			select {
			case ch <- ev:
			default:
				// slow client, drop
			}
		})
		defer unsubscribe()

		log := logger.From(c.Request.Context())
		log.Debug("event stream opened", slog.String("ip", c.ClientIP()))

		c.Header("Cache-Control", "no-cache")
		c.Header("X-Accel-Buffering", "no")

		ticker := time.NewTicker(heartbeatEvery)
		defer ticker.Stop()

		c.Stream(func(w io.Writer) bool {
			select {
			case <-c.Request.Context().Done():
				return false
			case ev := <-ch:
				c.SSEvent(string(ev.Kind), ev)
				return true
			case <-ticker.C:
				c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
				return true
			}
		})

		log.Debug("event stream closed")
	}
}
