package httpgin

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kirinyoku/cartodesk/internal/logger"
)

const headerRequestID = "X-Request-ID"

// RequestIDMiddleware propagates or assigns a request id and attaches a
// request-scoped logger to the request context.
func RequestIDMiddleware(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(headerRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}

		c.Writer.Header().Set(headerRequestID, reqID)
		c.Set("request_id", reqID)

		ctx := logger.With(c.Request.Context(), log.With(slog.String("request_id", reqID)))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func CORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			headerRequestID,
			"Idempotency-Key",
			"If-Match",
			"If-None-Match",
			"Last-Event-ID",
		},
		ExposeHeaders: []string{
			headerRequestID,
			"ETag",
			"Cache-Control",
			"Retry-After",
			"Idempotency-Key",
		},
		MaxAge: 12 * time.Hour,
	})
}

// LoggingMiddleware writes one record per request, at error level when a
// handler attached errors to the gin context.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		attrs := []any{
			slog.Int("status", c.Writer.Status()),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("ip", c.ClientIP()),
			slog.Duration("latency", time.Since(start)),
			slog.Int("bytes_out", c.Writer.Size()),
		}
		if role, ok := c.Get("role"); ok {
			attrs = append(attrs, slog.Any("role", role))
		}

		log := logger.From(c.Request.Context())
		if len(c.Errors) > 0 {
			log.Error("http", slog.Group("http", attrs...), slog.String("errors", c.Errors.String()))
			return
		}
		log.Info("http", slog.Group("http", attrs...))
	}
}
