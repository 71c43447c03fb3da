package rest

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/servo-mc/servo/internal/logger"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestRecorder receives one observation per finished request.
type RequestRecorder interface {
	ObserveRequest(api, route string, code int)
}

// requestContext tags the request context with an id and a named logger.
func requestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Header(RequestIDHeader, id)

		ctx := logger.WithName(c.Request.Context(), "http")
		ctx = logger.WithKV(ctx, "request_id", id)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// requestLogger logs every request and records it in metrics.
func requestLogger(recorder RequestRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()

		if route == "" {
			route = "unmatched"
		}

		if recorder != nil {
			recorder.ObserveRequest("http", route, status)
		}

		kvs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"ip", c.ClientIP(),
		}

		if len(c.Errors) > 0 {
			kvs = append(kvs, "error", c.Errors.String())
		}

		ctx := c.Request.Context()

		switch {
		case status >= 500:
			logger.ErrorKV(ctx, "HTTP request", kvs...)
		case status >= 400:
			logger.WarnKV(ctx, "HTTP request", kvs...)
		default:
			logger.InfoKV(ctx, "HTTP request", kvs...)
		}
	}
}
