package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/itish2003/lawgic/logger"
)

// RequestLogger logs one line per request once the handler chain is done.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		status := c.Writer.Status()
		kv := []interface{}{
			"status", status,
			"method", c.Request.Method,
			"path", path,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
			"request_id", GetRequestID(c),
		}
		if query != "" {
			kv = append(kv, "query", query)
		}

		switch {
		case status >= 500:
			log.Error("request completed", kv...)
		case status >= 400:
			log.Warn("request completed", kv...)
		default:
			log.Info("request completed", kv...)
		}
	}
}
