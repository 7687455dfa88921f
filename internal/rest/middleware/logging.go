package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/flexprice/feeledger/internal/logger"
	"github.com/gin-gonic/gin"
)

// quietPaths are probed constantly and only logged when they fail
var quietPaths = []string{"/health", "/swagger/"}

// LoggingMiddleware writes one structured line per request. Request, operator
// and campus ids are attached from the request context.
func LoggingMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.Request.URL.Path
		if status < http.StatusBadRequest && isQuiet(path) {
			return
		}

		fields := []interface{}{
			"status", status,
			"method", c.Request.Method,
			"path", path,
			"route", c.FullPath(),
			"client_ip", c.ClientIP(),
			"bytes", c.Writer.Size(),
			"latency_ms", time.Since(start).Milliseconds(),
		}
		if query := c.Request.URL.RawQuery; query != "" {
			fields = append(fields, "query", query)
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		reqLog := log.WithContext(c.Request.Context())
		switch {
		case status >= http.StatusInternalServerError:
			reqLog.Errorw("request failed", fields...)
		case status >= http.StatusBadRequest:
			reqLog.Warnw("request rejected", fields...)
		default:
			reqLog.Infow("request completed", fields...)
		}
	}
}

func isQuiet(path string) bool {
	for _, p := range quietPaths {
		if path == p || strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
