package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RequestLogMiddleware logs every request through logrus so hooks such as
// the recent log ring see HTTP traffic
type RequestLogMiddleware struct {
	logger *logrus.Logger
}

// NewRequestLogMiddleware creates a request logger; nil means the standard logger
func NewRequestLogMiddleware(logger *logrus.Logger) *RequestLogMiddleware {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RequestLogMiddleware{logger: logger}
}

// Middleware returns a Gin middleware compatible with gin.Logger()
func (m *RequestLogMiddleware) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if path == "/health" {
			return
		}

		latency := time.Since(start)
		statusCode := c.Writer.Status()
		if raw != "" {
			path = path + "?" + raw
		}

		entry := m.logger.WithFields(logrus.Fields{
			"status":    statusCode,
			"latency":   latency,
			"client_ip": c.ClientIP(),
			"method":    c.Request.Method,
			"path":      path,
			"body_size": c.Writer.Size(),
		})
		if resource := c.Param("resource"); resource != "" {
			entry = entry.WithField("resource", resource)
		}

		msg := fmt.Sprintf("%s %s %d %v", c.Request.Method, path, statusCode, latency)
		switch {
		case statusCode >= http.StatusInternalServerError:
			entry.Error(msg)
		case statusCode >= http.StatusBadRequest:
			entry.Warn(msg)
		default:
			entry.Info(msg)
		}
	}
}
