package logger

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rollbar/rollbar-go"
	"go.uber.org/zap"
)

const (
	// RequestIDHeader carries the request id in both directions
	RequestIDHeader = "X-Request-ID"
	// SlowRequestThreshold marks requests that deserve a warning
	SlowRequestThreshold = 5 * time.Second

	ctxLoggerKey    = "logger"
	ctxRequestIDKey = "request_id"
)

var rollbarEnabled bool

// EnableRollbar configures the global rollbar client. An empty token leaves reporting off.
func EnableRollbar(token, environment, version string) {
	if token == "" {
		rollbarEnabled = false
		return
	}
	rollbar.SetToken(token)
	rollbar.SetEnvironment(environment)
	rollbar.SetCodeVersion(version)
	rollbar.SetServerRoot("agroinnova-backend")
	rollbarEnabled = true
}

// CloseRollbar flushes pending rollbar items
func CloseRollbar() {
	if rollbarEnabled {
		rollbar.Close()
	}
}

// RequestID assigns a request id, reusing the caller's header if present
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(ctxRequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// GinMiddleware logs every HTTP request once it completes
func GinMiddleware(base *zap.Logger) gin.HandlerFunc {
	base = OrNop(base)
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		reqLogger := base.With(
			zap.String("request_id", c.GetString(ctxRequestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
		)
		c.Set(ctxLoggerKey, reqLogger)

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("body_size", c.Writer.Size()),
		}
		if query != "" {
			fields = append(fields, zap.String("query", query))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		switch {
		case status >= http.StatusInternalServerError:
			reqLogger.Error("HTTP Request", fields...)
		case status >= http.StatusBadRequest:
			reqLogger.Warn("HTTP Request", fields...)
		default:
			reqLogger.Info("HTTP Request", fields...)
		}

		if latency > SlowRequestThreshold {
			reqLogger.Warn("slow request", zap.Duration("latency", latency))
		}
	}
}

// Recovery turns panics into a 500 response and reports them
func Recovery(base *zap.Logger) gin.HandlerFunc {
	base = OrNop(base)
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				err := fmt.Errorf("panic: %v", rec)
				FromGin(c, base).Error("panic recovered",
					zap.Error(err),
					zap.ByteString("stack", debug.Stack()),
				)
				if rollbarEnabled {
					rollbar.Critical(err, requestFields(c))
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error":   "Error interno del servidor",
				})
			}
		}()
		c.Next()
	}
}

// FromGin returns the request scoped logger, or fallback when none was attached
func FromGin(c *gin.Context, fallback *zap.Logger) *zap.Logger {
	if l, ok := c.Get(ctxLoggerKey); ok {
		if zl, ok := l.(*zap.Logger); ok {
			return zl
		}
	}
	return OrNop(fallback)
}

// ReportError logs a server-side failure and forwards it to rollbar
func ReportError(c *gin.Context, msg string, err error) {
	FromGin(c, nil).Error(msg, zap.Error(err))
	if rollbarEnabled {
		rollbar.Error(fmt.Errorf("%s: %w", msg, err), requestFields(c))
	}
}

func requestFields(c *gin.Context) map[string]interface{} {
	return map[string]interface{}{
		"request_id": c.GetString(ctxRequestIDKey),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
	}
}
