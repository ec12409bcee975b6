package logger

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const ginLoggerKey = "logger"

// CacheHeader is the response header reporting an artifact cache hit or miss
const CacheHeader = "X-Cache"

// GinMiddleware logs one line per request. Before the handler runs it copies
// the request id, the draft id of /drafts/:id routes and the :type or ?type
// doc type into the request context, so service logs carry them too.
func GinMiddleware(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		ctx := c.Request.Context()
		if id := c.GetString("request_id"); id != "" {
			ctx = WithRequestID(ctx, id)
		}
		if id := draftParam(c); id != "" {
			ctx = WithDraftID(ctx, id)
		}
		if t := docTypeParam(c); t != "" {
			ctx = WithDocType(ctx, t)
		}
		c.Request = c.Request.WithContext(ctx)

		reqLogger := Enrich(ctx, base).With(zap.String("method", c.Request.Method))
		c.Set(ginLoggerKey, reqLogger)

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("route", routeOf(c)),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("bytes", c.Writer.Size()),
		}
		if q := c.Request.URL.RawQuery; q != "" {
			fields = append(fields, zap.String("query", q))
		}
		if hit := c.Writer.Header().Get(CacheHeader); hit != "" {
			fields = append(fields, zap.String("cache", hit))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		switch {
		case status >= http.StatusInternalServerError:
			reqLogger.Error("request completed", fields...)
		case status >= http.StatusBadRequest:
			reqLogger.Warn("request completed", fields...)
		default:
			reqLogger.Info("request completed", fields...)
		}
	}
}

// routeOf prefers the matched route pattern so drafts and jobs group
// together; unmatched requests fall back to the raw path.
func routeOf(c *gin.Context) string {
	if r := c.FullPath(); r != "" {
		return r
	}
	return c.Request.URL.Path
}

func draftParam(c *gin.Context) string {
	if !strings.Contains(c.FullPath(), "/drafts/:id") {
		return ""
	}
	return c.Param("id")
}

func docTypeParam(c *gin.Context) string {
	if t := c.Param("type"); t != "" {
		return t
	}
	return c.Query("type")
}

// Recovery turns a handler panic into a 500 and logs it with the request's
// correlation fields and stack.
func Recovery(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				Enrich(c.Request.Context(), base).Error("handler panicked",
					zap.String("method", c.Request.Method),
					zap.String("route", routeOf(c)),
					zap.Any("panic", rec),
					zap.Stack("stacktrace"),
				)
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}

// GetGinLogger returns the request logger set by GinMiddleware, or a no-op
// logger outside it
func GetGinLogger(c *gin.Context) *zap.Logger {
	if l, ok := c.Get(ginLoggerKey); ok {
		if zl, ok := l.(*zap.Logger); ok {
			return zl
		}
	}
	return zap.NewNop()
}
