package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/confroute/confroute/internal/config"
	"github.com/confroute/confroute/internal/observability"
)

// requestIDHeader is the header carrying the request identifier.
const requestIDHeader = "X-Request-ID"

// RequestID propagates an incoming request identifier, or generates
// one, and stores it in the request context for log correlation.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(
			observability.ContextWithRequestID(c.Request.Context(), id))

		c.Next()
	}
}

// AccessLog logs one line per request with method, path, status, and
// duration.
func AccessLog(logger observability.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.WithContext(c.Request.Context()).Info("http request",
			observability.String("method", c.Request.Method),
			observability.String("path", path),
			observability.Int("status", c.Writer.Status()),
			observability.Duration("duration", time.Since(start)),
			observability.String("clientIP", c.ClientIP()))
	}
}

// RateLimit rejects requests above the configured token-bucket rate
// with 429. A nil configuration disables limiting.
func RateLimit(cfg *config.RateLimitConfig) gin.HandlerFunc {
	if cfg == nil || cfg.RequestsPerSecond <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}

// Recovery converts a handler panic into a 500 response and logs the
// panic value.
func Recovery(logger observability.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.WithContext(c.Request.Context()).Error("handler panic",
					observability.Any("panic", r),
					observability.String("path", c.Request.URL.Path))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "internal server error",
				})
			}
		}()
		c.Next()
	}
}

// Metrics records request counts and durations per route.
func Metrics(m *observability.HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.IncActive()

		c.Next()

		m.DecActive()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route,
			strconv.Itoa(c.Writer.Status()), time.Since(start).Seconds())
	}
}
