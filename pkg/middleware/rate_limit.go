package middleware

import (
	"net/http"
	"strconv"
	"time"

	"blog-backend/pkg/logger"
	redisPkg "blog-backend/pkg/redis"
	"blog-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// KeyFunc 根据请求生成限流 key
type KeyFunc func(c *gin.Context) string

// KeyByIPAndPath 按客户端IP + 路由限流
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		return "path:" + path + ":ip:" + ip
	}
}

// RateLimit 固定窗口限流；limiter 为空或参数无效时直接放行
// Redis 异常时放行（fail-open），只记录日志
func RateLimit(limiter *redisPkg.RateLimiter, max int, window time.Duration, keyFn KeyFunc) gin.HandlerFunc {
	if limiter == nil || max <= 0 || window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		count, ttl, err := limiter.Hit(c.Request.Context(), keyFn(c), window)
		if err != nil {
			logger.Warn("限流计数失败，放行请求", zap.Error(err))
			c.Next()
			return
		}

		remaining := int64(max) - count
		if remaining < 0 {
			remaining = 0
		}
		resetSec := int(ttl.Seconds())
		c.Header("X-RateLimit-Limit", strconv.Itoa(max))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

		if count > int64(max) {
			if resetSec > 0 {
				c.Header("Retry-After", strconv.Itoa(resetSec))
			}
			response.TooManyRequests(c, "Request was throttled.")
			return
		}
		c.Next()
	}
}
