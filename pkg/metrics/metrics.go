package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal 按方法、路由、状态码统计请求数
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration 请求耗时
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "blog_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// NotificationsCreated 新建通知数
	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_notifications_created_total",
		Help: "Total number of notifications created by type",
	}, []string{"type"})

	// PostViews 文章详情被读取次数
	PostViews = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blog_post_views_total",
		Help: "Total number of post detail reads",
	})

	// EmailsTotal 邮件发送结果
	EmailsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_emails_total",
		Help: "Total number of emails handed to a mail driver by result",
	}, []string{"driver", "result"})

	// WebSocketConnections 当前WebSocket连接数
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "blog_websocket_connections",
		Help: "Number of active notification WebSocket connections",
	})
)

// Middleware 记录请求数与耗时，路由使用模板路径避免高基数
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler /metrics 导出
func Handler() http.Handler {
	return promhttp.Handler()
}
