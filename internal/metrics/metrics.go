package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	WsConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "peerlink_ws_connections",
		Help: "Current number of registered live channels",
	})
	ChatMessagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "peerlink_chat_messages_total",
		Help: "Total number of chat messages persisted",
	})
	LivePushesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "peerlink_live_pushes_total",
		Help: "Live delivery attempts by outcome",
	}, []string{"outcome"})
	NotificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "peerlink_notifications_total",
		Help: "Notifications persisted by type",
	}, []string{"type"})
	HttpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
	HttpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)

func init() {
	prometheus.MustRegister(
		WsConnections,
		ChatMessagesTotal,
		LivePushesTotal,
		NotificationsTotal,
		HttpRequestsTotal,
		HttpRequestDuration,
	)
}

// GinMiddleware records basic request metrics for Prometheus to scrape.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		labels := prometheus.Labels{"method": c.Request.Method, "path": path, "status": status}
		HttpRequestsTotal.With(labels).Inc()
		HttpRequestDuration.With(labels).Observe(time.Since(start).Seconds())
	}
}
