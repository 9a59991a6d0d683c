package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messaging_http_requests_total",
			Help: "Total number of HTTP requests processed by the messaging service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "messaging_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	messagesSentTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "messaging_messages_sent_total",
			Help: "Total number of messages persisted.",
		},
	)
	notificationsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messaging_notifications_created_total",
			Help: "Total number of notifications created, by type.",
		},
		[]string{"type"},
	)
	fanoutFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "messaging_notification_fanout_failures_total",
			Help: "Total number of failed notification fan-out attempts.",
		},
	)
	pipelineInconsistenciesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messaging_pipeline_inconsistencies_total",
			Help: "Total number of partial message-pipeline failures, by step.",
		},
		[]string{"step"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		messagesSentTotal,
		notificationsCreatedTotal,
		fanoutFailuresTotal,
		pipelineInconsistenciesTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func IncMessageSent() {
	messagesSentTotal.Inc()
}

func IncNotificationCreated(notifType string) {
	notificationsCreatedTotal.WithLabelValues(notifType).Inc()
}

func IncFanoutFailure() {
	fanoutFailuresTotal.Inc()
}

func IncPipelineInconsistency(step string) {
	pipelineInconsistenciesTotal.WithLabelValues(step).Inc()
}
