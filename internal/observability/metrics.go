package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AnalyticsDuration records how long each analytics operation takes.
	AnalyticsDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "socialtrack_analytics_duration_seconds",
		Help:    "Analytics operation latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// WindowPosts records the number of posts in each loaded analysis window.
	WindowPosts = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "socialtrack_window_posts",
		Help:    "Number of posts per analysis window",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})

	// AlertsRaised counts alerts announced by the monitor by type and priority.
	AlertsRaised = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialtrack_alerts_raised_total",
		Help: "Total number of alerts raised by the background monitor",
	}, []string{"type", "priority"})

	// MonitorScans counts monitor scan passes by outcome.
	MonitorScans = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialtrack_monitor_scans_total",
		Help: "Total number of alert monitor scans by outcome",
	}, []string{"outcome"})

	// ReportCacheLookups counts report cache lookups by result.
	ReportCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialtrack_report_cache_lookups_total",
		Help: "Total number of report cache lookups by result",
	}, []string{"result"})

	// RedisErrors counts Redis errors by command.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialtrack_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// WebSocketConnections is the gauge of open alert streams.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "socialtrack_websocket_connections",
		Help: "Number of open alert websocket connections",
	})
)

// TrackAnalytics returns a function that records the operation latency when called (e.g. defer).
func TrackAnalytics(operation string) func() {
	start := time.Now()
	return func() {
		AnalyticsDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
