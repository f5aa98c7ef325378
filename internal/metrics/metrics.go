// Package metrics defines Prometheus metrics for watchlist.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "watchlist"

// HTTP metrics.
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})
)

// Run metrics.
var (
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Total number of watchlist runs by final status.",
	}, []string{"watchlist", "status"})

	RunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Duration of watchlist runs in seconds.",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
	}, []string{"watchlist"})

	LastRunTimestamp = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_timestamp",
		Help:      "Unix timestamp of the last completed run.",
	}, []string{"watchlist"})
)

// Item metrics.
var (
	ItemsProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "items_processed_total",
		Help:      "Total number of wishlist items evaluated.",
	})

	ItemChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "item_changes_total",
		Help:      "Total number of item classifications by category.",
	}, []string{"category"})

	ItemErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "item_errors_total",
		Help:      "Total number of items that failed evaluation.",
	})

	PricePointsAppendedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "price_points_appended_total",
		Help:      "Total number of price points written to history.",
	})
)

// Source metrics.
var (
	SourcePagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "source_pages_total",
		Help:      "Total number of wishlist pages fetched.",
	})

	SourceRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "source_request_duration_seconds",
		Help:      "Duration of wishlist page requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	})

	RobotDetectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "robot_detections_total",
		Help:      "Total number of anti-scraping responses from the source.",
	})
)

// Digest metrics.
var (
	DigestsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "digests_sent_total",
		Help:      "Total number of digests delivered by kind (changes, errors).",
	}, []string{"kind"})

	DeliveryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "delivery_duration_seconds",
		Help:      "Duration of email provider calls in seconds.",
		Buckets:   prometheus.DefBuckets,
	})

	DeliveryFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "delivery_failures_total",
		Help:      "Total number of digest delivery failures.",
	})
)

// Health metrics.
var (
	HealthcheckStatus = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "healthcheck_status",
		Help:      "Whether the service is healthy (1) or not (0).",
	})

	ReadinessStatus = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "readiness_status",
		Help:      "Whether the store is reachable (1) or not (0).",
	})
)
