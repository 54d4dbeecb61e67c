package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Traffic metrics
var (
	// VisitsRecordedTotal tracks visit records written to storage
	VisitsRecordedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "visits_recorded_total",
			Help: "Total number of visit records written",
		},
	)

	// VisitRecordFailures tracks visit writes that failed and were dropped
	VisitRecordFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "visit_record_failures_total",
			Help: "Total number of visit records dropped due to storage errors",
		},
	)
)

// Security metrics
var (
	// ThreatsDetectedTotal tracks detected threat events by trigger
	ThreatsDetectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threats_detected_total",
			Help: "Total number of threat events recorded by trigger",
		},
		[]string{"trigger"},
	)

	// ClassifierDenialsTotal tracks requests denied by signature rule
	ClassifierDenialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classifier_denials_total",
			Help: "Total number of requests denied by classifier rule",
		},
		[]string{"rule"},
	)

	// RateLimitRejectionsTotal tracks 429 responses by limiter scope
	RateLimitRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratelimit_rejections_total",
			Help: "Total number of rate-limited requests by scope",
		},
		[]string{"scope"},
	)
)

// HTTP metrics
var (
	// HTTPRequestsTotal tracks HTTP requests by method, path pattern and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration tracks HTTP request duration
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)
)
