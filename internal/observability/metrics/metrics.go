// Package metrics provides Prometheus instrumentation for contraverify.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	enabled  bool
	registry *prometheus.Registry

	// HTTP metrics (stub server)
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec

	// Verification submission metrics
	submitTotal    *prometheus.CounterVec
	submitDuration *prometheus.HistogramVec
	attemptsTotal  *prometheus.CounterVec

	// Stub server metrics
	stubSubmissionsTotal *prometheus.CounterVec
)

// Init initializes the metrics system. Collectors are registered on a private
// registry so repeated Init calls (tests, CLI re-entry) do not panic.
func Init(enabledFlag bool) {
	enabled = enabledFlag

	if !enabled {
		return
	}

	registry = prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	// HTTP request counter
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTP request duration histogram
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	submitTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verification_submit_total",
			Help: "Total number of verification submissions by outcome",
		},
		[]string{"verifier", "network", "result"},
	)

	submitDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "verification_submit_duration_seconds",
			Help:    "End-to-end verification submission latency in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"verifier"},
	)

	attemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verification_attempts_total",
			Help: "Total number of HTTP attempts made against verifier APIs",
		},
		[]string{"result"},
	)

	stubSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stub_submissions_total",
			Help: "Total number of submissions received by the stub verifier",
		},
		[]string{"network", "status"},
	)

	registry.MustRegister(
		httpRequestsTotal,
		httpDuration,
		submitTotal,
		submitDuration,
		attemptsTotal,
		stubSubmissionsTotal,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	if !enabled {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
	}
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// WriteTextfile writes the current metrics to path in the text exposition
// format, for node_exporter's textfile collector. No-op when disabled.
func WriteTextfile(path string) error {
	if !enabled || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, registry)
}

// Enabled returns whether metrics are enabled.
func Enabled() bool {
	return enabled
}
