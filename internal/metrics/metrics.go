// Package metrics provides Prometheus metrics for the Ultra catalog import.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// FetchPollsTotal counts readiness checks per dataset
	FetchPollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ultra",
			Subsystem: "fetch",
			Name:      "polls_total",
			Help:      "Total number of readiness checks sent to the Ultra web service",
		},
		[]string{"dataset"},
	)

	// FetchTotal counts finished dataset fetches by result
	FetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ultra",
			Subsystem: "fetch",
			Name:      "total",
			Help:      "Total number of dataset fetches by result",
		},
		[]string{"dataset", "result"},
	)

	// ExportTotal counts catalog exports by result
	ExportTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ultra",
			Subsystem: "export",
			Name:      "total",
			Help:      "Total number of catalog exports by result",
		},
		[]string{"result"},
	)

	// ExportDuration tracks end-to-end export duration
	ExportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "ultra",
			Subsystem: "export",
			Name:      "duration_seconds",
			Help:      "Duration of catalog exports in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600, 1200},
		},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "endpoint", "status"},
	)
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)
)

// Fetch results.
const (
	ResultSuccess = "success"
	ResultFailed  = "failed"
	ResultTimeout = "timeout"
	ResultError   = "error"
)

// RecordFetch records the outcome of one dataset fetch.
func RecordFetch(dataset, result string) {
	FetchTotal.WithLabelValues(dataset, result).Inc()
}

// RecordExport records the outcome and duration of one export run.
func RecordExport(result string, duration time.Duration) {
	ExportTotal.WithLabelValues(result).Inc()
	ExportDuration.Observe(duration.Seconds())
}

// RecordRequest records an inbound HTTP request.
func RecordRequest(method, endpoint string, statusCode int, duration time.Duration) {
	status := classifyStatus(statusCode)
	httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
}

func classifyStatus(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "2xx"
	case statusCode >= 300 && statusCode < 400:
		return "3xx"
	case statusCode >= 400 && statusCode < 500:
		return "4xx"
	case statusCode >= 500 && statusCode < 600:
		return "5xx"
	}
	return "unknown"
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
