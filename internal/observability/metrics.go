package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce   sync.Once
	requestsTotal  *prometheus.CounterVec
	latencySeconds *prometheus.HistogramVec
	errorsTotal    *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors for the HTTP surface.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "screener_requests_total",
			Help: "Total number of screening API requests served.",
		}, []string{"method", "route", "status"})

		latencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "screener_latency_seconds",
			Help:    "Latency distribution for screening API requests.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		}, []string{"method", "route"})

		errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "screener_errors_total",
			Help: "Total number of error responses returned by screening endpoints.",
		}, []string{"method", "route", "status"})

		prometheus.MustRegister(requestsTotal, latencySeconds, errorsTotal)
	})
}

// Requests exposes the counter for API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// Latency exposes the latency histogram for API requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return latencySeconds
}

// Errors exposes the counter for error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return errorsTotal
}
