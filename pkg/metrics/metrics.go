// Package metrics holds the Prometheus collectors for the route server and
// the benchmark harness.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bmssp"

// Metrics groups every collector. All methods are safe for concurrent use,
// and a nil *Metrics records nothing.
type Metrics struct {
	// RequestsTotal counts HTTP requests.
	// Labels: route, status
	RequestsTotal *prometheus.CounterVec

	// RequestDuration measures HTTP handler latency.
	// Labels: route
	RequestDuration *prometheus.HistogramVec

	// RouteDistanceMeters records the length of computed routes.
	RouteDistanceMeters prometheus.Histogram

	// RunDuration measures shortest-path runs.
	// Labels: algorithm
	RunDuration *prometheus.HistogramVec

	// RunsTotal counts shortest-path runs.
	// Labels: algorithm
	RunsTotal *prometheus.CounterVec

	// ComparisonsTotal counts benchmark cross-checks by outcome.
	// Labels: outcome (match, mismatch)
	ComparisonsTotal *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by route and status code",
		}, []string{"route", "status"}),

		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP handler latency",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"route"}),

		RouteDistanceMeters: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "route",
			Name:      "distance_meters",
			Help:      "Length of computed routes",
			Buckets:   prometheus.ExponentialBuckets(100, 4, 8),
		}),

		RunDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sssp",
			Name:      "run_duration_seconds",
			Help:      "Duration of shortest-path runs",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"algorithm"}),

		RunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sssp",
			Name:      "runs_total",
			Help:      "Total shortest-path runs",
		}, []string{"algorithm"}),

		ComparisonsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bench",
			Name:      "comparisons_total",
			Help:      "Benchmark cross-checks by outcome",
		}, []string{"outcome"}),
	}
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// ObserveRoute records the length of a computed route.
func (m *Metrics) ObserveRoute(meters float64) {
	if m == nil {
		return
	}
	m.RouteDistanceMeters.Observe(meters)
}

// ObserveRun records one shortest-path run.
func (m *Metrics) ObserveRun(algorithm string, d time.Duration) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(algorithm).Inc()
	m.RunDuration.WithLabelValues(algorithm).Observe(d.Seconds())
}

// ObserveComparison records whether two algorithms agreed on a graph.
func (m *Metrics) ObserveComparison(match bool) {
	if m == nil {
		return
	}
	outcome := "match"
	if !match {
		outcome = "mismatch"
	}
	m.ComparisonsTotal.WithLabelValues(outcome).Inc()
}
