package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// RoutingMetricsCollector handles all routing engine metrics
type RoutingMetricsCollector struct {
	// Matrix metrics
	matrixRequestsTotal   *prometheus.CounterVec
	matrixRequestDuration *prometheus.HistogramVec
	matrixLocations       *prometheus.HistogramVec
	matrixCacheLookups    *prometheus.CounterVec

	// Single-route metrics
	routeRequestsTotal   *prometheus.CounterVec
	routeRequestDuration *prometheus.HistogramVec
}

// NewRoutingMetricsCollector creates a new routing metrics collector
func NewRoutingMetricsCollector() *RoutingMetricsCollector {
	return &RoutingMetricsCollector{
		// Matrix computations by source engine
		matrixRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "matrix_requests_total",
				Help:      "Total number of travel matrix computations by source",
			},
			[]string{"source"},
		),

		// Matrix computation duration histogram
		matrixRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "matrix_request_duration_seconds",
				Help:      "Travel matrix computation duration distribution",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
			},
			[]string{"source"},
		),

		// Matrix size distribution
		matrixLocations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "matrix_locations",
				Help:      "Number of locations per travel matrix request",
				Buckets:   []float64{2, 5, 10, 25, 50, 100, 250, 500},
			},
			[]string{"source"},
		),

		// Matrix cache lookups by result
		matrixCacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "matrix_cache_lookups_total",
				Help:      "Total number of matrix cache lookups by result",
			},
			[]string{"result"},
		),

		// Single-route computations by source engine
		routeRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "route_requests_total",
				Help:      "Total number of route computations by source",
			},
			[]string{"source"},
		),

		// Single-route duration histogram
		routeRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "route_request_duration_seconds",
				Help:      "Route computation duration distribution",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0, 10.0},
			},
			[]string{"source"},
		),
	}
}

// Register registers all routing metrics with the Prometheus registry
func (c *RoutingMetricsCollector) Register() error {
	return registerAll(
		c.matrixRequestsTotal,
		c.matrixRequestDuration,
		c.matrixLocations,
		c.matrixCacheLookups,
		c.routeRequestsTotal,
		c.routeRequestDuration,
	)
}

// RecordMatrixRequest records a travel matrix computation
func (c *RoutingMetricsCollector) RecordMatrixRequest(locations int, fallback bool, seconds float64) {
	source := sourceLabel(fallback)

	c.matrixRequestsTotal.WithLabelValues(source).Inc()
	c.matrixRequestDuration.WithLabelValues(source).Observe(seconds)
	c.matrixLocations.WithLabelValues(source).Observe(float64(locations))
}

// RecordRouteRequest records a single route computation
func (c *RoutingMetricsCollector) RecordRouteRequest(fallback bool, seconds float64) {
	source := sourceLabel(fallback)

	c.routeRequestsTotal.WithLabelValues(source).Inc()
	c.routeRequestDuration.WithLabelValues(source).Observe(seconds)
}

// RecordMatrixCacheLookup records a matrix cache hit or miss
func (c *RoutingMetricsCollector) RecordMatrixCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}

	c.matrixCacheLookups.WithLabelValues(result).Inc()
}

// sourceLabel maps the fallback flag to the engine that produced the answer
func sourceLabel(fallback bool) string {
	if fallback {
		return "haversine"
	}
	return "valhalla"
}
