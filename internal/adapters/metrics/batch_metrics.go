package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// BatchMetricsCollector handles all optimization batch metrics
type BatchMetricsCollector struct {
	// Batch metrics
	batchesTotal        *prometheus.CounterVec
	batchSolverDuration *prometheus.HistogramVec
	batchTrips          *prometheus.HistogramVec
	batchUnassigned     *prometheus.CounterVec

	// Per-group solver metrics
	groupSolvesTotal   *prometheus.CounterVec
	groupSolveDuration *prometheus.HistogramVec
}

// NewBatchMetricsCollector creates a new batch metrics collector
func NewBatchMetricsCollector() *BatchMetricsCollector {
	return &BatchMetricsCollector{
		// Batch lifecycle counter
		batchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "batches_total",
				Help:      "Total number of optimization batches by type and final status",
			},
			[]string{"batch_type", "status"},
		),

		// Wall-clock time spent inside the solvers per batch
		batchSolverDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "batch_solver_duration_seconds",
				Help:      "Solver wall-clock time per batch",
				Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
			},
			[]string{"batch_type"},
		),

		// Batch size distribution
		batchTrips: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "batch_trips",
				Help:      "Number of trips considered per batch",
				Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
			},
			[]string{"batch_type"},
		),

		// Trips that left the batch without a vehicle
		batchUnassigned: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "batch_unassigned_trips_total",
				Help:      "Total number of trips left unassigned by optimization batches",
			},
			[]string{"batch_type"},
		),

		// Per-group solver run counter
		groupSolvesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "group_solves_total",
				Help:      "Total number of category group solves by outcome",
			},
			[]string{"category", "status"},
		),

		// Per-group solve duration histogram
		groupSolveDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "group_solve_duration_seconds",
				Help:      "Solve duration distribution per category group",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
			},
			[]string{"category"},
		),
	}
}

// Register registers all batch metrics with the Prometheus registry
func (c *BatchMetricsCollector) Register() error {
	return registerAll(
		c.batchesTotal,
		c.batchSolverDuration,
		c.batchTrips,
		c.batchUnassigned,
		c.groupSolvesTotal,
		c.groupSolveDuration,
	)
}

// RecordBatchCompletion records a batch reaching a terminal status
func (c *BatchMetricsCollector) RecordBatchCompletion(
	batchType string,
	status string,
	solverSeconds float64,
	totalTrips int,
	unassigned int,
) {
	c.batchesTotal.WithLabelValues(batchType, status).Inc()
	c.batchSolverDuration.WithLabelValues(batchType).Observe(solverSeconds)
	c.batchTrips.WithLabelValues(batchType).Observe(float64(totalTrips))

	if unassigned > 0 {
		c.batchUnassigned.WithLabelValues(batchType).Add(float64(unassigned))
	}
}

// RecordGroupSolve records a single category group solve
func (c *BatchMetricsCollector) RecordGroupSolve(
	category string,
	status string,
	seconds float64,
) {
	c.groupSolvesTotal.WithLabelValues(category, status).Inc()
	c.groupSolveDuration.WithLabelValues(category).Observe(seconds)
}
