package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace for all metrics
	namespace = "fretplan"
	// Subsystem for daemon metrics
	subsystem = "daemon"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalBatchCollector is the singleton batch metrics collector
	// Set by SetGlobalBatchCollector() when metrics are enabled
	globalBatchCollector BatchMetricsRecorder

	// globalRoutingCollector is the singleton routing metrics collector
	// Set by SetGlobalRoutingCollector() when metrics are enabled
	globalRoutingCollector RoutingMetricsRecorder
)

// BatchMetricsRecorder defines the interface for recording optimization batch events
// This interface is used by application code to record metrics
type BatchMetricsRecorder interface {
	RecordBatchCompletion(batchType string, status string, solverSeconds float64, totalTrips int, unassigned int)
	RecordGroupSolve(category string, status string, seconds float64)
}

// RoutingMetricsRecorder defines the interface for recording routing engine metrics
type RoutingMetricsRecorder interface {
	RecordMatrixRequest(locations int, fallback bool, seconds float64)
	RecordRouteRequest(fallback bool, seconds float64)
	RecordMatrixCacheLookup(hit bool)
}

// InitRegistry initializes the Prometheus registry
// Should be called once at application startup if metrics are enabled
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// registerAll registers a collector set with the global registry.
// A nil registry means metrics are disabled and registration is a no-op.
func registerAll(collectors ...prometheus.Collector) error {
	if Registry == nil {
		return nil
	}
	for _, c := range collectors {
		if err := Registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// GetRegistry returns the global Prometheus registry
// Returns nil if metrics are not initialized
func GetRegistry() *prometheus.Registry {
	return Registry
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// SetGlobalBatchCollector sets the global batch metrics collector
// This should be called after the collector is created and registered
func SetGlobalBatchCollector(collector BatchMetricsRecorder) {
	globalBatchCollector = collector
}

// RecordBatchCompletion records a batch completion event globally
func RecordBatchCompletion(batchType string, status string, solverSeconds float64, totalTrips int, unassigned int) {
	if globalBatchCollector != nil {
		globalBatchCollector.RecordBatchCompletion(batchType, status, solverSeconds, totalTrips, unassigned)
	}
}

// RecordGroupSolve records a per-group solver run globally
func RecordGroupSolve(category string, status string, seconds float64) {
	if globalBatchCollector != nil {
		globalBatchCollector.RecordGroupSolve(category, status, seconds)
	}
}

// SetGlobalRoutingCollector sets the global routing metrics collector
func SetGlobalRoutingCollector(collector RoutingMetricsRecorder) {
	globalRoutingCollector = collector
}

// RecordMatrixRequest records a travel matrix computation globally
func RecordMatrixRequest(locations int, fallback bool, seconds float64) {
	if globalRoutingCollector != nil {
		globalRoutingCollector.RecordMatrixRequest(locations, fallback, seconds)
	}
}

// RecordRouteRequest records a single route computation globally
func RecordRouteRequest(fallback bool, seconds float64) {
	if globalRoutingCollector != nil {
		globalRoutingCollector.RecordRouteRequest(fallback, seconds)
	}
}

// RecordMatrixCacheLookup records a matrix cache hit or miss globally
func RecordMatrixCacheLookup(hit bool) {
	if globalRoutingCollector != nil {
		globalRoutingCollector.RecordMatrixCacheLookup(hit)
	}
}
