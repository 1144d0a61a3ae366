package routing

import (
	"context"
	"time"

	"github.com/mbendaoud/fretplan-go/internal/domain/shared"
)

// Provider defines the routing engine operations the optimizer depends on.
// Implementations MUST answer every call: when the upstream engine is
// unreachable they return a deterministic haversine estimate flagged
// ok=false, fallback_used=true instead of an error. An error is returned
// only for context cancellation.
type Provider interface {
	// Route computes the truck route between two points. departAt is
	// optional and forwarded to the engine when set.
	Route(ctx context.Context, from, to shared.GeoPoint, departAt *time.Time) (*RouteResult, error)

	// Matrix computes the full n×n travel matrix over the given points.
	// The point order is the caller's; no deduplication is performed here.
	Matrix(ctx context.Context, points []shared.GeoPoint) (*MatrixResult, error)
}

// RouteResult is a point-to-point truck route
type RouteResult struct {
	DistanceKm   float64
	DurationMin  float64
	Polyline     string
	OK           bool
	FallbackUsed bool
}

// MatrixResult is an n×n travel matrix. DurationsS[i][j] is seconds from
// points[i] to points[j]; DistancesM is meters. Diagonals are zero.
type MatrixResult struct {
	DurationsS   [][]float64
	DistancesM   [][]float64
	OK           bool
	FallbackUsed bool
}

// NewMatrixResult allocates a zeroed n×n matrix result
func NewMatrixResult(n int) *MatrixResult {
	durations := make([][]float64, n)
	distances := make([][]float64, n)
	for i := 0; i < n; i++ {
		durations[i] = make([]float64, n)
		distances[i] = make([]float64, n)
	}
	return &MatrixResult{DurationsS: durations, DistancesM: distances, OK: true}
}

// Size returns the dimension of the matrix
func (m *MatrixResult) Size() int {
	return len(m.DurationsS)
}
