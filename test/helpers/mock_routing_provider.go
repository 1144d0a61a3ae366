package helpers

import (
	"context"
	"sync"
	"time"

	"github.com/mbendaoud/fretplan-go/internal/domain/routing"
	"github.com/mbendaoud/fretplan-go/internal/domain/shared"
)

// MockRoutingProvider simulates the routing engine for testing.
// By default it answers with straight-line distances at a fixed truck speed,
// which keeps tests deterministic without scripting every pair.
type MockRoutingProvider struct {
	mu sync.RWMutex

	speedKmh     float64
	fallbackMode bool // answers flagged as haversine fallbacks

	routeCalls  int
	matrixCalls int

	customRoutes map[string]*routing.RouteResult // "fromKey->toKey" overrides
	routeErr     error
	matrixErr    error
}

// NewMockRoutingProvider creates a mock provider with default behavior
func NewMockRoutingProvider() *MockRoutingProvider {
	return &MockRoutingProvider{
		speedKmh:     60,
		customRoutes: make(map[string]*routing.RouteResult),
	}
}

// SetSpeedKmh changes the synthetic truck speed used for durations
func (m *MockRoutingProvider) SetSpeedKmh(speed float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.speedKmh = speed
}

// SetFallbackMode makes every answer flagged as a haversine fallback
func (m *MockRoutingProvider) SetFallbackMode(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallbackMode = enabled
}

// SetCustomRoute scripts the answer for one origin/destination pair
func (m *MockRoutingProvider) SetCustomRoute(from, to shared.GeoPoint, result *routing.RouteResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customRoutes[from.Key()+"->"+to.Key()] = result
}

// SetRouteError makes Route fail with the given error
func (m *MockRoutingProvider) SetRouteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routeErr = err
}

// SetMatrixError makes Matrix fail with the given error
func (m *MockRoutingProvider) SetMatrixError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matrixErr = err
}

// RouteCalls returns how many times Route was invoked
func (m *MockRoutingProvider) RouteCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.routeCalls
}

// MatrixCalls returns how many times Matrix was invoked
func (m *MockRoutingProvider) MatrixCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.matrixCalls
}

// Route implements routing.Provider
func (m *MockRoutingProvider) Route(ctx context.Context, from, to shared.GeoPoint, departAt *time.Time) (*routing.RouteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routeCalls++

	if m.routeErr != nil {
		return nil, m.routeErr
	}
	if custom, ok := m.customRoutes[from.Key()+"->"+to.Key()]; ok {
		return custom, nil
	}

	km := from.HaversineKm(to)
	return &routing.RouteResult{
		DistanceKm:   km,
		DurationMin:  km / m.speedKmh * 60,
		OK:           !m.fallbackMode,
		FallbackUsed: m.fallbackMode,
	}, nil
}

// Matrix implements routing.Provider
func (m *MockRoutingProvider) Matrix(ctx context.Context, points []shared.GeoPoint) (*routing.MatrixResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matrixCalls++

	if m.matrixErr != nil {
		return nil, m.matrixErr
	}

	result := routing.NewMatrixResult(len(points))
	for i := range points {
		for j := range points {
			if i == j {
				continue
			}
			km := points[i].HaversineKm(points[j])
			result.DistancesM[i][j] = km * 1000
			result.DurationsS[i][j] = km / m.speedKmh * 3600
		}
	}
	result.OK = !m.fallbackMode
	result.FallbackUsed = m.fallbackMode
	return result, nil
}

// Reset clears all configured state and counters
func (m *MockRoutingProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.speedKmh = 60
	m.fallbackMode = false
	m.routeCalls = 0
	m.matrixCalls = 0
	m.customRoutes = make(map[string]*routing.RouteResult)
	m.routeErr = nil
	m.matrixErr = nil
}
