package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbendaoud/fretplan-go/internal/application/optimization/services"
	"github.com/mbendaoud/fretplan-go/internal/domain/planning"
	"github.com/mbendaoud/fretplan-go/internal/domain/shared"
	"github.com/mbendaoud/fretplan-go/internal/domain/solver"
	"github.com/mbendaoud/fretplan-go/internal/domain/trip"
	"github.com/mbendaoud/fretplan-go/internal/domain/vehicle"
)

// soloGroup builds a trivially feasible one-trip one-vehicle group
func soloGroup(category vehicle.Category, tripID string) *services.Group {
	travel := [][]int{
		{0, 10, 20},
		{10, 0, 60},
		{20, 60, 0},
	}
	dist := [][]float64{
		{0, 10, 20},
		{10, 0, 80},
		{20, 80, 0},
	}

	return &services.Group{
		Category: category,
		Trips:    []*trip.Trip{{ID: tripID, CompanyID: "carrier-lyon"}},
		Vehicles: []*vehicle.Vehicle{{ID: "veh-" + tripID, CompanyID: "carrier-lyon", Category: category}},
		Input: &solver.Input{
			Group: string(category),
			Trips: []solver.Trip{
				{ID: tripID, CompanyID: "carrier-lyon", Origin: 1, Destination: 2, EarliestMin: 480, LatestStartMin: 540, DurationMin: 60, ServiceMin: 30, WeightKg: 1000, ReturnEstimateKm: 20},
			},
			Vehicles: []solver.Vehicle{
				{ID: "veh-" + tripID, CompanyID: "carrier-lyon", Depot: 0, CapacityKg: 10000},
			},
			Matrix: &solver.Matrix{TravelMin: travel, DistKm: dist},
		},
	}
}

func TestSolveService_SolvesGroupsInParallel(t *testing.T) {
	// Arrange
	clock := shared.NewMockClock(time.Date(2025, 3, 14, 2, 0, 0, 0, time.UTC))
	svc := services.NewSolveService(services.SolveSettings{Budget: time.Minute, MaxWorkers: 2}, clock)

	groups := []*services.Group{
		soloGroup(vehicle.CategoryAG1, "trip-1"),
		soloGroup(vehicle.CategoryIN2, "trip-2"),
	}

	// Act
	solutions, err := svc.SolveAll(context.Background(), planning.TypeCrossCompany, groups)

	// Assert
	require.NoError(t, err)
	require.Len(t, solutions, 2)
	for gi, sol := range solutions {
		require.NotNil(t, sol, "solution %d must be parallel to its group", gi)
		assert.Equal(t, solver.StatusOptimal, sol.Status)
		require.Len(t, sol.Assignments, 1)
		assert.Equal(t, 1, sol.VehiclesUsed)
		assert.Empty(t, sol.Unassigned)
	}
}

func TestSolveService_NoGroups(t *testing.T) {
	// Arrange
	clock := shared.NewMockClock(time.Date(2025, 3, 14, 2, 0, 0, 0, time.UTC))
	svc := services.NewSolveService(services.SolveSettings{}, clock)

	// Act
	solutions, err := svc.SolveAll(context.Background(), planning.TypeCrossCompany, nil)

	// Assert
	require.NoError(t, err)
	assert.Nil(t, solutions)
}

func TestSolveService_CancelledContext(t *testing.T) {
	// Arrange
	clock := shared.NewMockClock(time.Date(2025, 3, 14, 2, 0, 0, 0, time.UTC))
	svc := services.NewSolveService(services.SolveSettings{}, clock)
	groups := []*services.Group{soloGroup(vehicle.CategoryIN2, "trip-1")}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Act
	_, err := svc.SolveAll(ctx, planning.TypeCrossCompany, groups)

	// Assert
	require.Error(t, err)
	var cancelled *shared.BatchCancelledError
	assert.ErrorAs(t, err, &cancelled)
}

func TestAggregateStatus(t *testing.T) {
	tests := []struct {
		name      string
		solutions []*solver.Solution
		expected  string
	}{
		{"empty input", nil, solver.StatusEmpty},
		{"all optimal", []*solver.Solution{{Status: solver.StatusOptimal}, {Status: solver.StatusOptimal}}, solver.StatusOptimal},
		{"weakest wins feasible", []*solver.Solution{{Status: solver.StatusOptimal}, {Status: solver.StatusFeasible}}, solver.StatusFeasible},
		{"fallback dominates", []*solver.Solution{{Status: solver.StatusFeasible}, {Status: solver.StatusFallback}}, solver.StatusFallback},
		{"nil entries ignored", []*solver.Solution{nil, {Status: solver.StatusOptimal}}, solver.StatusOptimal},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, services.AggregateStatus(tc.solutions))
		})
	}
}
