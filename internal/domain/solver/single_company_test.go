package solver_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbendaoud/fretplan-go/internal/domain/solver"
)

// Chaining two compatible trips on one vehicle beats dispatching a second
// vehicle when the connecting arc is short.
func TestSolveSingleCompany_ChainsWhenCheaper(t *testing.T) {
	// Arena: 0 = depot, 1-2 = trip A, 3-4 = trip B
	in := &solver.Input{
		Group: "AG1",
		Trips: []solver.Trip{
			{ID: "TRIP-A", CompanyID: "CO-X", Origin: 1, Destination: 2, EarliestMin: 480, LatestStartMin: 600, DurationMin: 60, ServiceMin: 30, WeightKg: 500},
			{ID: "TRIP-B", CompanyID: "CO-X", Origin: 3, Destination: 4, EarliestMin: 560, LatestStartMin: 700, DurationMin: 60, ServiceMin: 30, WeightKg: 500},
		},
		Vehicles: []solver.Vehicle{
			{ID: "VEH-1", CompanyID: "CO-X", Depot: 0, CapacityKg: 1000},
			{ID: "VEH-2", CompanyID: "CO-X", Depot: 0, CapacityKg: 1000},
		},
		Matrix: emptyMatrix(5),
	}
	in.Matrix.TravelMin[0][1] = 10
	in.Matrix.TravelMin[0][3] = 60
	in.Matrix.TravelMin[2][3] = 5
	in.Matrix.TravelMin[2][0] = 12
	in.Matrix.TravelMin[4][0] = 8
	in.Matrix.DistKm[4][0] = 8.0

	sol, err := solver.SolveSingleCompany(in, solver.Config{})

	require.NoError(t, err)
	assert.Equal(t, solver.StatusOptimal, sol.Status)
	assert.Equal(t, 1, sol.VehiclesUsed)
	require.Len(t, sol.Assignments, 2)

	first, second := sol.Assignments[0], sol.Assignments[1]
	assert.Equal(t, 0, first.TripIdx)
	assert.Equal(t, 1, first.SequenceOrder)
	assert.Equal(t, 480, first.StartMin)
	assert.False(t, first.IsLast)

	assert.Equal(t, 1, second.TripIdx)
	assert.Equal(t, first.VehicleIdx, second.VehicleIdx)
	assert.Equal(t, 2, second.SequenceOrder)
	assert.Equal(t, 575, second.StartMin, "ready at 570 plus 5 travel beats the 560 window open")
	assert.True(t, second.IsLast)

	assert.InDelta(t, 8.0, sol.TotalDeadheadKm, 1e-9)
	assert.Empty(t, sol.Unassigned)
}

func TestSolveSingleCompany_OverlappingWindowsUseSecondVehicle(t *testing.T) {
	in := &solver.Input{
		Group: "AG1",
		Trips: []solver.Trip{
			{ID: "TRIP-A", CompanyID: "CO-X", Origin: 1, Destination: 2, EarliestMin: 480, LatestStartMin: 485, DurationMin: 60, ServiceMin: 30, WeightKg: 500},
			{ID: "TRIP-B", CompanyID: "CO-X", Origin: 3, Destination: 4, EarliestMin: 480, LatestStartMin: 485, DurationMin: 60, ServiceMin: 30, WeightKg: 500},
		},
		Vehicles: []solver.Vehicle{
			{ID: "VEH-1", CompanyID: "CO-X", Depot: 0, CapacityKg: 1000},
			{ID: "VEH-2", CompanyID: "CO-X", Depot: 0, CapacityKg: 1000},
		},
		Matrix: emptyMatrix(5),
	}
	in.Matrix.TravelMin[2][3] = 10
	in.Matrix.TravelMin[4][1] = 10

	sol, err := solver.SolveSingleCompany(in, solver.Config{})

	require.NoError(t, err)
	assert.Equal(t, 2, sol.VehiclesUsed)
	require.Len(t, sol.Assignments, 2)
	assert.NotEqual(t, sol.Assignments[0].VehicleIdx, sol.Assignments[1].VehicleIdx)
	for _, a := range sol.Assignments {
		assert.Equal(t, 1, a.SequenceOrder)
		assert.True(t, a.IsLast)
	}
}

func TestSolveSingleCompany_DropsWhatNoVehicleCarries(t *testing.T) {
	in := &solver.Input{
		Group: "BT1",
		Trips: []solver.Trip{
			{ID: "TRIP-A", CompanyID: "CO-X", Origin: 1, Destination: 2, EarliestMin: 480, LatestStartMin: 600, DurationMin: 60, WeightKg: 500},
			{ID: "TRIP-HEAVY", CompanyID: "CO-X", Origin: 3, Destination: 4, EarliestMin: 480, LatestStartMin: 600, DurationMin: 60, WeightKg: 99999},
		},
		Vehicles: []solver.Vehicle{
			{ID: "VEH-1", CompanyID: "CO-X", Depot: 0, CapacityKg: 1000},
		},
		Matrix: emptyMatrix(5),
	}

	sol, err := solver.SolveSingleCompany(in, solver.Config{})

	require.NoError(t, err)
	require.Len(t, sol.Assignments, 1)
	assert.Equal(t, 0, sol.Assignments[0].TripIdx)
	assert.Equal(t, []int{1}, sol.Unassigned)
}

func TestSolveSingleCompany_TimeoutKeepsConstructedPlan(t *testing.T) {
	in := &solver.Input{
		Group: "AG1",
		Trips: []solver.Trip{
			{ID: "TRIP-A", CompanyID: "CO-X", Origin: 1, Destination: 2, EarliestMin: 480, LatestStartMin: 600, DurationMin: 60, WeightKg: 500},
		},
		Vehicles: []solver.Vehicle{
			{ID: "VEH-1", CompanyID: "CO-X", Depot: 0, CapacityKg: 1000},
		},
		Matrix: emptyMatrix(3),
	}

	clock := &stepClock{now: time.Unix(0, 0), step: 20 * time.Second}
	sol, err := solver.SolveSingleCompany(in, solver.Config{SingleBudget: 10 * time.Second, Clock: clock})

	require.NoError(t, err)
	assert.True(t, sol.TimedOut)
	assert.Equal(t, solver.StatusFeasible, sol.Status)
	require.Len(t, sol.Assignments, 1, "the constructed plan survives the timeout")
}

func TestSolveSingleCompany_EmptyGroup(t *testing.T) {
	sol, err := solver.SolveSingleCompany(&solver.Input{Group: "AG1", Matrix: emptyMatrix(0)}, solver.Config{})

	require.NoError(t, err)
	assert.Equal(t, solver.StatusEmpty, sol.Status)
}
