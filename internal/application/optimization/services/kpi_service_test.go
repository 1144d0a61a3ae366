package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbendaoud/fretplan-go/internal/application/optimization/services"
	"github.com/mbendaoud/fretplan-go/internal/domain/solver"
	"github.com/mbendaoud/fretplan-go/internal/domain/trip"
	"github.com/mbendaoud/fretplan-go/internal/domain/vehicle"
)

func kpiSettings() services.KPISettings {
	return services.KPISettings{FuelPerKm: 0.30, CO2PerLiter: 2.68, FuelPricePerLiter: 1.50}
}

func zeroDistances(n int) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
	}
	return out
}

// chainedGroup builds one solved IN2 group: two trips of carrier-a chained on
// a vehicle owned by carrier-b, with a 25 km closing return to b's depot.
func chainedGroup() (*services.Group, *solver.Solution) {
	routeA1, routeA2 := 100.0, 80.0

	dist := zeroDistances(5)
	dist[4][0] = 25 // second destination back to the vehicle's depot

	group := &services.Group{
		Category: vehicle.CategoryIN2,
		Trips: []*trip.Trip{
			{ID: "trip-a1", CompanyID: "carrier-a", RouteDistanceKm: &routeA1},
			{ID: "trip-a2", CompanyID: "carrier-a", RouteDistanceKm: &routeA2},
		},
		Vehicles: []*vehicle.Vehicle{
			{ID: "veh-b", CompanyID: "carrier-b", Category: vehicle.CategoryIN2},
		},
		Input: &solver.Input{
			Trips: []solver.Trip{
				{ID: "trip-a1", CompanyID: "carrier-a", Destination: 2, ReturnEstimateKm: 40},
				{ID: "trip-a2", CompanyID: "carrier-a", Destination: 4, ReturnEstimateKm: 10},
			},
			Vehicles: []solver.Vehicle{
				{ID: "veh-b", CompanyID: "carrier-b", Depot: 0},
			},
			Matrix: &solver.Matrix{DistKm: dist},
		},
	}

	solution := &solver.Solution{
		Assignments: []solver.Assignment{
			{TripIdx: 0, VehicleIdx: 0, SequenceOrder: 1},
			{TripIdx: 1, VehicleIdx: 0, SequenceOrder: 2, IsLast: true},
		},
		VehiclesUsed: 1,
		Status:       solver.StatusOptimal,
	}
	return group, solution
}

func TestKPIService_AttributesChainSavings(t *testing.T) {
	// Arrange
	kpi := services.NewKPIService(kpiSettings())
	group, solution := chainedGroup()

	// Act
	results := kpi.Compute(context.Background(), "batch-001", []*services.Group{group}, []*solver.Solution{solution})

	// Assert
	require.Len(t, results, 2)

	a := results[0]
	assert.Equal(t, "carrier-a", a.CompanyID)
	assert.Equal(t, 2, a.TripsContributed)
	assert.Equal(t, 2, a.TripsAssigned)
	// Baseline 100+40 + 80+10 = 230 km, optimized 180 km
	assert.InDelta(t, 50.0, a.RawKmDelta, 0.001)
	assert.InDelta(t, 50.0, a.KmSaved, 0.001)
	assert.InDelta(t, 15.0, a.FuelSavedLiters, 0.001)
	assert.InDelta(t, 40.2, a.CO2SavedKg, 0.001)
	assert.InDelta(t, 22.5, a.CostSaved, 0.001)
	assert.Equal(t, 0, a.VehiclesUsed, "carrier-a owns none of the vehicles that served")
	assert.Equal(t, 1, a.VehiclesBorrowed)
	assert.Equal(t, 0, a.VehiclesSharedOut)

	b := results[1]
	assert.Equal(t, "carrier-b", b.CompanyID)
	assert.Equal(t, 0, b.TripsContributed)
	// The 25 km closing return lands on the vehicle owner with no baseline
	assert.InDelta(t, -25.0, b.RawKmDelta, 0.001)
	assert.Zero(t, b.KmSaved, "negative delta is clipped")
	assert.Zero(t, b.FuelSavedLiters)
	assert.Equal(t, 1, b.VehiclesUsed)
	assert.Equal(t, 1, b.VehiclesSharedOut)
	assert.Equal(t, 0, b.VehiclesBorrowed)
}

func TestKPIService_Totals(t *testing.T) {
	// Arrange
	kpi := services.NewKPIService(kpiSettings())
	group, solution := chainedGroup()
	results := kpi.Compute(context.Background(), "batch-001", []*services.Group{group}, []*solver.Solution{solution})

	// Act
	totals := kpi.Totals(results)

	// Assert
	assert.InDelta(t, 50.0, totals.KmSaved, 0.001)
	assert.InDelta(t, 15.0, totals.FuelSavedLiters, 0.001)
	assert.InDelta(t, 40.2, totals.CO2SavedKg, 0.001)
	assert.InDelta(t, 22.5, totals.CostSaved, 0.001)
}

func TestKPIService_WithFuelPrice(t *testing.T) {
	// Arrange
	kpi := services.NewKPIService(kpiSettings())
	group, solution := chainedGroup()

	// Act
	override := kpi.WithFuelPrice(2.0)
	results := override.Compute(context.Background(), "batch-001", []*services.Group{group}, []*solver.Solution{solution})

	// Assert
	require.Len(t, results, 2)
	assert.InDelta(t, 30.0, results[0].CostSaved, 0.001, "15 L at the overridden 2.00 price")

	// The original service keeps its configured price
	original := kpi.Compute(context.Background(), "batch-002", []*services.Group{group}, []*solver.Solution{solution})
	assert.InDelta(t, 22.5, original[0].CostSaved, 0.001)
}

func TestKPIService_SkipsNilSolutions(t *testing.T) {
	// Arrange
	kpi := services.NewKPIService(kpiSettings())
	group, _ := chainedGroup()

	// Act
	results := kpi.Compute(context.Background(), "batch-001", []*services.Group{group}, []*solver.Solution{nil})

	// Assert
	assert.Empty(t, results)
}
