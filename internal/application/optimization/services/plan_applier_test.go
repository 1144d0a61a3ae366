package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbendaoud/fretplan-go/internal/adapters/persistence"
	"github.com/mbendaoud/fretplan-go/internal/application/optimization/services"
	"github.com/mbendaoud/fretplan-go/internal/domain/planning"
	"github.com/mbendaoud/fretplan-go/internal/domain/solver"
	"github.com/mbendaoud/fretplan-go/internal/domain/trip"
	"github.com/mbendaoud/fretplan-go/internal/domain/vehicle"
	"github.com/mbendaoud/fretplan-go/test/helpers"
)

func TestPlanApplier_PersistsAssignmentsAndClearsUnassigned(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormTripRepository(db)
	applier := services.NewPlanApplier(repo)
	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	first := helpers.CreateTestTrip("trip-1", "carrier-lyon", helpers.LyonDepot, helpers.GrenoblePoint, day, 8, 0, trip.CargoPalletizedGoods)
	second := helpers.CreateTestTrip("trip-2", "carrier-paris", helpers.GrenoblePoint, helpers.DijonPoint, day, 12, 0, trip.CargoPalletizedGoods)
	dropped := helpers.CreateTestTrip("trip-3", "carrier-lyon", helpers.LyonDepot, helpers.ParisDepot, day, 9, 0, trip.CargoPalletizedGoods)
	helpers.SeedTrips(t, db, first, second, dropped)

	veh := helpers.CreateTestVehicle("veh-1", "carrier-lyon", vehicle.CategoryIN2)

	group := &services.Group{
		Category: vehicle.CategoryIN2,
		Trips:    []*trip.Trip{first, second, dropped},
		Vehicles: []*vehicle.Vehicle{veh},
		Input: &solver.Input{
			Trips: []solver.Trip{
				{ID: "trip-1", DurationMin: 90},
				{ID: "trip-2", DurationMin: 120},
				{ID: "trip-3", DurationMin: 60},
			},
			Vehicles: []solver.Vehicle{{ID: "veh-1", CompanyID: "carrier-lyon", Depot: 0}},
		},
	}
	solution := &solver.Solution{
		Assignments: []solver.Assignment{
			{TripIdx: 0, VehicleIdx: 0, SequenceOrder: 1, StartMin: 480},
			{TripIdx: 1, VehicleIdx: 0, SequenceOrder: 2, StartMin: 720, IsLast: true},
		},
		Unassigned:   []int{2},
		VehiclesUsed: 1,
	}

	// Act
	plan, err := applier.Apply(context.Background(), "batch-001", day, []*services.Group{group}, []*solver.Solution{solution})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, plan.VehiclesUsed)
	require.Len(t, plan.Assignments, 2)
	require.Len(t, plan.Unassigned, 1)
	assert.Equal(t, "trip-3", plan.Unassigned[0].TripID)
	assert.Equal(t, planning.ReasonNotAssigned, plan.Unassigned[0].Reason)

	// Entries are sorted by vehicle then sequence
	assert.Equal(t, 1, plan.Assignments[0].SequenceOrder)
	assert.Equal(t, "trip-1", plan.Assignments[0].TripID)
	assert.Equal(t, "carrier-paris", plan.Assignments[1].OriginalCompanyID)
	assert.Equal(t, "carrier-lyon", plan.Assignments[1].AssignedCompanyID)
	assert.True(t, plan.Assignments[1].IsLastInChain)
	assert.Equal(t, day.Add(8*time.Hour).Format(time.RFC3339), plan.Assignments[0].StartTimeISO)

	// Journal state
	persisted, err := repo.FindByBatchID(context.Background(), "batch-001")
	require.NoError(t, err)
	require.Len(t, persisted, 3, "unassigned trips are stamped with the batch too")

	byID := map[string]*trip.Trip{}
	for _, tr := range persisted {
		byID[tr.ID] = tr
	}

	assigned := byID["trip-2"]
	require.NotNil(t, assigned.AssignedVehicleID)
	assert.Equal(t, "veh-1", *assigned.AssignedVehicleID)
	assert.Equal(t, trip.OptimizationAssigned, assigned.OptimizationStatus)
	assert.True(t, assigned.IsLastInChain)
	require.NotNil(t, assigned.EstimatedArrival)
	assert.True(t, assigned.EstimatedArrival.Equal(day.Add(14*time.Hour)), "12:00 start plus 120 min drive")

	left := byID["trip-3"]
	assert.Nil(t, left.AssignedVehicleID)
	assert.Equal(t, trip.OptimizationPending, left.OptimizationStatus)
	assert.Nil(t, left.EstimatedArrival)
}

func TestPlanApplier_ReapplyingOverwrites(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormTripRepository(db)
	applier := services.NewPlanApplier(repo)
	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	tr := helpers.CreateTestTrip("trip-1", "carrier-lyon", helpers.LyonDepot, helpers.GrenoblePoint, day, 8, 0, trip.CargoPalletizedGoods)
	helpers.SeedTrips(t, db, tr)

	group := &services.Group{
		Category: vehicle.CategoryIN2,
		Trips:    []*trip.Trip{tr},
		Vehicles: []*vehicle.Vehicle{helpers.CreateTestVehicle("veh-1", "carrier-lyon", vehicle.CategoryIN2)},
		Input: &solver.Input{
			Trips:    []solver.Trip{{ID: "trip-1", DurationMin: 90}},
			Vehicles: []solver.Vehicle{{ID: "veh-1", CompanyID: "carrier-lyon"}},
		},
	}

	assignedSol := &solver.Solution{
		Assignments:  []solver.Assignment{{TripIdx: 0, VehicleIdx: 0, SequenceOrder: 1, StartMin: 480, IsLast: true}},
		VehiclesUsed: 1,
	}
	droppedSol := &solver.Solution{Unassigned: []int{0}}

	_, err := applier.Apply(context.Background(), "batch-001", day, []*services.Group{group}, []*solver.Solution{assignedSol})
	require.NoError(t, err)

	// Act - the rerun drops the trip
	_, err = applier.Apply(context.Background(), "batch-002", day, []*services.Group{group}, []*solver.Solution{droppedSol})

	// Assert
	require.NoError(t, err)
	persisted, err := repo.FindByBatchID(context.Background(), "batch-002")
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Nil(t, persisted[0].AssignedVehicleID, "rerun must clear the previous assignment")
	assert.Equal(t, trip.OptimizationPending, persisted[0].OptimizationStatus)
}
