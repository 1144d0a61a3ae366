package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbendaoud/fretplan-go/internal/adapters/persistence"
	"github.com/mbendaoud/fretplan-go/internal/domain/trip"
	"github.com/mbendaoud/fretplan-go/test/helpers"
)

func TestTripRepository_FindPlannedForDate(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormTripRepository(db)
	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	inWindow := helpers.CreateTestTrip("trip-1", "carrier-lyon", helpers.LyonDepot, helpers.ParisDepot, date, 8, 0, trip.CargoPalletizedGoods)
	lateNight := helpers.CreateTestTrip("trip-2", "carrier-lyon", helpers.LyonDepot, helpers.GrenoblePoint, date, 23, 30, trip.CargoPalletizedGoods)
	dayAfter := helpers.CreateTestTrip("trip-3", "carrier-lyon", helpers.LyonDepot, helpers.DijonPoint, date.AddDate(0, 0, 1), 0, 15, trip.CargoPalletizedGoods)
	helpers.SeedTrips(t, db, inWindow, lateNight, dayAfter)

	// Act
	found, err := repo.FindPlannedForDate(context.Background(), date, nil)

	// Assert
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "trip-1", found[0].ID)
	assert.Equal(t, "trip-2", found[1].ID)
}

func TestTripRepository_FindPlannedForDate_CompanyFilter(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormTripRepository(db)
	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	helpers.SeedTrips(t, db,
		helpers.CreateTestTrip("trip-1", "carrier-lyon", helpers.LyonDepot, helpers.ParisDepot, date, 8, 0, trip.CargoPalletizedGoods),
		helpers.CreateTestTrip("trip-2", "carrier-paris", helpers.ParisDepot, helpers.DijonPoint, date, 9, 0, trip.CargoPalletizedGoods),
	)

	companyID := "carrier-paris"

	// Act
	found, err := repo.FindPlannedForDate(context.Background(), date, &companyID)

	// Assert
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "trip-2", found[0].ID)
}

func TestTripRepository_FindPlannedForDate_SkipsNonPending(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormTripRepository(db)
	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	cancelled := helpers.CreateTestTrip("trip-1", "carrier-lyon", helpers.LyonDepot, helpers.ParisDepot, date, 8, 0, trip.CargoPalletizedGoods)
	cancelled.Status = trip.StatusCancelled

	assigned := helpers.CreateTestTrip("trip-2", "carrier-lyon", helpers.LyonDepot, helpers.GrenoblePoint, date, 9, 0, trip.CargoPalletizedGoods)
	assigned.OptimizationStatus = trip.OptimizationAssigned

	pending := helpers.CreateTestTrip("trip-3", "carrier-lyon", helpers.LyonDepot, helpers.DijonPoint, date, 10, 0, trip.CargoPalletizedGoods)
	helpers.SeedTrips(t, db, cancelled, assigned, pending)

	// Act
	found, err := repo.FindPlannedForDate(context.Background(), date, nil)

	// Assert
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "trip-3", found[0].ID)
}

func TestTripRepository_SaveAssignments(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormTripRepository(db)
	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	seeded := helpers.CreateTestTrip("trip-1", "carrier-lyon", helpers.LyonDepot, helpers.ParisDepot, date, 8, 0, trip.CargoFreshProduce)
	helpers.SeedTrips(t, db, seeded)

	batchID := "batch-001"
	vehicleID := "veh-lyon-1"
	seq := 2
	distance := 465.3
	duration := 312.0
	eta := date.Add(14 * time.Hour)

	seeded.OptimizationBatchID = &batchID
	seeded.AssignedVehicleID = &vehicleID
	seeded.SequenceOrder = &seq
	seeded.IsLastInChain = true
	seeded.OptimizationStatus = trip.OptimizationAssigned
	seeded.RouteDistanceKm = &distance
	seeded.RouteDurationMin = &duration
	seeded.EstimatedArrival = &eta

	// Act
	err := repo.SaveAssignments(context.Background(), []*trip.Trip{seeded})

	// Assert
	require.NoError(t, err)

	found, err := repo.FindByBatchID(context.Background(), batchID)
	require.NoError(t, err)
	require.Len(t, found, 1)

	got := found[0]
	assert.Equal(t, "trip-1", got.ID)
	require.NotNil(t, got.AssignedVehicleID)
	assert.Equal(t, vehicleID, *got.AssignedVehicleID)
	require.NotNil(t, got.SequenceOrder)
	assert.Equal(t, seq, *got.SequenceOrder)
	assert.True(t, got.IsLastInChain)
	assert.Equal(t, trip.OptimizationAssigned, got.OptimizationStatus)
	require.NotNil(t, got.RouteDistanceKm)
	assert.InDelta(t, distance, *got.RouteDistanceKm, 0.001)
}

func TestTripRepository_SaveAssignments_UnknownTrip(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormTripRepository(db)

	ghost := &trip.Trip{ID: "trip-missing", CompanyID: "carrier-lyon"}

	// Act
	err := repo.SaveAssignments(context.Background(), []*trip.Trip{ghost})

	// Assert
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "trip not found")
}

func TestTripRepository_SaveAssignments_Empty(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormTripRepository(db)

	// Act
	err := repo.SaveAssignments(context.Background(), nil)

	// Assert
	assert.NoError(t, err)
}
