package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbendaoud/fretplan-go/internal/application/optimization/services"
	"github.com/mbendaoud/fretplan-go/internal/domain/company"
	"github.com/mbendaoud/fretplan-go/internal/domain/trip"
	"github.com/mbendaoud/fretplan-go/internal/domain/vehicle"
	"github.com/mbendaoud/fretplan-go/test/helpers"
)

func TestValidationService_CleanInput(t *testing.T) {
	// Arrange
	svc := services.NewValidationService()
	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	companies := testCompanies()
	trips := []*trip.Trip{
		helpers.CreateTestTrip("trip-1", "carrier-lyon", helpers.LyonDepot, helpers.ParisDepot, date, 8, 0, trip.CargoPalletizedGoods),
	}
	vehicles := []*vehicle.Vehicle{helpers.CreateTestVehicle("veh-1", "carrier-lyon", vehicle.CategoryIN2)}

	// Act
	warnings, err := svc.ValidateBatchInput(context.Background(), trips, vehicles, companies)

	// Assert
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestValidationService_CollectsAllViolations(t *testing.T) {
	// Arrange
	svc := services.NewValidationService()
	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	companies := testCompanies()

	dup1 := helpers.CreateTestTrip("trip-dup", "carrier-lyon", helpers.LyonDepot, helpers.ParisDepot, date, 8, 0, trip.CargoPalletizedGoods)
	dup2 := helpers.CreateTestTrip("trip-dup", "carrier-lyon", helpers.LyonDepot, helpers.DijonPoint, date, 9, 0, trip.CargoPalletizedGoods)
	orphan := helpers.CreateTestTrip("trip-orphan", "carrier-ghost", helpers.LyonDepot, helpers.ParisDepot, date, 10, 0, trip.CargoPalletizedGoods)
	negative := helpers.CreateTestTrip("trip-negative", "carrier-lyon", helpers.LyonDepot, helpers.ParisDepot, date, 11, 0, trip.CargoPalletizedGoods)
	negative.WeightKg = -1

	// Act
	_, err := svc.ValidateBatchInput(context.Background(), []*trip.Trip{dup1, dup2, orphan, negative}, nil, companies)

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate trip id trip-dup")
	assert.Contains(t, err.Error(), "unknown company carrier-ghost")
	assert.Contains(t, err.Error(), "negative weight")
}

func TestValidationService_CollapsedWindowIsWarning(t *testing.T) {
	// Arrange
	svc := services.NewValidationService()
	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	companies := testCompanies()

	collapsed := helpers.CreateTestTrip("trip-1", "carrier-lyon", helpers.LyonDepot, helpers.ParisDepot, date, 8, 0, trip.CargoPalletizedGoods)
	collapsed.PlannedArrivalTime = collapsed.DepartureTime

	// Act
	warnings, err := svc.ValidateBatchInput(context.Background(), []*trip.Trip{collapsed}, nil, companies)

	// Assert
	require.NoError(t, err, "a collapsed window degrades, it does not abort")
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "window collapses")
}

func TestValidationService_CompanyWithoutDepot(t *testing.T) {
	// Arrange
	svc := services.NewValidationService()
	companies := map[string]*company.Company{
		"carrier-bare": {ID: "carrier-bare", Name: "Sans Dépôt"},
	}

	// Act
	_, err := svc.ValidateBatchInput(context.Background(), nil, nil, companies)

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no depot coordinates")
}

func TestValidationService_VehicleChecks(t *testing.T) {
	// Arrange
	svc := services.NewValidationService()
	companies := testCompanies()

	dup1 := helpers.CreateTestVehicle("veh-dup", "carrier-lyon", vehicle.CategoryIN2)
	dup2 := helpers.CreateTestVehicle("veh-dup", "carrier-lyon", vehicle.CategoryIN2)

	// Unknown company but an own depot: serviceable, no warning
	selfSufficient := helpers.CreateTestVehicle("veh-own-depot", "carrier-ghost", vehicle.CategoryIN2)
	depot := helpers.DijonPoint
	selfSufficient.Depot = &depot

	// Unknown company and no depot: excluded later, warn now
	stranded := helpers.CreateTestVehicle("veh-stranded", "carrier-ghost", vehicle.CategoryIN2)

	// Act
	warnings, err := svc.ValidateBatchInput(context.Background(), nil, []*vehicle.Vehicle{dup1, dup2, selfSufficient, stranded}, companies)

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate vehicle id veh-dup")
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "veh-stranded")
}
