package commands_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mbendaoud/fretplan-go/internal/adapters/persistence"
	"github.com/mbendaoud/fretplan-go/internal/application/optimization/commands"
	"github.com/mbendaoud/fretplan-go/internal/application/optimization/services"
	"github.com/mbendaoud/fretplan-go/internal/domain/planning"
	"github.com/mbendaoud/fretplan-go/internal/domain/routing"
	"github.com/mbendaoud/fretplan-go/internal/domain/shared"
	"github.com/mbendaoud/fretplan-go/internal/domain/trip"
	"github.com/mbendaoud/fretplan-go/internal/domain/vehicle"
	"github.com/mbendaoud/fretplan-go/test/helpers"
)

var day = time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

func newTestHandler(db *gorm.DB, provider routing.Provider, clock shared.Clock) *commands.RunBatchHandler {
	tripRepo := persistence.NewGormTripRepository(db)

	return commands.NewRunBatchHandler(
		persistence.NewGormBatchRepository(db),
		persistence.NewGormCompanyResultRepository(db),
		tripRepo,
		persistence.NewGormVehicleRepository(db),
		persistence.NewGormCompanyRepository(db),
		services.NewValidationService(),
		services.NewRouteBackfillService(provider),
		services.NewMatrixService(provider),
		services.NewGroupBuilder(30),
		services.NewSolveService(services.SolveSettings{Budget: 5 * time.Second, SingleBudget: 2 * time.Second, MaxWorkers: 1}, clock),
		services.NewPlanApplier(tripRepo),
		services.NewKPIService(services.KPISettings{FuelPerKm: 0.30, CO2PerLiter: 2.68, FuelPricePerLiter: 1.50}),
		clock,
	)
}

// seedTwoCarrierDay sets up carrier-lyon with a chainable pair
// (Lyon→Grenoble 08:00 then Grenoble→Lyon 14:00) and carrier-paris with one
// morning trip, all needing the same closed-van fleet.
func seedTwoCarrierDay(t *testing.T, db *gorm.DB) {
	helpers.SeedCompanies(t, db,
		helpers.CreateTestCompany("carrier-lyon", "Transports Lyonnais", helpers.LyonDepot),
		helpers.CreateTestCompany("carrier-paris", "Fret Parisien", helpers.ParisDepot),
	)
	helpers.SeedVehicles(t, db,
		helpers.CreateTestVehicle("veh-lyon", "carrier-lyon", vehicle.CategoryIN2),
		helpers.CreateTestVehicle("veh-paris", "carrier-paris", vehicle.CategoryIN2),
	)
	helpers.SeedTrips(t, db,
		helpers.CreateTestTrip("trip-l1", "carrier-lyon", helpers.LyonDepot, helpers.GrenoblePoint, day, 8, 0, trip.CargoPalletizedGoods),
		helpers.CreateTestTrip("trip-l2", "carrier-lyon", helpers.GrenoblePoint, helpers.LyonDepot, day, 14, 0, trip.CargoPalletizedGoods),
		helpers.CreateTestTrip("trip-p1", "carrier-paris", helpers.ParisDepot, helpers.DijonPoint, day, 9, 0, trip.CargoPalletizedGoods),
	)
}

func TestRunBatchHandler_CrossCompanyHappyPath(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	seedTwoCarrierDay(t, db)
	clock := shared.NewMockClock(day.Add(2 * time.Hour))
	handler := newTestHandler(db, helpers.NewMockRoutingProvider(), clock)

	// Act
	response, err := handler.Handle(context.Background(), &commands.RunBatchCommand{Date: day})

	// Assert
	require.NoError(t, err)
	report := response.(*commands.RunBatchResponse).Report
	require.NotNil(t, report)

	assert.Equal(t, planning.TypeCrossCompany, report.Type)
	assert.Equal(t, "2025-03-14", report.Date)
	assert.Equal(t, 3, report.TripsOptimized)
	assert.Equal(t, 2, report.VehiclesUsed)
	assert.Empty(t, report.Unassigned)
	assert.Equal(t, []string{"carrier-lyon", "carrier-paris"}, report.ParticipatingCompanies)

	// Chaining spares carrier-lyon the empty return from Grenoble
	lyon := report.CompanyResults["carrier-lyon"]
	assert.Greater(t, lyon.KmSaved, 80.0)
	assert.Equal(t, 2, lyon.TripsAssigned)
	paris := report.CompanyResults["carrier-paris"]
	assert.InDelta(t, 0.0, paris.KmSaved, 0.01, "a solo trip saves nothing")

	assert.Greater(t, report.Totals.KmSaved, 80.0)
	assert.InDelta(t, report.Totals.FuelSavedLiters, report.Totals.KmSaved*0.30, 0.01)

	// Batch row reflects the run
	batches, err := persistence.NewGormBatchRepository(db).FindRecent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	batch := batches[0]
	assert.Equal(t, planning.BatchCompleted, batch.Status)
	assert.Equal(t, 3, batch.TotalTrips)
	assert.Equal(t, 2, batch.VehiclesUsed)
	assert.InDelta(t, report.Totals.KmSaved, batch.KmSaved, 0.001)
	require.NotNil(t, batch.CompletedAt)

	// Journal state: the pair shares a vehicle, the Paris trip does not
	persisted, err := persistence.NewGormTripRepository(db).FindByBatchID(context.Background(), batch.ID)
	require.NoError(t, err)
	require.Len(t, persisted, 3)

	byID := map[string]*trip.Trip{}
	for _, tr := range persisted {
		byID[tr.ID] = tr
	}
	l1, l2, p1 := byID["trip-l1"], byID["trip-l2"], byID["trip-p1"]
	require.NotNil(t, l1.AssignedVehicleID)
	require.NotNil(t, l2.AssignedVehicleID)
	require.NotNil(t, p1.AssignedVehicleID)
	assert.Equal(t, *l1.AssignedVehicleID, *l2.AssignedVehicleID)
	assert.NotEqual(t, *l1.AssignedVehicleID, *p1.AssignedVehicleID)
	assert.Equal(t, 1, *l1.SequenceOrder)
	assert.Equal(t, 2, *l2.SequenceOrder)
	assert.False(t, l1.IsLastInChain)
	assert.True(t, l2.IsLastInChain)
	assert.True(t, p1.IsLastInChain)
}

func TestRunBatchHandler_SingleCompanyNarrowsJournal(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	seedTwoCarrierDay(t, db)
	clock := shared.NewMockClock(day.Add(2 * time.Hour))
	handler := newTestHandler(db, helpers.NewMockRoutingProvider(), clock)

	companyID := "carrier-lyon"

	// Act
	response, err := handler.Handle(context.Background(), &commands.RunBatchCommand{
		Date:      day,
		Type:      planning.TypeSingleCompany,
		CompanyID: &companyID,
	})

	// Assert
	require.NoError(t, err)
	report := response.(*commands.RunBatchResponse).Report
	assert.Equal(t, planning.TypeSingleCompany, report.Type)
	assert.Equal(t, 2, report.TripsOptimized)
	assert.Equal(t, 1, report.VehiclesUsed)
	assert.Equal(t, []string{"carrier-lyon"}, report.ParticipatingCompanies)
	assert.NotContains(t, report.CompanyResults, "carrier-paris")
}

func TestRunBatchHandler_CompanyIDImpliesSingleMode(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	seedTwoCarrierDay(t, db)
	clock := shared.NewMockClock(day.Add(2 * time.Hour))
	handler := newTestHandler(db, helpers.NewMockRoutingProvider(), clock)

	companyID := "carrier-paris"

	// Act
	response, err := handler.Handle(context.Background(), &commands.RunBatchCommand{Date: day, CompanyID: &companyID})

	// Assert
	require.NoError(t, err)
	report := response.(*commands.RunBatchResponse).Report
	assert.Equal(t, planning.TypeSingleCompany, report.Type)
	assert.Equal(t, 1, report.TripsOptimized)
}

func TestRunBatchHandler_SingleCompanyRequiresCompany(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	clock := shared.NewMockClock(day.Add(2 * time.Hour))
	handler := newTestHandler(db, helpers.NewMockRoutingProvider(), clock)

	// Act
	_, err := handler.Handle(context.Background(), &commands.RunBatchCommand{Date: day, Type: planning.TypeSingleCompany})

	// Assert
	require.Error(t, err)
	var validation *shared.ValidationError
	assert.ErrorAs(t, err, &validation)

	// No batch row is created for a rejected command
	batches, listErr := persistence.NewGormBatchRepository(db).FindRecent(context.Background(), 10)
	require.NoError(t, listErr)
	assert.Empty(t, batches)
}

func TestRunBatchHandler_ValidationFailureMarksBatchFailed(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	// The depot-less company poisons validation
	bare := &persistence.CompanyModel{ID: "carrier-bare", Name: "Sans Dépôt"}
	require.NoError(t, db.Create(bare).Error)
	helpers.SeedVehicles(t, db, helpers.CreateTestVehicle("veh-1", "carrier-bare", vehicle.CategoryIN2))
	helpers.SeedTrips(t, db,
		helpers.CreateTestTrip("trip-1", "carrier-bare", helpers.LyonDepot, helpers.ParisDepot, day, 8, 0, trip.CargoPalletizedGoods),
	)

	clock := shared.NewMockClock(day.Add(2 * time.Hour))
	handler := newTestHandler(db, helpers.NewMockRoutingProvider(), clock)

	// Act
	_, err := handler.Handle(context.Background(), &commands.RunBatchCommand{Date: day})

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no depot coordinates")

	batches, listErr := persistence.NewGormBatchRepository(db).FindRecent(context.Background(), 1)
	require.NoError(t, listErr)
	require.Len(t, batches, 1)
	assert.Equal(t, planning.BatchFailed, batches[0].Status)
	require.NotNil(t, batches[0].ErrorMessage)
	assert.Contains(t, *batches[0].ErrorMessage, "no depot coordinates")
}

func TestRunBatchHandler_FuelPriceOverride(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	seedTwoCarrierDay(t, db)
	clock := shared.NewMockClock(day.Add(2 * time.Hour))
	handler := newTestHandler(db, helpers.NewMockRoutingProvider(), clock)

	price := 2.0

	// Act
	response, err := handler.Handle(context.Background(), &commands.RunBatchCommand{Date: day, FuelPrice: &price})

	// Assert
	require.NoError(t, err)
	report := response.(*commands.RunBatchResponse).Report
	lyon := report.CompanyResults["carrier-lyon"]
	assert.InDelta(t, lyon.FuelSavedLiters*2.0, lyon.CostSaved, 0.001)
}

func TestRunBatchHandler_EmptyJournal(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	clock := shared.NewMockClock(day.Add(2 * time.Hour))
	handler := newTestHandler(db, helpers.NewMockRoutingProvider(), clock)

	// Act
	response, err := handler.Handle(context.Background(), &commands.RunBatchCommand{Date: day})

	// Assert
	require.NoError(t, err, "an empty day is a valid, empty plan")
	report := response.(*commands.RunBatchResponse).Report
	assert.Zero(t, report.TripsOptimized)
	assert.Zero(t, report.VehiclesUsed)
	assert.Empty(t, report.Assignments)

	batches, listErr := persistence.NewGormBatchRepository(db).FindRecent(context.Background(), 1)
	require.NoError(t, listErr)
	require.Len(t, batches, 1)
	assert.Equal(t, planning.BatchCompleted, batches[0].Status)
}
