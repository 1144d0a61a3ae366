package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/cucumber/godog"
	"gorm.io/gorm"

	"github.com/mbendaoud/fretplan-go/internal/adapters/persistence"
	"github.com/mbendaoud/fretplan-go/internal/application/optimization/commands"
	"github.com/mbendaoud/fretplan-go/internal/application/optimization/services"
	"github.com/mbendaoud/fretplan-go/internal/domain/planning"
	"github.com/mbendaoud/fretplan-go/internal/domain/shared"
	"github.com/mbendaoud/fretplan-go/internal/domain/trip"
	"github.com/mbendaoud/fretplan-go/internal/domain/vehicle"
	"github.com/mbendaoud/fretplan-go/internal/infrastructure/database"
	"github.com/mbendaoud/fretplan-go/test/helpers"
)

// knownPlaces resolves the place names used in feature tables
var knownPlaces = map[string]shared.GeoPoint{
	"Lyon":      helpers.LyonDepot,
	"Paris":     helpers.ParisDepot,
	"Marseille": helpers.MarseilleDepot,
	"Grenoble":  helpers.GrenoblePoint,
	"Dijon":     helpers.DijonPoint,
}

type nightlyBatchContext struct {
	db     *gorm.DB
	day    time.Time
	report *planning.BatchReport
	runErr error
}

func (nc *nightlyBatchContext) reset() error {
	if nc.db != nil {
		database.Close(nc.db)
	}
	db, err := database.NewTestConnection()
	if err != nil {
		return fmt.Errorf("create test database: %w", err)
	}
	nc.db = db
	nc.day = time.Time{}
	nc.report = nil
	nc.runErr = nil
	return nil
}

func (nc *nightlyBatchContext) place(name string) (shared.GeoPoint, error) {
	point, ok := knownPlaces[name]
	if !ok {
		return shared.GeoPoint{}, fmt.Errorf("unknown place %q in feature table", name)
	}
	return point, nil
}

// Given steps

func (nc *nightlyBatchContext) theFollowingCompanies(table *godog.Table) error {
	repo := persistence.NewGormCompanyRepository(nc.db)
	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header row
		}
		depot, err := nc.place(row.Cells[2].Value)
		if err != nil {
			return err
		}
		carrier := helpers.CreateTestCompany(row.Cells[0].Value, row.Cells[1].Value, depot)
		if err := repo.Save(context.Background(), carrier); err != nil {
			return fmt.Errorf("save company %s: %w", carrier.ID, err)
		}
	}
	return nil
}

func (nc *nightlyBatchContext) theFollowingVehicles(table *godog.Table) error {
	repo := persistence.NewGormVehicleRepository(nc.db)
	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header row
		}
		veh := helpers.CreateTestVehicle(row.Cells[0].Value, row.Cells[1].Value, vehicle.Category(row.Cells[2].Value))
		if err := repo.Save(context.Background(), veh); err != nil {
			return fmt.Errorf("save vehicle %s: %w", veh.ID, err)
		}
	}
	return nil
}

func (nc *nightlyBatchContext) theFollowingPlannedTripsFor(date string, table *godog.Table) error {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return fmt.Errorf("invalid batch date %q: %w", date, err)
	}
	nc.day = day.UTC()

	repo := persistence.NewGormTripRepository(nc.db)
	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header row
		}
		origin, err := nc.place(row.Cells[2].Value)
		if err != nil {
			return err
		}
		destination, err := nc.place(row.Cells[3].Value)
		if err != nil {
			return err
		}
		departs, err := time.Parse("15:04", row.Cells[4].Value)
		if err != nil {
			return fmt.Errorf("invalid departure %q: %w", row.Cells[4].Value, err)
		}

		tr := helpers.CreateTestTrip(
			row.Cells[0].Value, row.Cells[1].Value,
			origin, destination,
			nc.day, departs.Hour(), departs.Minute(),
			trip.CargoCategory(row.Cells[5].Value),
		)
		if err := repo.Save(context.Background(), tr); err != nil {
			return fmt.Errorf("save trip %s: %w", tr.ID, err)
		}
	}
	return nil
}

// When steps

func (nc *nightlyBatchContext) runBatch(cmd *commands.RunBatchCommand) error {
	if nc.day.IsZero() {
		return fmt.Errorf("no planned trips staged")
	}

	tripRepo := persistence.NewGormTripRepository(nc.db)
	provider := helpers.NewMockRoutingProvider()
	clock := shared.NewMockClock(nc.day.Add(2 * time.Hour))

	handler := commands.NewRunBatchHandler(
		persistence.NewGormBatchRepository(nc.db),
		persistence.NewGormCompanyResultRepository(nc.db),
		tripRepo,
		persistence.NewGormVehicleRepository(nc.db),
		persistence.NewGormCompanyRepository(nc.db),
		services.NewValidationService(),
		services.NewRouteBackfillService(provider),
		services.NewMatrixService(provider),
		services.NewGroupBuilder(30),
		services.NewSolveService(services.SolveSettings{Budget: 5 * time.Second, SingleBudget: 2 * time.Second, MaxWorkers: 1}, clock),
		services.NewPlanApplier(tripRepo),
		services.NewKPIService(services.KPISettings{FuelPerKm: 0.30, CO2PerLiter: 2.68, FuelPricePerLiter: 1.50}),
		clock,
	)

	response, err := handler.Handle(context.Background(), cmd)
	nc.runErr = err
	if err == nil {
		nc.report = response.(*commands.RunBatchResponse).Report
	}
	return nil
}

func (nc *nightlyBatchContext) theCrossCompanyBatchRuns() error {
	return nc.runBatch(&commands.RunBatchCommand{Date: nc.day})
}

func (nc *nightlyBatchContext) theSingleCompanyBatchRunsFor(companyID string) error {
	return nc.runBatch(&commands.RunBatchCommand{Date: nc.day, Type: planning.TypeSingleCompany, CompanyID: &companyID})
}

// Then steps

func (nc *nightlyBatchContext) theBatchShouldCompleteWith(trips, vehicles int) error {
	if nc.runErr != nil {
		return fmt.Errorf("expected batch to complete, got error: %v", nc.runErr)
	}
	if nc.report == nil {
		return fmt.Errorf("no batch report available")
	}
	if nc.report.TripsOptimized != trips {
		return fmt.Errorf("expected %d optimized trips, got %d", trips, nc.report.TripsOptimized)
	}
	if nc.report.VehiclesUsed != vehicles {
		return fmt.Errorf("expected %d vehicles used, got %d", vehicles, nc.report.VehiclesUsed)
	}
	return nil
}

func (nc *nightlyBatchContext) persistedTrip(tripID string) (*trip.Trip, error) {
	if nc.report == nil {
		return nil, fmt.Errorf("no batch report available")
	}
	trips, err := persistence.NewGormTripRepository(nc.db).FindByBatchID(context.Background(), nc.report.BatchID)
	if err != nil {
		return nil, err
	}
	for _, tr := range trips {
		if tr.ID == tripID {
			return tr, nil
		}
	}
	return nil, fmt.Errorf("trip %s not bound to batch %s", tripID, nc.report.BatchID)
}

func (nc *nightlyBatchContext) tripShouldFollowTripOnTheSameVehicle(secondID, firstID string) error {
	first, err := nc.persistedTrip(firstID)
	if err != nil {
		return err
	}
	second, err := nc.persistedTrip(secondID)
	if err != nil {
		return err
	}
	if !first.IsAssigned() || !second.IsAssigned() {
		return fmt.Errorf("expected both trips assigned, got %v and %v", first.AssignedVehicleID, second.AssignedVehicleID)
	}
	if *first.AssignedVehicleID != *second.AssignedVehicleID {
		return fmt.Errorf("expected one vehicle, got %s and %s", *first.AssignedVehicleID, *second.AssignedVehicleID)
	}
	if first.SequenceOrder == nil || second.SequenceOrder == nil {
		return fmt.Errorf("expected sequence orders on both trips")
	}
	if *second.SequenceOrder != *first.SequenceOrder+1 {
		return fmt.Errorf("expected %s right after %s, got sequences %d and %d", secondID, firstID, *first.SequenceOrder, *second.SequenceOrder)
	}
	return nil
}

func (nc *nightlyBatchContext) tripShouldBeServedByVehicle(tripID, vehicleID string) error {
	tr, err := nc.persistedTrip(tripID)
	if err != nil {
		return err
	}
	if !tr.IsAssigned() {
		return fmt.Errorf("expected trip %s to be assigned", tripID)
	}
	if *tr.AssignedVehicleID != vehicleID {
		return fmt.Errorf("expected trip %s on vehicle %s, got %s", tripID, vehicleID, *tr.AssignedVehicleID)
	}
	return nil
}

func (nc *nightlyBatchContext) companyShouldSaveKilometres(companyID string) error {
	result, ok := nc.report.CompanyResults[companyID]
	if !ok {
		return fmt.Errorf("no result for company %s", companyID)
	}
	if result.KmSaved <= 0 {
		return fmt.Errorf("expected company %s to save kilometres, got %.2f", companyID, result.KmSaved)
	}
	return nil
}

func (nc *nightlyBatchContext) companyShouldBorrowVehicles(companyID string, count int) error {
	result, ok := nc.report.CompanyResults[companyID]
	if !ok {
		return fmt.Errorf("no result for company %s", companyID)
	}
	if result.VehiclesBorrowed != count {
		return fmt.Errorf("expected company %s to borrow %d vehicles, got %d", companyID, count, result.VehiclesBorrowed)
	}
	return nil
}

func (nc *nightlyBatchContext) companyShouldShareOutVehicles(companyID string, count int) error {
	result, ok := nc.report.CompanyResults[companyID]
	if !ok {
		return fmt.Errorf("no result for company %s", companyID)
	}
	if result.VehiclesSharedOut != count {
		return fmt.Errorf("expected company %s to share out %d vehicles, got %d", companyID, count, result.VehiclesSharedOut)
	}
	return nil
}

func (nc *nightlyBatchContext) tripShouldBeUnassignedWithReason(tripID, reason string) error {
	if nc.report == nil {
		return fmt.Errorf("no batch report available")
	}
	for _, entry := range nc.report.Unassigned {
		if entry.TripID == tripID {
			if entry.Reason != reason {
				return fmt.Errorf("expected reason %q for trip %s, got %q", reason, tripID, entry.Reason)
			}
			return nil
		}
	}
	return fmt.Errorf("trip %s not reported unassigned", tripID)
}

func InitializeNightlyBatchScenario(sc *godog.ScenarioContext) {
	nc := &nightlyBatchContext{}

	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, nc.reset()
	})
	sc.After(func(ctx context.Context, _ *godog.Scenario, _ error) (context.Context, error) {
		if nc.db != nil {
			database.Close(nc.db)
			nc.db = nil
		}
		return ctx, nil
	})

	// Given steps
	sc.Step(`^the following companies:$`, nc.theFollowingCompanies)
	sc.Step(`^the following vehicles:$`, nc.theFollowingVehicles)
	sc.Step(`^the following planned trips for "([^"]*)":$`, nc.theFollowingPlannedTripsFor)

	// When steps
	sc.Step(`^the cross-company batch runs$`, nc.theCrossCompanyBatchRuns)
	sc.Step(`^the single-company batch runs for "([^"]*)"$`, nc.theSingleCompanyBatchRunsFor)

	// Then steps
	sc.Step(`^the batch should complete with (\d+) trips? on (\d+) vehicles?$`, nc.theBatchShouldCompleteWith)
	sc.Step(`^trip "([^"]*)" should follow trip "([^"]*)" on the same vehicle$`, nc.tripShouldFollowTripOnTheSameVehicle)
	sc.Step(`^trip "([^"]*)" should be served by vehicle "([^"]*)"$`, nc.tripShouldBeServedByVehicle)
	sc.Step(`^company "([^"]*)" should save kilometres$`, nc.companyShouldSaveKilometres)
	sc.Step(`^company "([^"]*)" should borrow (\d+) vehicles?$`, nc.companyShouldBorrowVehicles)
	sc.Step(`^company "([^"]*)" should share out (\d+) vehicles?$`, nc.companyShouldShareOutVehicles)
	sc.Step(`^trip "([^"]*)" should be unassigned with reason "([^"]*)"$`, nc.tripShouldBeUnassignedWithReason)
}
