package steps

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	"github.com/mbendaoud/fretplan-go/internal/domain/planning"
	"github.com/mbendaoud/fretplan-go/internal/domain/trip"
	"github.com/mbendaoud/fretplan-go/internal/domain/vehicle"
)

type cargoCompatibilityContext struct {
	trip     *trip.Trip
	category vehicle.Category
}

func (cc *cargoCompatibilityContext) reset() {
	cc.trip = nil
	cc.category = ""
}

// Given steps

func (cc *cargoCompatibilityContext) aTripCarryingThatRequiresCategory(cargo, category string) error {
	cc.trip = &trip.Trip{
		ID:                      "trip-bdd",
		CompanyID:               "carrier-bdd",
		CargoCategory:           trip.CargoCategory(cargo),
		RequiredVehicleCategory: vehicle.Category(category),
	}
	return nil
}

// When steps

func (cc *cargoCompatibilityContext) iDeriveTheVehicleCategoryForCargo(cargo string) error {
	cc.category = planning.RequiredCategory(trip.CargoCategory(cargo))
	return nil
}

func (cc *cargoCompatibilityContext) iResolveTheCategoryForTheTrip() error {
	if cc.trip == nil {
		return fmt.Errorf("no trip available")
	}
	cc.category = planning.RequiredCategoryFor(cc.trip)
	return nil
}

// Then steps

func (cc *cargoCompatibilityContext) theRequiredCategoryShouldBe(expected string) error {
	if string(cc.category) != expected {
		return fmt.Errorf("expected category %q, got %q", expected, cc.category)
	}
	return nil
}

func InitializeCargoCompatibilityScenario(sc *godog.ScenarioContext) {
	cc := &cargoCompatibilityContext{}

	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		cc.reset()
		return ctx, nil
	})

	// Given steps
	sc.Step(`^a trip carrying "([^"]*)" that requires category "([^"]*)"$`, cc.aTripCarryingThatRequiresCategory)

	// When steps
	sc.Step(`^I derive the vehicle category for cargo "([^"]*)"$`, cc.iDeriveTheVehicleCategoryForCargo)
	sc.Step(`^I resolve the category for the trip$`, cc.iResolveTheCategoryForTheTrip)

	// Then steps
	sc.Step(`^the required category should be "([^"]*)"$`, cc.theRequiredCategoryShouldBe)
}
