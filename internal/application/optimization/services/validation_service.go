package services

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/mbendaoud/fretplan-go/internal/application/common"
	"github.com/mbendaoud/fretplan-go/internal/domain/company"
	"github.com/mbendaoud/fretplan-go/internal/domain/shared"
	"github.com/mbendaoud/fretplan-go/internal/domain/trip"
	"github.com/mbendaoud/fretplan-go/internal/domain/vehicle"
)

// ValidationService checks batch input integrity before any solver work.
// All hard violations are collected and returned together so operators can
// fix a journal in one pass; soft findings come back as warnings and the
// trips stay in the plan.
type ValidationService struct{}

// NewValidationService creates a new validation service
func NewValidationService() *ValidationService {
	return &ValidationService{}
}

// ValidateBatchInput verifies referential integrity and data sanity.
func (s *ValidationService) ValidateBatchInput(
	ctx context.Context,
	trips []*trip.Trip,
	vehicles []*vehicle.Vehicle,
	companies map[string]*company.Company,
) ([]string, error) {
	logger := common.LoggerFromContext(ctx)
	var warnings []string
	var errs error

	seenTrips := make(map[string]bool, len(trips))
	for _, t := range trips {
		if seenTrips[t.ID] {
			errs = multierr.Append(errs, shared.NewValidationError("trip_id", fmt.Sprintf("duplicate trip id %s", t.ID)))
			continue
		}
		seenTrips[t.ID] = true

		if _, ok := companies[t.CompanyID]; !ok {
			errs = multierr.Append(errs, shared.NewValidationError("company_id", fmt.Sprintf("trip %s references unknown company %s", t.ID, t.CompanyID)))
		}
		if t.WeightKg < 0 {
			errs = multierr.Append(errs, shared.NewValidationError("weight_kg", fmt.Sprintf("trip %s has negative weight", t.ID)))
		}
		if !t.PlannedArrivalTime.After(t.DepartureTime) {
			warnings = append(warnings, fmt.Sprintf("trip %s: planned arrival is not after departure, window collapses to the departure time", t.ID))
		}
	}

	seenVehicles := make(map[string]bool, len(vehicles))
	for _, v := range vehicles {
		if seenVehicles[v.ID] {
			errs = multierr.Append(errs, shared.NewValidationError("vehicle_id", fmt.Sprintf("duplicate vehicle id %s", v.ID)))
			continue
		}
		seenVehicles[v.ID] = true

		if _, ok := companies[v.CompanyID]; !ok && v.Depot == nil {
			warnings = append(warnings, fmt.Sprintf("vehicle %s: unknown company %s and no own depot, vehicle will be excluded", v.ID, v.CompanyID))
		}
	}

	for id, c := range companies {
		if c.Depot == nil {
			errs = multierr.Append(errs, shared.NewValidationError("depot", fmt.Sprintf("company %s has no depot coordinates", id)))
		}
	}

	for _, w := range warnings {
		logger.Log("WARN", w, nil)
	}
	return warnings, errs
}
