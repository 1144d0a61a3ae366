package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/mbendaoud/fretplan-go/internal/application/common"
	"github.com/mbendaoud/fretplan-go/internal/domain/planning"
	"github.com/mbendaoud/fretplan-go/internal/domain/solver"
)

// KPISettings holds the conversion factors for savings attribution
type KPISettings struct {
	FuelPerKm         float64 // liters of diesel per km
	CO2PerLiter       float64 // kg CO2 per liter burned
	FuelPricePerLiter float64
}

// KPIService attributes the batch savings to each participating company.
// Baseline: every assigned trip drives its own route and returns to its
// company depot. Optimized: routes stay, but only chain-closing returns are
// driven, and the vehicle's owner bears them.
type KPIService struct {
	settings KPISettings
}

// NewKPIService creates a new KPI service
func NewKPIService(settings KPISettings) *KPIService {
	return &KPIService{settings: settings}
}

// WithFuelPrice returns a copy of the service valuing savings at the given
// diesel price, for per-run overrides.
func (s *KPIService) WithFuelPrice(price float64) *KPIService {
	clone := *s
	clone.settings.FuelPricePerLiter = price
	return &clone
}

// Compute builds one result per company that contributed trips or vehicles to
// the batch. Solutions are parallel to groups.
func (s *KPIService) Compute(ctx context.Context, batchID string, groups []*Group, solutions []*solver.Solution) []*planning.CompanyResult {
	logger := common.LoggerFromContext(ctx)

	results := make(map[string]*planning.CompanyResult)
	resultFor := func(companyID string) *planning.CompanyResult {
		if r, ok := results[companyID]; ok {
			return r
		}
		r := &planning.CompanyResult{BatchID: batchID, CompanyID: companyID}
		results[companyID] = r
		return r
	}

	baseline := make(map[string]float64)
	optimized := make(map[string]float64)
	// vehiclesOf: trip company to serving vehicles; ownedUsed: vehicle owner
	// to vehicles with work; ownedShared: owner to vehicles serving others
	vehiclesOf := make(map[string]map[string]bool)
	ownedUsed := make(map[string]map[string]bool)
	ownedShared := make(map[string]map[string]bool)

	for gi, group := range groups {
		sol := solutions[gi]
		if sol == nil {
			continue
		}

		for _, t := range group.Trips {
			resultFor(t.CompanyID).TripsContributed++
		}

		for _, asg := range sol.Assignments {
			t := group.Trips[asg.TripIdx]
			st := group.Input.Trips[asg.TripIdx]
			v := group.Input.Vehicles[asg.VehicleIdx]

			r := resultFor(t.CompanyID)
			r.TripsAssigned++

			routeKm := 0.0
			if t.RouteDistanceKm != nil {
				routeKm = *t.RouteDistanceKm
			}
			baseline[t.CompanyID] += routeKm + st.ReturnEstimateKm
			optimized[t.CompanyID] += routeKm

			if asg.IsLast {
				// The vehicle's owner drives and pays the closing return
				returnKm := group.Input.Matrix.DistKm[st.Destination][v.Depot]
				optimized[v.CompanyID] += returnKm
			}

			// Vehicle owners get a result row even when they contributed no trips
			resultFor(v.CompanyID)

			if vehiclesOf[t.CompanyID] == nil {
				vehiclesOf[t.CompanyID] = make(map[string]bool)
			}
			vehiclesOf[t.CompanyID][v.ID] = true
			if ownedUsed[v.CompanyID] == nil {
				ownedUsed[v.CompanyID] = make(map[string]bool)
			}
			ownedUsed[v.CompanyID][v.ID] = true
			if v.CompanyID != t.CompanyID {
				if ownedShared[v.CompanyID] == nil {
					ownedShared[v.CompanyID] = make(map[string]bool)
				}
				ownedShared[v.CompanyID][v.ID] = true
			}
		}
	}

	for companyID, r := range results {
		delta := baseline[companyID] - optimized[companyID]
		r.RawKmDelta = delta
		if delta > 0 {
			r.KmSaved = delta
		}
		r.FuelSavedLiters = r.KmSaved * s.settings.FuelPerKm
		r.CO2SavedKg = r.FuelSavedLiters * s.settings.CO2PerLiter
		r.CostSaved = r.FuelSavedLiters * s.settings.FuelPricePerLiter

		r.VehiclesUsed = len(ownedUsed[companyID])
		r.VehiclesSharedOut = len(ownedShared[companyID])
		for vehicleID := range vehiclesOf[companyID] {
			if !ownedUsed[companyID][vehicleID] {
				r.VehiclesBorrowed++
			}
		}

		if delta < 0 {
			logger.Log("WARN", fmt.Sprintf("Company %s came out %.1f km worse than baseline, savings clipped to zero", companyID, -delta), map[string]interface{}{
				"company_id":   companyID,
				"raw_km_delta": delta,
			})
		}
	}

	out := lo.Values(results)
	sort.Slice(out, func(i, j int) bool { return out[i].CompanyID < out[j].CompanyID })
	return out
}

// Totals sums company results into the batch-level aggregate
func (s *KPIService) Totals(results []*planning.CompanyResult) planning.ReportTotals {
	var totals planning.ReportTotals
	for _, r := range results {
		totals.KmSaved += r.KmSaved
		totals.FuelSavedLiters += r.FuelSavedLiters
		totals.CO2SavedKg += r.CO2SavedKg
		totals.CostSaved += r.CostSaved
	}
	return totals
}
