package queries

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/mbendaoud/fretplan-go/internal/application/common"
	optimizationTypes "github.com/mbendaoud/fretplan-go/internal/application/optimization/types"
	"github.com/mbendaoud/fretplan-go/internal/domain/planning"
	"github.com/mbendaoud/fretplan-go/internal/domain/trip"
	"github.com/mbendaoud/fretplan-go/internal/domain/vehicle"
)

// Type aliases for convenience
type GetBatchReportQuery = optimizationTypes.GetBatchReportQuery
type GetBatchReportResponse = optimizationTypes.GetBatchReportResponse

// GetBatchReportHandler rebuilds a batch report from the persisted journal.
// Routing diagnostics are run-time only and come back empty here.
type GetBatchReportHandler struct {
	batches  planning.BatchRepository
	results  planning.CompanyResultRepository
	trips    trip.Repository
	vehicles vehicle.Repository
}

// NewGetBatchReportHandler creates a new get batch report handler
func NewGetBatchReportHandler(
	batches planning.BatchRepository,
	results planning.CompanyResultRepository,
	trips trip.Repository,
	vehicles vehicle.Repository,
) *GetBatchReportHandler {
	return &GetBatchReportHandler{batches: batches, results: results, trips: trips, vehicles: vehicles}
}

// Handle executes the get batch report query
func (h *GetBatchReportHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetBatchReportQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	batch, err := h.batches.FindByID(ctx, query.BatchID)
	if err != nil {
		return nil, fmt.Errorf("load batch %s: %w", query.BatchID, err)
	}

	batchTrips, err := h.trips.FindByBatchID(ctx, batch.ID)
	if err != nil {
		return nil, fmt.Errorf("load batch trips: %w", err)
	}

	companyResults, err := h.results.FindByBatchID(ctx, batch.ID)
	if err != nil {
		return nil, fmt.Errorf("load company results: %w", err)
	}

	assignedVehicleIDs := lo.Uniq(lo.FilterMap(batchTrips, func(t *trip.Trip, _ int) (string, bool) {
		if t.AssignedVehicleID == nil {
			return "", false
		}
		return *t.AssignedVehicleID, true
	}))
	fleet, err := h.vehicles.FindByIDs(ctx, assignedVehicleIDs)
	if err != nil {
		return nil, fmt.Errorf("load vehicles: %w", err)
	}

	report := &planning.BatchReport{
		BatchID:                batch.ID,
		Date:                   batch.BatchDate.Format("2006-01-02"),
		Type:                   batch.Type,
		VehiclesUsed:           batch.VehiclesUsed,
		ParticipatingCompanies: batch.ParticipatingCompanies,
		CompanyResults:         make(map[string]planning.CompanyResult, len(companyResults)),
		Valhalla:               map[string]planning.RoutingDiagnostics{},
	}
	if batch.ErrorMessage != nil {
		report.Error = *batch.ErrorMessage
	}

	for _, r := range companyResults {
		report.CompanyResults[r.CompanyID] = *r
		report.Totals.KmSaved += r.KmSaved
		report.Totals.FuelSavedLiters += r.FuelSavedLiters
		report.Totals.CO2SavedKg += r.CO2SavedKg
		report.Totals.CostSaved += r.CostSaved
	}

	for _, t := range batchTrips {
		if !t.IsAssigned() {
			report.Unassigned = append(report.Unassigned, planning.UnassignedEntry{
				TripID: t.ID,
				Reason: planning.ReasonNotAssigned,
			})
			continue
		}

		entry := planning.AssignmentEntry{
			TripID:            t.ID,
			AssignedVehicleID: *t.AssignedVehicleID,
			OriginalCompanyID: t.CompanyID,
			AssignedCompanyID: t.CompanyID,
			IsLastInChain:     t.IsLastInChain,
		}
		if v, ok := fleet[*t.AssignedVehicleID]; ok {
			entry.AssignedCompanyID = v.CompanyID
		}
		if t.SequenceOrder != nil {
			entry.SequenceOrder = *t.SequenceOrder
		}
		if t.EstimatedArrival != nil {
			start := t.EstimatedArrival.Add(-time.Duration(t.DurationMinutes(0)) * time.Minute)
			entry.StartTimeISO = start.UTC().Format(time.RFC3339)
		}
		report.Assignments = append(report.Assignments, entry)
		report.TripsOptimized++
	}

	sort.Slice(report.Assignments, func(i, j int) bool {
		ai, aj := report.Assignments[i], report.Assignments[j]
		if ai.AssignedVehicleID != aj.AssignedVehicleID {
			return ai.AssignedVehicleID < aj.AssignedVehicleID
		}
		return ai.SequenceOrder < aj.SequenceOrder
	})

	return &GetBatchReportResponse{Report: report}, nil
}
