package commands

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"github.com/mbendaoud/fretplan-go/internal/adapters/metrics"
	"github.com/mbendaoud/fretplan-go/internal/application/common"
	"github.com/mbendaoud/fretplan-go/internal/application/optimization/services"
	optimizationTypes "github.com/mbendaoud/fretplan-go/internal/application/optimization/types"
	"github.com/mbendaoud/fretplan-go/internal/domain/company"
	"github.com/mbendaoud/fretplan-go/internal/domain/planning"
	"github.com/mbendaoud/fretplan-go/internal/domain/shared"
	"github.com/mbendaoud/fretplan-go/internal/domain/trip"
	"github.com/mbendaoud/fretplan-go/internal/domain/vehicle"
)

// Type aliases for convenience
type RunBatchCommand = optimizationTypes.RunBatchCommand
type RunBatchResponse = optimizationTypes.RunBatchResponse

// RunBatchHandler executes one optimization batch end to end: load the
// journal, validate, resolve routing, solve per category group, apply the
// plan and attribute the savings. The batch entity tracks every phase so a
// crash leaves an inspectable state behind.
type RunBatchHandler struct {
	batches   planning.BatchRepository
	results   planning.CompanyResultRepository
	trips     trip.Repository
	vehicles  vehicle.Repository
	companies company.Repository

	validation *services.ValidationService
	backfill   *services.RouteBackfillService
	matrix     *services.MatrixService
	builder    *services.GroupBuilder
	solve      *services.SolveService
	applier    *services.PlanApplier
	kpi        *services.KPIService

	clock shared.Clock
}

// NewRunBatchHandler creates a new run batch handler
func NewRunBatchHandler(
	batches planning.BatchRepository,
	results planning.CompanyResultRepository,
	trips trip.Repository,
	vehicles vehicle.Repository,
	companies company.Repository,
	validation *services.ValidationService,
	backfill *services.RouteBackfillService,
	matrix *services.MatrixService,
	builder *services.GroupBuilder,
	solve *services.SolveService,
	applier *services.PlanApplier,
	kpi *services.KPIService,
	clock shared.Clock,
) *RunBatchHandler {
	return &RunBatchHandler{
		batches:    batches,
		results:    results,
		trips:      trips,
		vehicles:   vehicles,
		companies:  companies,
		validation: validation,
		backfill:   backfill,
		matrix:     matrix,
		builder:    builder,
		solve:      solve,
		applier:    applier,
		kpi:        kpi,
		clock:      clock,
	}
}

// Handle executes the run batch command
func (h *RunBatchHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*RunBatchCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	logger := common.LoggerFromContext(ctx)

	batchType := cmd.Type
	if batchType == "" {
		batchType = planning.TypeCrossCompany
		if cmd.CompanyID != nil {
			batchType = planning.TypeSingleCompany
		}
	}
	if batchType == planning.TypeSingleCompany && cmd.CompanyID == nil {
		return nil, shared.NewValidationError("company_id", "single-company batches require a company")
	}

	dayStart := cmd.Date.UTC().Truncate(24 * time.Hour)
	batch := planning.NewBatch(uuid.New().String(), dayStart, batchType, h.clock.Now())
	if err := h.batches.Create(ctx, batch); err != nil {
		return nil, fmt.Errorf("create batch: %w", err)
	}
	if err := batch.Start(); err != nil {
		return nil, err
	}
	if err := h.batches.Update(ctx, batch); err != nil {
		return nil, fmt.Errorf("start batch: %w", err)
	}

	logger.Log("INFO", fmt.Sprintf("Batch %s started for %s (%s)", batch.ID, dayStart.Format("2006-01-02"), batchType), map[string]interface{}{
		"batch_id": batch.ID,
		"date":     dayStart.Format("2006-01-02"),
		"type":     string(batchType),
	})

	report, err := h.runPipeline(ctx, cmd, batch, dayStart, batchType)
	if err != nil {
		return nil, h.failBatch(ctx, batch, err)
	}

	if err := batch.Complete(h.clock.Now()); err != nil {
		return nil, h.failBatch(ctx, batch, err)
	}
	if err := h.batches.Update(ctx, batch); err != nil {
		return nil, fmt.Errorf("complete batch: %w", err)
	}

	metrics.RecordBatchCompletion(string(batchType), string(batch.Status), batch.SolverTimeSeconds, batch.TotalTrips, len(report.Unassigned))
	logger.Log("INFO", fmt.Sprintf("Batch %s completed: %d trips on %d vehicles, %.1f km saved", batch.ID, report.TripsOptimized, report.VehiclesUsed, report.Totals.KmSaved), map[string]interface{}{
		"batch_id":      batch.ID,
		"trips":         report.TripsOptimized,
		"vehicles_used": report.VehiclesUsed,
		"km_saved":      report.Totals.KmSaved,
		"solver_status": batch.SolverStatus,
	})

	return &RunBatchResponse{Report: report}, nil
}

// runPipeline carries the batch through the optimization phases, mutating the
// batch entity as results arrive.
func (h *RunBatchHandler) runPipeline(
	ctx context.Context,
	cmd *RunBatchCommand,
	batch *planning.OptimizationBatch,
	dayStart time.Time,
	batchType planning.BatchType,
) (*planning.BatchReport, error) {
	plannedTrips, err := h.trips.FindPlannedForDate(ctx, dayStart, cmd.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("load trips: %w", err)
	}
	fleet, err := h.vehicles.FindAvailable(ctx, cmd.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("load vehicles: %w", err)
	}

	companyIDs := lo.Uniq(append(
		lo.Map(plannedTrips, func(t *trip.Trip, _ int) string { return t.CompanyID }),
		lo.Map(fleet, func(v *vehicle.Vehicle, _ int) string { return v.CompanyID })...,
	))
	carriers, err := h.companies.FindByIDs(ctx, companyIDs)
	if err != nil {
		return nil, fmt.Errorf("load companies: %w", err)
	}

	batch.TotalTrips = len(plannedTrips)
	participating := lo.Uniq(lo.Map(plannedTrips, func(t *trip.Trip, _ int) string { return t.CompanyID }))
	sort.Strings(participating)
	batch.ParticipatingCompanies = participating

	if _, err := h.validation.ValidateBatchInput(ctx, plannedTrips, fleet, carriers); err != nil {
		return nil, err
	}

	if _, err := h.backfill.Backfill(ctx, plannedTrips); err != nil {
		return nil, err
	}

	arena := h.builder.BuildArena(plannedTrips, fleet, carriers)
	solverMatrix, matrixResult, err := h.matrix.Build(ctx, arena)
	if err != nil {
		return nil, err
	}

	groups, degenerate := h.builder.BuildGroups(ctx, dayStart, plannedTrips, fleet, carriers, arena, solverMatrix)

	solveStart := h.clock.Now()
	solutions, err := h.solve.SolveAll(ctx, batchType, groups)
	if err != nil {
		return nil, err
	}
	batch.SolverTimeSeconds = h.clock.Now().Sub(solveStart).Seconds()
	batch.SolverStatus = services.AggregateStatus(solutions)

	applied, err := h.applier.Apply(ctx, batch.ID, dayStart, groups, solutions)
	if err != nil {
		return nil, err
	}
	batch.VehiclesUsed = applied.VehiclesUsed

	kpi := h.kpi
	if cmd.FuelPrice != nil {
		kpi = kpi.WithFuelPrice(*cmd.FuelPrice)
	}
	companyResults := kpi.Compute(ctx, batch.ID, groups, solutions)
	if err := h.results.SaveAll(ctx, companyResults); err != nil {
		return nil, fmt.Errorf("save company results: %w", err)
	}

	totals := kpi.Totals(companyResults)
	batch.KmSaved = totals.KmSaved
	batch.FuelSavedLiters = totals.FuelSavedLiters

	report := &planning.BatchReport{
		BatchID:                batch.ID,
		Date:                   dayStart.Format("2006-01-02"),
		Type:                   batchType,
		TripsOptimized:         len(applied.Assignments),
		VehiclesUsed:           applied.VehiclesUsed,
		ParticipatingCompanies: participating,
		Totals:                 totals,
		Assignments:            applied.Assignments,
		Unassigned:             append(degenerate, applied.Unassigned...),
		CompanyResults:         make(map[string]planning.CompanyResult, len(companyResults)),
		Valhalla:               make(map[string]planning.RoutingDiagnostics, len(groups)),
	}
	for _, r := range companyResults {
		report.CompanyResults[r.CompanyID] = *r
	}
	for gi, group := range groups {
		diag := planning.RoutingDiagnostics{
			MatrixOK:     matrixResult.OK,
			FallbackUsed: matrixResult.FallbackUsed,
			Locations:    arena.Len(),
		}
		if solutions[gi] != nil && solutions[gi].Fallback {
			diag.SolverFallback = true
		}
		report.Valhalla[string(group.Category)] = diag
	}

	return report, nil
}

// failBatch stamps the failure on the batch before surfacing the error
func (h *RunBatchHandler) failBatch(ctx context.Context, batch *planning.OptimizationBatch, cause error) error {
	logger := common.LoggerFromContext(ctx)

	message := cause.Error()
	var cancelled *shared.BatchCancelledError
	if errors.As(cause, &cancelled) {
		message = "cancelled"
	}

	err := cause
	if failErr := batch.Fail(h.clock.Now(), message); failErr != nil {
		err = multierr.Append(err, failErr)
	} else if updateErr := h.batches.Update(context.WithoutCancel(ctx), batch); updateErr != nil {
		err = multierr.Append(err, fmt.Errorf("record batch failure: %w", updateErr))
	}

	metrics.RecordBatchCompletion(string(batch.Type), string(planning.BatchFailed), batch.SolverTimeSeconds, batch.TotalTrips, 0)
	logger.Log("ERROR", fmt.Sprintf("Batch %s failed: %s", batch.ID, message), map[string]interface{}{
		"batch_id": batch.ID,
		"error":    message,
	})
	return err
}
