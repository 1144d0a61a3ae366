package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mbendaoud/fretplan-go/internal/application/common"
	"github.com/mbendaoud/fretplan-go/internal/domain/planning"
	"github.com/mbendaoud/fretplan-go/internal/domain/solver"
	"github.com/mbendaoud/fretplan-go/internal/domain/trip"
)

// PlanApplier writes a solved day plan back onto the trip entities and
// persists them. Applying the same solution twice leaves the journal in the
// same state: every optimization field is overwritten, none accumulated.
type PlanApplier struct {
	trips trip.Repository
}

// NewPlanApplier creates a new plan applier
func NewPlanApplier(trips trip.Repository) *PlanApplier {
	return &PlanApplier{trips: trips}
}

// AppliedPlan summarizes what the applier persisted
type AppliedPlan struct {
	Assignments  []planning.AssignmentEntry
	Unassigned   []planning.UnassignedEntry
	VehiclesUsed int
}

// Apply binds solver assignments to trips, stamps estimated arrivals and
// persists the batch. Solutions are parallel to groups.
func (a *PlanApplier) Apply(
	ctx context.Context,
	batchID string,
	dayStart time.Time,
	groups []*Group,
	solutions []*solver.Solution,
) (*AppliedPlan, error) {
	logger := common.LoggerFromContext(ctx)
	plan := &AppliedPlan{}

	var dirty []*trip.Trip
	for gi, group := range groups {
		sol := solutions[gi]
		if sol == nil {
			continue
		}
		plan.VehiclesUsed += sol.VehiclesUsed

		for _, asg := range sol.Assignments {
			t := group.Trips[asg.TripIdx]
			v := group.Vehicles[asg.VehicleIdx]

			vehicleID := v.ID
			seq := asg.SequenceOrder
			batch := batchID
			start := dayStart.Add(time.Duration(asg.StartMin) * time.Minute)
			arrival := start.Add(time.Duration(group.Input.Trips[asg.TripIdx].DurationMin) * time.Minute)

			t.AssignedVehicleID = &vehicleID
			t.SequenceOrder = &seq
			t.IsLastInChain = asg.IsLast
			t.OptimizationBatchID = &batch
			t.OptimizationStatus = trip.OptimizationAssigned
			t.EstimatedArrival = &arrival
			dirty = append(dirty, t)

			plan.Assignments = append(plan.Assignments, planning.AssignmentEntry{
				TripID:            t.ID,
				AssignedVehicleID: v.ID,
				OriginalCompanyID: t.CompanyID,
				AssignedCompanyID: v.CompanyID,
				SequenceOrder:     asg.SequenceOrder,
				IsLastInChain:     asg.IsLast,
				StartTimeISO:      start.UTC().Format(time.RFC3339),
			})
		}

		for _, tripIdx := range sol.Unassigned {
			t := group.Trips[tripIdx]
			batch := batchID
			t.AssignedVehicleID = nil
			t.SequenceOrder = nil
			t.IsLastInChain = false
			t.OptimizationBatchID = &batch
			t.OptimizationStatus = trip.OptimizationPending
			t.EstimatedArrival = nil
			dirty = append(dirty, t)

			plan.Unassigned = append(plan.Unassigned, planning.UnassignedEntry{
				TripID: t.ID,
				Reason: planning.ReasonNotAssigned,
			})
		}
	}

	sort.Slice(plan.Assignments, func(i, j int) bool {
		ai, aj := plan.Assignments[i], plan.Assignments[j]
		if ai.AssignedVehicleID != aj.AssignedVehicleID {
			return ai.AssignedVehicleID < aj.AssignedVehicleID
		}
		return ai.SequenceOrder < aj.SequenceOrder
	})

	if len(dirty) > 0 {
		if err := a.trips.SaveAssignments(ctx, dirty); err != nil {
			return nil, fmt.Errorf("apply plan: %w", err)
		}
	}

	logger.Log("INFO", fmt.Sprintf("Applied plan: %d assignments across %d vehicles", len(plan.Assignments), plan.VehiclesUsed), map[string]interface{}{
		"batch_id":     batchID,
		"assignments":  len(plan.Assignments),
		"vehicles":     plan.VehiclesUsed,
		"unassignable": len(plan.Unassigned),
	})
	return plan, nil
}
