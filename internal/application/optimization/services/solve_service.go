package services

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/mbendaoud/fretplan-go/internal/adapters/metrics"
	"github.com/mbendaoud/fretplan-go/internal/application/common"
	"github.com/mbendaoud/fretplan-go/internal/domain/planning"
	"github.com/mbendaoud/fretplan-go/internal/domain/shared"
	"github.com/mbendaoud/fretplan-go/internal/domain/solver"
)

// SolveSettings bounds the per-group solver work
type SolveSettings struct {
	Budget       time.Duration
	SingleBudget time.Duration
	DropPenalty  float64
	MaxWorkers   int
}

// SolveService runs the solver over the category groups. Groups are disjoint
// so they solve in parallel; each group is deterministic in isolation and the
// results are joined positionally, keeping whole-batch output reproducible.
type SolveService struct {
	settings SolveSettings
	clock    shared.Clock
}

// NewSolveService creates a new solve service
func NewSolveService(settings SolveSettings, clock shared.Clock) *SolveService {
	return &SolveService{settings: settings, clock: clock}
}

// SolveAll solves every group with a bounded worker pool and returns the
// solutions parallel to the groups. Cross-company groups that prove
// infeasible or exhaust the budget degrade to round-robin distribution.
func (s *SolveService) SolveAll(ctx context.Context, batchType planning.BatchType, groups []*Group) ([]*solver.Solution, error) {
	logger := common.LoggerFromContext(ctx)

	numWorkers := len(groups)
	if limit := s.maxWorkers(); numWorkers > limit {
		numWorkers = limit
	}
	if numWorkers == 0 {
		return nil, nil
	}

	logger.Log("INFO", fmt.Sprintf("Solving %d category groups with %d workers", len(groups), numWorkers), map[string]interface{}{
		"groups":  len(groups),
		"workers": numWorkers,
	})

	solutions := make([]*solver.Solution, len(groups))
	sem := make(chan struct{}, numWorkers)
	var wg sync.WaitGroup

	for gi, group := range groups {
		wg.Add(1)
		go func(gi int, group *Group) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}

			started := s.clock.Now()
			sol := s.solveGroup(ctx, batchType, group)
			elapsed := s.clock.Now().Sub(started).Seconds()

			metrics.RecordGroupSolve(string(group.Category), sol.Status, elapsed)
			logger.Log("INFO", fmt.Sprintf("Group %s solved: %s, %d vehicles, %.1f km deadhead", group.Category, sol.Status, sol.VehiclesUsed, sol.TotalDeadheadKm), map[string]interface{}{
				"category":        string(group.Category),
				"status":          sol.Status,
				"vehicles_used":   sol.VehiclesUsed,
				"deadhead_km":     sol.TotalDeadheadKm,
				"solve_seconds":   elapsed,
				"trips":           len(group.Input.Trips),
				"solver_fallback": sol.Fallback,
			})

			solutions[gi] = sol
		}(gi, group)
	}

	wg.Wait()

	if ctx.Err() != nil {
		return nil, shared.NewBatchCancelledError()
	}
	return solutions, nil
}

func (s *SolveService) solveGroup(ctx context.Context, batchType planning.BatchType, group *Group) *solver.Solution {
	logger := common.LoggerFromContext(ctx)
	cfg := solver.Config{
		Budget:       s.settings.Budget,
		SingleBudget: s.settings.SingleBudget,
		DropPenalty:  s.settings.DropPenalty,
		Clock:        s.clock,
	}

	var sol *solver.Solution
	var err error
	if batchType == planning.TypeSingleCompany {
		sol, err = solver.SolveSingleCompany(group.Input, cfg)
	} else {
		sol, err = solver.SolveCrossCompany(group.Input, cfg)
	}
	if err != nil {
		logger.Log("WARN", fmt.Sprintf("Group %s degraded to round-robin: %v", group.Category, err), map[string]interface{}{
			"category": string(group.Category),
			"reason":   err.Error(),
		})
		sol = solver.RoundRobin(group.Input)
	}
	return sol
}

func (s *SolveService) maxWorkers() int {
	if s.settings.MaxWorkers > 0 {
		return s.settings.MaxWorkers
	}
	return runtime.NumCPU()
}

// AggregateStatus reduces per-group solver statuses to the batch-level one.
// The weakest group wins: any fallback marks the batch degraded, any timeout
// marks it feasible-only.
func AggregateStatus(solutions []*solver.Solution) string {
	rank := map[string]int{
		solver.StatusEmpty:    0,
		solver.StatusOptimal:  1,
		solver.StatusFeasible: 2,
		solver.StatusFallback: 3,
	}
	status := solver.StatusEmpty
	for _, sol := range solutions {
		if sol != nil && rank[sol.Status] > rank[status] {
			status = sol.Status
		}
	}
	return status
}
