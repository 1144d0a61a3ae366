package services

import (
	"context"
	"fmt"

	"github.com/mbendaoud/fretplan-go/internal/application/common"
	"github.com/mbendaoud/fretplan-go/internal/domain/routing"
	"github.com/mbendaoud/fretplan-go/internal/domain/solver"
)

// MatrixService resolves the batch travel matrix through the routing provider.
// One matrix is computed per batch and shared by every category group.
type MatrixService struct {
	provider routing.Provider
}

// NewMatrixService creates a new matrix service
func NewMatrixService(provider routing.Provider) *MatrixService {
	return &MatrixService{provider: provider}
}

// Build computes the solver matrix over the arena points. The provider
// degrades to haversine estimates on upstream failure, so the only error here
// is context cancellation.
func (s *MatrixService) Build(ctx context.Context, arena *PointArena) (*solver.Matrix, *routing.MatrixResult, error) {
	logger := common.LoggerFromContext(ctx)

	if arena.Len() == 0 {
		empty := routing.NewMatrixResult(0)
		return solver.NewMatrix(empty.DurationsS, empty.DistancesM), empty, nil
	}

	result, err := s.provider.Matrix(ctx, arena.Points())
	if err != nil {
		return nil, nil, fmt.Errorf("travel matrix: %w", err)
	}

	if result.FallbackUsed {
		logger.Log("WARN", "Travel matrix degraded to haversine estimates", map[string]interface{}{
			"locations": arena.Len(),
		})
	} else {
		logger.Log("INFO", "Travel matrix resolved", map[string]interface{}{
			"locations": arena.Len(),
		})
	}

	return solver.NewMatrix(result.DurationsS, result.DistancesM), result, nil
}
