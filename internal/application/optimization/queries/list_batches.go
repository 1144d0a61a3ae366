package queries

import (
	"context"
	"fmt"

	"github.com/mbendaoud/fretplan-go/internal/application/common"
	optimizationTypes "github.com/mbendaoud/fretplan-go/internal/application/optimization/types"
	"github.com/mbendaoud/fretplan-go/internal/domain/planning"
)

// Type aliases for convenience
type ListBatchesQuery = optimizationTypes.ListBatchesQuery
type ListBatchesResponse = optimizationTypes.ListBatchesResponse

const defaultBatchListLimit = 10

// ListBatchesHandler handles listing recent optimization batches
type ListBatchesHandler struct {
	batches planning.BatchRepository
}

// NewListBatchesHandler creates a new list batches handler
func NewListBatchesHandler(batches planning.BatchRepository) *ListBatchesHandler {
	return &ListBatchesHandler{batches: batches}
}

// Handle executes the list batches query
func (h *ListBatchesHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*ListBatchesQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	limit := query.Limit
	if limit <= 0 {
		limit = defaultBatchListLimit
	}

	batches, err := h.batches.FindRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}

	return &ListBatchesResponse{Batches: batches}, nil
}
