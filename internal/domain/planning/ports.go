package planning

import "context"

// BatchRepository defines the interface for batch persistence operations
type BatchRepository interface {
	Create(ctx context.Context, batch *OptimizationBatch) error
	Update(ctx context.Context, batch *OptimizationBatch) error
	FindByID(ctx context.Context, id string) (*OptimizationBatch, error)
	FindRecent(ctx context.Context, limit int) ([]*OptimizationBatch, error)
}

// CompanyResultRepository defines the interface for per-company result persistence
type CompanyResultRepository interface {
	SaveAll(ctx context.Context, results []*CompanyResult) error
	FindByBatchID(ctx context.Context, batchID string) ([]*CompanyResult, error)
}
