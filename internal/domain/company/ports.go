package company

import "context"

// Repository defines the interface for company persistence operations
type Repository interface {
	// FindByIDs resolves companies by ID, keyed by ID; unknown IDs are omitted
	FindByIDs(ctx context.Context, ids []string) (map[string]*Company, error)
}
