package vehicle

import "context"

// Repository defines the interface for vehicle persistence operations
type Repository interface {
	// FindAvailable returns vehicles with status available, optionally
	// narrowed to a single company's fleet
	FindAvailable(ctx context.Context, companyID *string) ([]*Vehicle, error)

	// FindByIDs resolves vehicles by ID, keyed by ID
	FindByIDs(ctx context.Context, ids []string) (map[string]*Vehicle, error)
}
