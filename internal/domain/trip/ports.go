package trip

import (
	"context"
	"time"
)

// Repository defines the interface for trip persistence operations.
// The optimizer reads trips once per batch and writes assignments once per trip.
type Repository interface {
	// FindPlannedForDate returns trips departing on the given UTC calendar day
	// that are planned and still pending optimization. companyID narrows the
	// journal to one carrier (single-company mode); nil means all carriers.
	FindPlannedForDate(ctx context.Context, date time.Time, companyID *string) ([]*Trip, error)

	// FindByBatchID returns the trips bound to an optimization batch
	FindByBatchID(ctx context.Context, batchID string) ([]*Trip, error)

	// SaveAssignments persists the optimization fields of the given trips
	SaveAssignments(ctx context.Context, trips []*Trip) error
}
