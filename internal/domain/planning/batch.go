package planning

import (
	"fmt"
	"time"
)

// BatchStatus is the lifecycle state of an optimization batch.
// Transitions are monotone: pending → processing → (completed | failed).
type BatchStatus string

const (
	BatchPending    BatchStatus = "pending"
	BatchProcessing BatchStatus = "processing"
	BatchCompleted  BatchStatus = "completed"
	BatchFailed     BatchStatus = "failed"
)

// BatchType selects the optimization mode
type BatchType string

const (
	TypeCrossCompany  BatchType = "cross_company"
	TypeSingleCompany BatchType = "single_company"
)

// OptimizationBatch is the unit of nightly work: one calendar day, one plan.
type OptimizationBatch struct {
	ID        string      `json:"id"`
	BatchDate time.Time   `json:"batch_date"`
	Type      BatchType   `json:"type"`
	Status    BatchStatus `json:"status"`

	TotalTrips             int      `json:"total_trips"`
	VehiclesUsed           int      `json:"vehicles_used"`
	KmSaved                float64  `json:"km_saved"`
	FuelSavedLiters        float64  `json:"fuel_saved_liters"`
	ParticipatingCompanies []string `json:"participating_companies"`

	SolverTimeSeconds float64 `json:"solver_time_seconds"`
	SolverStatus      string  `json:"solver_status,omitempty"`
	ErrorMessage      *string `json:"error_message,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewBatch creates a pending batch for the given UTC day
func NewBatch(id string, date time.Time, batchType BatchType, now time.Time) *OptimizationBatch {
	return &OptimizationBatch{
		ID:        id,
		BatchDate: date,
		Type:      batchType,
		Status:    BatchPending,
		CreatedAt: now,
	}
}

// Start transitions the batch to processing
func (b *OptimizationBatch) Start() error {
	if b.Status != BatchPending {
		return fmt.Errorf("cannot start batch from %s state", b.Status)
	}
	b.Status = BatchProcessing
	return nil
}

// Complete finalizes a processing batch with its totals
func (b *OptimizationBatch) Complete(now time.Time) error {
	if b.Status != BatchProcessing {
		return fmt.Errorf("cannot complete batch from %s state", b.Status)
	}
	b.Status = BatchCompleted
	b.CompletedAt = &now
	return nil
}

// Fail finalizes the batch with an error message.
// Failing is allowed from any non-terminal state.
func (b *OptimizationBatch) Fail(now time.Time, message string) error {
	if b.IsTerminal() {
		return fmt.Errorf("cannot fail batch from %s state", b.Status)
	}
	b.Status = BatchFailed
	b.ErrorMessage = &message
	b.CompletedAt = &now
	return nil
}

// IsTerminal reports whether the batch reached a final state
func (b *OptimizationBatch) IsTerminal() bool {
	return b.Status == BatchCompleted || b.Status == BatchFailed
}
