package shared

import "fmt"

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Optimization errors
//
// The batch runner maps each of these to a degraded path or a terminal batch
// state; none of them may escape it unclassified.

// TripInfeasibleError marks a trip that cannot enter the solver.
// The trip is dropped and surfaces in the report's unassigned set.
type TripInfeasibleError struct {
	*DomainError
	TripID string
	Reason string
}

func NewTripInfeasibleError(tripID, reason string) *TripInfeasibleError {
	return &TripInfeasibleError{
		DomainError: &DomainError{Message: fmt.Sprintf("trip %s infeasible: %s", tripID, reason)},
		TripID:      tripID,
		Reason:      reason,
	}
}

// RoutingUnavailableError signals that the routing engine could not be reached
// and a haversine fallback was (or must be) used instead.
type RoutingUnavailableError struct {
	*DomainError
	Cause error
}

func NewRoutingUnavailableError(cause error) *RoutingUnavailableError {
	return &RoutingUnavailableError{
		DomainError: &DomainError{Message: fmt.Sprintf("routing engine unavailable: %v", cause)},
		Cause:       cause,
	}
}

func (e *RoutingUnavailableError) Unwrap() error {
	return e.Cause
}

// SolverTimeoutError signals that a group exhausted its wall-time budget.
// The best incumbent is kept; with none, the group falls back to round-robin.
type SolverTimeoutError struct {
	*DomainError
	Group string
}

func NewSolverTimeoutError(group string) *SolverTimeoutError {
	return &SolverTimeoutError{
		DomainError: &DomainError{Message: fmt.Sprintf("solver budget exhausted for group %s", group)},
		Group:       group,
	}
}

// SolverInfeasibleError signals that no feasible plan exists for a group.
type SolverInfeasibleError struct {
	*DomainError
	Group string
}

func NewSolverInfeasibleError(group string) *SolverInfeasibleError {
	return &SolverInfeasibleError{
		DomainError: &DomainError{Message: fmt.Sprintf("no feasible plan for group %s", group)},
		Group:       group,
	}
}

// PersistenceError wraps a failed entity store operation; it aborts the batch.
type PersistenceError struct {
	*DomainError
	Op    string
	Cause error
}

func NewPersistenceError(op string, cause error) *PersistenceError {
	return &PersistenceError{
		DomainError: &DomainError{Message: fmt.Sprintf("persistence failure during %s: %v", op, cause)},
		Op:          op,
		Cause:       cause,
	}
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// BatchCancelledError signals operator cancellation; the batch finalizes FAILED
// with reason "cancelled".
type BatchCancelledError struct {
	*DomainError
}

func NewBatchCancelledError() *BatchCancelledError {
	return &BatchCancelledError{DomainError: &DomainError{Message: "cancelled"}}
}
