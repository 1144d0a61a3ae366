package types

import (
	"time"

	"github.com/mbendaoud/fretplan-go/internal/domain/planning"
)

// RunBatchCommand requests one optimization run for a calendar day.
// CompanyID narrows the journal to a single carrier and selects
// single-company mode; FuelPrice overrides the configured diesel price for
// the savings valuation.
type RunBatchCommand struct {
	Date      time.Time
	Type      planning.BatchType
	CompanyID *string
	FuelPrice *float64
}

// RunBatchResponse carries the finished batch report
type RunBatchResponse struct {
	Report *planning.BatchReport
}

// GetBatchReportQuery rebuilds the report of a persisted batch
type GetBatchReportQuery struct {
	BatchID string
}

type GetBatchReportResponse struct {
	Report *planning.BatchReport
}

// ListBatchesQuery returns the most recent batches, newest first
type ListBatchesQuery struct {
	Limit int
}

type ListBatchesResponse struct {
	Batches []*planning.OptimizationBatch
}
