package daemon

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/mbendaoud/fretplan-go/internal/application/common"
	optimizationTypes "github.com/mbendaoud/fretplan-go/internal/application/optimization/types"
	"github.com/mbendaoud/fretplan-go/internal/domain/planning"
	"github.com/mbendaoud/fretplan-go/internal/domain/shared"
	"github.com/mbendaoud/fretplan-go/pkg/utils"
)

// Scheduler fires one cross-company optimization batch per night at the
// configured wall-clock time (UTC). A run that overlaps the next slot is not
// queued; the night is skipped and the skip logged.
type Scheduler struct {
	mediator common.Mediator
	logger   common.Logger
	clock    shared.Clock

	schedule   string // "HH:MM", validated at config load
	runOnStart bool

	running atomic.Bool
	stopCh  chan struct{}
}

// NewScheduler creates a nightly batch scheduler
func NewScheduler(mediator common.Mediator, logger common.Logger, clock shared.Clock, schedule string, runOnStart bool) *Scheduler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Scheduler{
		mediator:   mediator,
		logger:     logger,
		clock:      clock,
		schedule:   schedule,
		runOnStart: runOnStart,
		stopCh:     make(chan struct{}),
	}
}

// Run blocks, firing batches on schedule until the context is cancelled or
// Stop is called.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.runOnStart {
		s.fire(ctx)
	}

	for {
		wait, target := s.untilNextRun()
		s.logger.Log("INFO", fmt.Sprintf("Next optimization run at %s (in %s)", target.Format(time.RFC3339), wait.Round(time.Second)), map[string]interface{}{
			"next_run": target.Format(time.RFC3339),
		})

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-s.sleep(wait):
			s.fire(ctx)
		}
	}
}

// Stop ends the Run loop. A batch in flight finishes on its own.
func (s *Scheduler) Stop() {
	close(s.stopCh)
}

// RunNow fires a batch outside the schedule (manual trigger). Returns false
// when a batch is already in flight.
func (s *Scheduler) RunNow(ctx context.Context) bool {
	return s.fire(ctx)
}

// untilNextRun resolves the next occurrence of the scheduled wall-clock time
func (s *Scheduler) untilNextRun() (time.Duration, time.Time) {
	now := s.clock.Now().UTC()

	// Schedule format is validated at config load; a broken value falls
	// back to 02:00 rather than killing the daemon.
	at, err := time.Parse("15:04", s.schedule)
	if err != nil {
		at, _ = time.Parse("15:04", "02:00")
	}

	target := time.Date(now.Year(), now.Month(), now.Day(), at.Hour(), at.Minute(), 0, 0, time.UTC)
	if !target.After(now) {
		target = target.AddDate(0, 0, 1)
	}
	return target.Sub(now), target
}

// sleep waits through the injected clock so tests with a MockClock never block
func (s *Scheduler) sleep(d time.Duration) <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		s.clock.Sleep(d)
		close(ch)
	}()
	return ch
}

// fire runs one cross-company batch for the day that is starting. The 02:00
// run plans the trips departing later that same day.
func (s *Scheduler) fire(ctx context.Context) bool {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Log("WARN", "Previous optimization batch still running, skipping this run", nil)
		return false
	}
	defer s.running.Store(false)

	batchDate := s.clock.Now().UTC().Truncate(24 * time.Hour)
	run := utils.GenerateRunLabel("optimize", string(planning.TypeCrossCompany))
	s.logger.Log("INFO", fmt.Sprintf("Starting nightly optimization %s for %s", run, batchDate.Format("2006-01-02")), map[string]interface{}{
		"run":        run,
		"batch_date": batchDate.Format("2006-01-02"),
	})

	cmd := &optimizationTypes.RunBatchCommand{
		Date: batchDate,
		Type: planning.TypeCrossCompany,
	}

	runCtx := common.WithLogger(ctx, s.logger)
	resp, err := s.mediator.Send(runCtx, cmd)
	if err != nil {
		s.logger.Log("ERROR", fmt.Sprintf("Nightly optimization failed: %v", err), map[string]interface{}{
			"run":        run,
			"batch_date": batchDate.Format("2006-01-02"),
			"error":      err.Error(),
		})
		return true
	}

	if r, ok := resp.(*optimizationTypes.RunBatchResponse); ok && r.Report != nil {
		s.logger.Log("INFO", fmt.Sprintf("Nightly optimization finished: %d trips optimized on %d vehicles, %.1f km saved",
			r.Report.TripsOptimized, r.Report.VehiclesUsed, r.Report.Totals.KmSaved), map[string]interface{}{
			"run":           run,
			"batch_id":      r.Report.BatchID,
			"trips":         r.Report.TripsOptimized,
			"vehicles_used": r.Report.VehiclesUsed,
			"km_saved":      r.Report.Totals.KmSaved,
		})
	}
	return true
}
