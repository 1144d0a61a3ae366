package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/cucumber/godog"

	"github.com/mbendaoud/fretplan-go/internal/domain/planning"
)

type batchLifecycleContext struct {
	batch         *planning.OptimizationBatch
	transitionErr error
	now           time.Time
}

func (bc *batchLifecycleContext) reset() {
	bc.batch = nil
	bc.transitionErr = nil
	bc.now = time.Date(2025, 3, 14, 2, 0, 0, 0, time.UTC)
}

// Given steps

func (bc *batchLifecycleContext) aPendingCrossCompanyBatchFor(date string) error {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return fmt.Errorf("invalid batch date %q: %w", date, err)
	}
	bc.batch = planning.NewBatch("batch-bdd", day, planning.TypeCrossCompany, bc.now)
	return nil
}

// When steps

func (bc *batchLifecycleContext) theBatchStartsProcessing() error {
	if bc.batch == nil {
		return fmt.Errorf("no batch available")
	}
	bc.transitionErr = bc.batch.Start()
	return nil
}

func (bc *batchLifecycleContext) theBatchCompletes() error {
	if bc.batch == nil {
		return fmt.Errorf("no batch available")
	}
	bc.transitionErr = bc.batch.Complete(bc.now.Add(5 * time.Minute))
	return nil
}

func (bc *batchLifecycleContext) theBatchFailsWith(message string) error {
	if bc.batch == nil {
		return fmt.Errorf("no batch available")
	}
	bc.transitionErr = bc.batch.Fail(bc.now.Add(5*time.Minute), message)
	return nil
}

// Then steps

func (bc *batchLifecycleContext) theBatchStatusShouldBe(expected string) error {
	if bc.batch == nil {
		return fmt.Errorf("no batch available")
	}
	if string(bc.batch.Status) != expected {
		return fmt.Errorf("expected batch status %q, got %q", expected, bc.batch.Status)
	}
	return nil
}

func (bc *batchLifecycleContext) theBatchShouldBeTerminal() error {
	if !bc.batch.IsTerminal() {
		return fmt.Errorf("expected batch in %s state to be terminal", bc.batch.Status)
	}
	return nil
}

func (bc *batchLifecycleContext) theBatchErrorShouldBe(expected string) error {
	if bc.batch.ErrorMessage == nil {
		return fmt.Errorf("expected batch error %q, got none", expected)
	}
	if *bc.batch.ErrorMessage != expected {
		return fmt.Errorf("expected batch error %q, got %q", expected, *bc.batch.ErrorMessage)
	}
	return nil
}

func (bc *batchLifecycleContext) theLifecycleTransitionShouldFailWith(expected string) error {
	if bc.transitionErr == nil {
		return fmt.Errorf("expected transition to fail with %q, but it succeeded", expected)
	}
	if bc.transitionErr.Error() != expected {
		return fmt.Errorf("expected error %q, got %q", expected, bc.transitionErr.Error())
	}
	return nil
}

func InitializeBatchLifecycleScenario(sc *godog.ScenarioContext) {
	bc := &batchLifecycleContext{}

	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		bc.reset()
		return ctx, nil
	})

	// Given steps
	sc.Step(`^a pending cross-company batch for "([^"]*)"$`, bc.aPendingCrossCompanyBatchFor)

	// When steps
	sc.Step(`^the batch starts processing$`, bc.theBatchStartsProcessing)
	sc.Step(`^the batch starts processing again$`, bc.theBatchStartsProcessing)
	sc.Step(`^the batch completes$`, bc.theBatchCompletes)
	sc.Step(`^the batch fails with "([^"]*)"$`, bc.theBatchFailsWith)

	// Then steps
	sc.Step(`^the batch status should be "([^"]*)"$`, bc.theBatchStatusShouldBe)
	sc.Step(`^the batch should be terminal$`, bc.theBatchShouldBeTerminal)
	sc.Step(`^the batch error should be "([^"]*)"$`, bc.theBatchErrorShouldBe)
	sc.Step(`^the lifecycle transition should fail with "([^"]*)"$`, bc.theLifecycleTransitionShouldFailWith)
}
