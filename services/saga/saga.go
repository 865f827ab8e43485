// Package saga runs multi-step writes that cannot share one transaction.
// Each completed step registers a compensation; when a later step fails the
// compensations run in reverse order.
package saga

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
)

// Action is one forward or compensating operation
type Action func(ctx context.Context) error

type step struct {
	name       string
	do         Action
	compensate Action
}

// Saga is an ordered list of steps
type Saga struct {
	name  string
	steps []step
}

// StepError reports which step failed and whether rollback was clean
type StepError struct {
	Saga            string
	Step            string
	Err             error
	CompensationErr error
}

func (e *StepError) Error() string {
	msg := fmt.Sprintf("%s: step %q failed: %v", e.Saga, e.Step, e.Err)
	if e.CompensationErr != nil {
		msg += fmt.Sprintf(" (compensation failed: %v)", e.CompensationErr)
	}
	return msg
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// New creates an empty saga
func New(name string) *Saga {
	return &Saga{name: name}
}

// Step appends a step. compensate may be nil for steps with nothing to undo.
func (s *Saga) Step(name string, do, compensate Action) *Saga {
	s.steps = append(s.steps, step{name: name, do: do, compensate: compensate})
	return s
}

// Run executes the steps in order and compensates on the first failure
func (s *Saga) Run(ctx context.Context) error {
	for i, st := range s.steps {
		if err := ctx.Err(); err != nil {
			return s.fail(ctx, i, st.name, err)
		}
		if err := st.do(ctx); err != nil {
			return s.fail(ctx, i, st.name, err)
		}
	}
	return nil
}

// fail rolls back steps [0, failed) in reverse
func (s *Saga) fail(ctx context.Context, failed int, name string, cause error) error {
	log.Warnf("[SAGA] %s: step %q failed, compensating %d step(s): %v", s.name, name, failed, cause)

	// compensations must run even when the request was cancelled
	rollbackCtx := context.WithoutCancel(ctx)

	var errs []error
	for i := failed - 1; i >= 0; i-- {
		st := s.steps[i]
		if st.compensate == nil {
			continue
		}
		if err := st.compensate(rollbackCtx); err != nil {
			log.Errorf("[SAGA] %s: compensation for %q failed: %v", s.name, st.name, err)
			errs = append(errs, fmt.Errorf("%s: %w", st.name, err))
		}
	}

	return &StepError{
		Saga:            s.name,
		Step:            name,
		Err:             cause,
		CompensationErr: errors.Join(errs...),
	}
}
