package saga

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(log *[]string, entry string) Action {
	return func(context.Context) error {
		*log = append(*log, entry)
		return nil
	}
}

func TestRunAllStepsSucceed(t *testing.T) {
	var calls []string
	err := New("ok").
		Step("a", record(&calls, "do a"), record(&calls, "undo a")).
		Step("b", record(&calls, "do b"), record(&calls, "undo b")).
		Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"do a", "do b"}, calls)
}

func TestRunCompensatesInReverse(t *testing.T) {
	boom := errors.New("boom")
	var calls []string

	err := New("promote").
		Step("a", record(&calls, "do a"), record(&calls, "undo a")).
		Step("b", record(&calls, "do b"), nil).
		Step("c", record(&calls, "do c"), record(&calls, "undo c")).
		Step("d", func(context.Context) error { return boom }, record(&calls, "undo d")).
		Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var stepErr *StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, "d", stepErr.Step)
	assert.NoError(t, stepErr.CompensationErr)

	assert.Equal(t, []string{"do a", "do b", "do c", "undo c", "undo a"}, calls)
}

func TestCompensationErrorsAreReported(t *testing.T) {
	undoErr := errors.New("undo failed")
	err := New("x").
		Step("a", func(context.Context) error { return nil }, func(context.Context) error { return undoErr }).
		Step("b", func(context.Context) error { return errors.New("fail") }, nil).
		Run(context.Background())

	var stepErr *StepError
	require.True(t, errors.As(err, &stepErr))
	assert.ErrorIs(t, stepErr.CompensationErr, undoErr)
	assert.Contains(t, err.Error(), "compensation failed")
}

func TestCancelledContextStillCompensates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls []string

	err := New("cancel").
		Step("a", func(context.Context) error {
			calls = append(calls, "do a")
			cancel()
			return nil
		}, func(c context.Context) error {
			calls = append(calls, "undo a")
			return c.Err()
		}).
		Step("b", record(&calls, "do b"), nil).
		Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"do a", "undo a"}, calls)
}
