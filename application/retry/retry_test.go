package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFlaky = errors.New("flaky")

func TestDo_SucceedsAfterRetries(t *testing.T) {
	var notified []int
	attempts, err := Do(context.Background(), Policy{MaxAttempts: 3, Delay: time.Millisecond},
		func(attempt int) error {
			if attempt < 3 {
				return errFlaky
			}
			return nil
		},
		func(attempt int, err error, next time.Duration) {
			notified = append(notified, attempt)
			assert.ErrorIs(t, err, errFlaky)
		})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []int{1, 2}, notified)
}

func TestDo_GivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	attempts, err := Do(context.Background(), Policy{MaxAttempts: 3, Delay: time.Millisecond},
		func(int) error {
			calls++
			return errFlaky
		}, nil)

	assert.ErrorIs(t, err, errFlaky)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 3, calls)
}

func TestDo_NonRetryableStopsImmediately(t *testing.T) {
	errFatal := errors.New("fatal")
	attempts, err := Do(context.Background(), Policy{
		MaxAttempts: 5,
		Delay:       time.Millisecond,
		Retryable:   func(err error) bool { return !errors.Is(err, errFatal) },
	}, func(int) error { return errFatal }, nil)

	assert.ErrorIs(t, err, errFatal)
	assert.Equal(t, 1, attempts)
}

func TestDo_ZeroAttemptsRunsOnce(t *testing.T) {
	attempts, err := Do(context.Background(), Policy{}, func(int) error { return nil }, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDo_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts, err := Do(ctx, Policy{MaxAttempts: 10, Delay: time.Hour}, func(int) error {
		cancel()
		return errFlaky
	}, nil)

	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}
