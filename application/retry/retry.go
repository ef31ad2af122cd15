// Package retry runs an operation a bounded number of times with a fixed delay.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy describes how an operation is retried
type Policy struct {
	// MaxAttempts is the total number of tries, the first one included.
	MaxAttempts int
	Delay       time.Duration
	// Retryable decides whether an error deserves another attempt. Nil retries everything.
	Retryable func(error) bool
}

// Notify is called after a failed attempt that will be retried
type Notify func(attempt int, err error, next time.Duration)

// Do - runs op until it succeeds, the attempts run out, a non-retryable
// error occurs, or ctx is done. It returns the number of attempts made
// and the last error.
func Do(ctx context.Context, p Policy, op func(attempt int) error, notify Notify) (int, error) {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}

	attempt := 0
	wrapped := func() error {
		attempt++
		err := op(attempt)
		if err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.Delay), uint64(p.MaxAttempts-1)),
		ctx,
	)

	var onRetry backoff.Notify
	if notify != nil {
		onRetry = func(err error, next time.Duration) {
			notify(attempt, err, next)
		}
	}

	err := backoff.RetryNotify(wrapped, b, onRetry)

	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		err = perm.Err
	}
	return attempt, err
}
