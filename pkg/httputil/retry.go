package httputil

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const maxRetryInterval = 30 * time.Second

type transientError struct{ err error }

func (e transientError) Error() string { return e.err.Error() }
func (e transientError) Unwrap() error { return e.err }

// Transient marks err as worth another attempt. Nil stays nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return transientError{err}
}

// IsTransient reports whether err was marked with [Transient].
func IsTransient(err error) bool {
	var t transientError
	return errors.As(err, &t)
}

// Retry calls fn until it succeeds, fails with an error not marked
// [Transient], or has been called attempts times. Waits start at delay and
// double with 10% jitter. The returned error is unwrapped from its
// [Transient] mark; cancellation of ctx returns ctx.Err().
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	b := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(delay),
		backoff.WithMultiplier(2),
		backoff.WithRandomizationFactor(0.1),
		backoff.WithMaxInterval(maxRetryInterval),
		backoff.WithMaxElapsedTime(0),
	)
	retries := uint64(max(attempts, 1) - 1)
	err := backoff.Retry(func() error {
		err := fn()
		if err != nil && !IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(b, retries), ctx))

	if t, ok := err.(transientError); ok {
		return t.err
	}
	return err
}
