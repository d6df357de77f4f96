package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNetwork marks a Redis or MongoDB backend that could not be reached or
// dropped a command mid-flight. Callers treat it as "cache unavailable"
// rather than as a bad request.
var ErrNetwork = errors.New("cache backend unreachable")

// errMiss is what a backend command returns for an absent key. Get turns
// it into (nil, false, nil).
var errMiss = errors.New("cache miss")

// RetryableError marks a backend failure worth another attempt.
type RetryableError struct{ Err error }

// Retryable wraps err so that a Backoff retries it. Retryable(nil) is nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err was wrapped with Retryable.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Backoff retries backend commands that fail with a Retryable error,
// doubling Delay after each attempt.
type Backoff struct {
	Attempts int           // total tries, at least 1
	Delay    time.Duration // wait before the second try
}

// DefaultBackoff suits a cache on the request path: a dropped connection
// gets two quick reconnects before the lookup counts as failed.
var DefaultBackoff = Backoff{Attempts: 3, Delay: 50 * time.Millisecond}

// Retry runs fn until it succeeds, returns a non-retryable error, runs out
// of attempts or ctx is done.
func (b Backoff) Retry(ctx context.Context, fn func() error) error {
	attempts := max(b.Attempts, 1)
	delay := b.Delay
	var err error
	for i := range attempts {
		if err = fn(); err == nil || !IsRetryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return err
}

// RetryWithBackoff is DefaultBackoff.Retry.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return DefaultBackoff.Retry(ctx, fn)
}
