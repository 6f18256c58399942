package retry

import (
	"fmt"
	"time"
)

type Retryer interface {
	// IsErrorRetryable reports whether the failed attempt may be tried again.
	IsErrorRetryable(error) bool

	// MaxAttempts is the total number of attempts, the first one included.
	MaxAttempts() int

	// RetryDelay returns how long to wait after the zero based attempt failed.
	RetryDelay(attempt int, opErr error) (time.Duration, error)
}

type NopRetryer struct{}

func (NopRetryer) IsErrorRetryable(error) bool { return false }

func (NopRetryer) MaxAttempts() int { return 1 }

func (NopRetryer) RetryDelay(int, error) (time.Duration, error) {
	return 0, fmt.Errorf("not retrying any attempt errors")
}

type RetryOptions struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// Service errors with one of these status codes are retried.
	RetryOnStatus []int

	// Retry attempts that timed out.
	RetryOnTimeout bool

	// The delay after attempt n is min(MaxBackoff, BackoffFactor * 2^n).
	// Zero retries immediately.
	BackoffFactor time.Duration
	MaxBackoff    time.Duration

	Backoff         BackoffDelayer
	ErrorRetryables []ErrorRetryable
}

type BackoffDelayer interface {
	BackoffDelay(attempt int, err error) (time.Duration, error)
}

type ErrorRetryable interface {
	IsErrorRetryable(error) bool
}
