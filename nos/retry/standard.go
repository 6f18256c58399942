package retry

import (
	"errors"
	"time"

	"github.com/netease/nos-go-sdk/nos/types"
)

const (
	DefaultMaxRetries int = 2

	DefaultMaxBackoff    time.Duration = 120 * time.Second
	DefaultBackoffFactor time.Duration = 0
)

var DefaultRetryOnStatus = []int{500, 501, 503}

type Standard struct {
	maxAttempts int
	retryables  []ErrorRetryable
	backoff     BackoffDelayer
}

func NewStandard(fnOpts ...func(*RetryOptions)) *Standard {
	o := RetryOptions{
		MaxRetries:    DefaultMaxRetries,
		RetryOnStatus: append([]int{}, DefaultRetryOnStatus...),
		BackoffFactor: DefaultBackoffFactor,
		MaxBackoff:    DefaultMaxBackoff,
	}

	for _, fn := range fnOpts {
		fn(&o)
	}

	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}

	if o.MaxBackoff <= 0 {
		o.MaxBackoff = DefaultMaxBackoff
	}

	if o.Backoff == nil {
		o.Backoff = NewExponentialBackoff(o.BackoffFactor, o.MaxBackoff)
	}

	if len(o.ErrorRetryables) == 0 {
		o.ErrorRetryables = []ErrorRetryable{
			KindRetryable{
				RetryOnStatus:  append([]int{}, o.RetryOnStatus...),
				RetryOnTimeout: o.RetryOnTimeout,
			},
		}
	}

	return &Standard{
		maxAttempts: o.MaxRetries + 1,
		retryables:  o.ErrorRetryables,
		backoff:     o.Backoff,
	}
}

func (s *Standard) MaxAttempts() int {
	return s.maxAttempts
}

func (s *Standard) IsErrorRetryable(err error) bool {
	for _, re := range s.retryables {
		if v := re.IsErrorRetryable(err); v {
			return v
		}
	}
	return false
}

func (s *Standard) RetryDelay(attempt int, err error) (time.Duration, error) {
	return s.backoff.BackoffDelay(attempt, err)
}

func asServiceError(err error) (*types.ServiceError, bool) {
	var se *types.ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
