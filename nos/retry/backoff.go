package retry

import (
	"math"
	"time"
)

type ExponentialBackoff struct {
	factor     time.Duration
	maxBackoff time.Duration
}

func NewExponentialBackoff(factor, maxBackoff time.Duration) *ExponentialBackoff {
	return &ExponentialBackoff{
		factor:     factor,
		maxBackoff: maxBackoff,
	}
}

// BackoffDelay returns min(maxBackoff, factor * 2^attempt).
func (b *ExponentialBackoff) BackoffDelay(attempt int, err error) (time.Duration, error) {
	if b.factor <= 0 || attempt < 0 {
		return 0, nil
	}
	delay := float64(b.factor) * math.Pow(2, float64(attempt))
	if b.maxBackoff > 0 && delay > float64(b.maxBackoff) {
		return b.maxBackoff, nil
	}
	return time.Duration(delay), nil
}
