package retry

import (
	"context"
	"math/rand"
	"time"
)

// BackoffStrategy decides how long to wait after a failed attempt
type BackoffStrategy interface {
	// NextDelay returns the delay to wait after the given failed attempt
	NextDelay(attempt int) time.Duration
}

// BackoffFunc adapts a plain function to BackoffStrategy
type BackoffFunc func(attempt int) time.Duration

// NextDelay calls f(attempt)
func (f BackoffFunc) NextDelay(attempt int) time.Duration {
	return f(attempt)
}

// NoDelay retries immediately. Used when the configured retry delay is zero.
var NoDelay BackoffStrategy = BackoffFunc(func(int) time.Duration { return 0 })

// ExponentialBackoff multiplies the delay after every failed removal,
// up to MaxDelay, with optional random jitter.
type ExponentialBackoff struct {
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
	// JitterFactor spreads each delay by up to that fraction either way
	JitterFactor float64
}

// DefaultExponentialBackoff starts at half a second and stops growing at
// five, which covers a file held open by a viewer or an indexer.
func DefaultExponentialBackoff() *ExponentialBackoff {
	return &ExponentialBackoff{
		BaseDelay:    500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2,
		JitterFactor: 0.1,
	}
}

// NextDelay returns BaseDelay*Multiplier^(attempt-1), capped and jittered
func (eb *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	if attempt <= 0 || eb.BaseDelay <= 0 {
		return 0
	}

	delay := float64(eb.BaseDelay)
	for i := 1; i < attempt; i++ {
		delay *= eb.Multiplier
		if eb.MaxDelay > 0 && delay >= float64(eb.MaxDelay) {
			break
		}
	}
	if eb.MaxDelay > 0 && delay > float64(eb.MaxDelay) {
		delay = float64(eb.MaxDelay)
	}

	return jitter(delay, eb.JitterFactor)
}

func jitter(delay, factor float64) time.Duration {
	if factor > 0 {
		delay += delay * factor * (2*rand.Float64() - 1)
	}
	return time.Duration(max(delay, 0))
}

// Wait blocks for delay or until ctx is done
func Wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
