package feedback

import (
	"context"
	"time"
)

// RetryPolicy bounds how many times one prompt is dispatched and how long to
// wait between dispatches. MaxAttempts counts dispatches, not re-dispatches:
// MaxAttempts 3 means at most 3 calls to the generation client.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
	// Multiplier scales the backoff after each failed attempt. Values
	// below 1 are treated as 1 (fixed delay).
	Multiplier float64
}

// DefaultRetryPolicy matches the original review pipeline: three dispatches
// with a fixed one second pause between them.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Backoff: time.Second, Multiplier: 1}
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// wait sleeps the backoff for the given completed attempt (1-based) or
// returns early when ctx is cancelled.
func (p RetryPolicy) wait(ctx context.Context, attempt int) error {
	d := p.Backoff
	if d <= 0 {
		return ctx.Err()
	}
	mult := p.Multiplier
	if mult > 1 {
		for i := 1; i < attempt; i++ {
			d = time.Duration(float64(d) * mult)
		}
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
