package retry

import (
	"context"
	"time"
)

// Policy is a single value object for every operation touching an external
// dependency: provider calls and filesystem moves share the same shape.
type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Factor       int
}

func NewPolicy(maxAttempts int, initialDelay time.Duration, factor int) Policy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if factor < 1 {
		factor = 1
	}
	return Policy{
		MaxAttempts:  maxAttempts,
		InitialDelay: initialDelay,
		Factor:       factor,
	}
}

// Delay returns the backoff before the given attempt (1-based). Attempt 1
// runs immediately.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}
	d := p.InitialDelay
	for i := 2; i < attempt; i++ {
		d *= time.Duration(p.Factor)
	}
	return d
}

// Do runs fn up to MaxAttempts times with exponential backoff, honoring
// context cancellation between attempts. The last error is returned.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if delay := p.Delay(attempt); delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := fn(); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
