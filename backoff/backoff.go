// Package backoff provides reconnect delay strategies and a context-aware
// retry loop. Worker agents use it to redial the hub after the socket drops.
// All strategies are safe for concurrent use (they are stateless).
package backoff

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// Strategy computes the delay before a retry attempt.
type Strategy interface {
	// Delay returns how long to wait before retry attempt n (1-indexed).
	// Attempt 1 is the first retry after the initial failure.
	Delay(attempt int) time.Duration
}

// ──────────────────────────────────────────────────
// Constant
// ──────────────────────────────────────────────────

// Constant always returns the same delay regardless of attempt number.
type Constant struct {
	Interval time.Duration
}

// NewConstant creates a constant backoff strategy.
func NewConstant(interval time.Duration) *Constant {
	return &Constant{Interval: interval}
}

// Delay returns the fixed interval.
func (c *Constant) Delay(_ int) time.Duration {
	return c.Interval
}

// ──────────────────────────────────────────────────
// Exponential
// ──────────────────────────────────────────────────

// Exponential doubles the delay each attempt.
// Delay = min(Initial * 2^(attempt-1), Max).
type Exponential struct {
	Initial time.Duration
	Max     time.Duration
}

// NewExponential creates an exponential backoff strategy.
func NewExponential(initial, maxDelay time.Duration) *Exponential {
	return &Exponential{Initial: initial, Max: maxDelay}
}

// Delay returns Initial * 2^(attempt-1), capped at Max.
func (e *Exponential) Delay(attempt int) time.Duration {
	return time.Duration(capped(e.Initial, e.Max, attempt))
}

// ──────────────────────────────────────────────────
// ExponentialWithJitter (equal jitter)
// ──────────────────────────────────────────────────

// ExponentialWithJitter keeps half of the exponential base and randomizes
// the other half, so a fleet of agents that lost the hub at the same moment
// does not redial in lockstep while each still waits a minimum interval.
// Delay = base/2 + random value in [0, base/2].
type ExponentialWithJitter struct {
	Initial time.Duration
	Max     time.Duration
}

// NewExponentialWithJitter creates an exponential backoff with equal jitter.
func NewExponentialWithJitter(initial, maxDelay time.Duration) *ExponentialWithJitter {
	return &ExponentialWithJitter{Initial: initial, Max: maxDelay}
}

// Delay returns a random duration in [base/2, base] where
// base = min(Initial * 2^(attempt-1), Max).
func (e *ExponentialWithJitter) Delay(attempt int) time.Duration {
	half := capped(e.Initial, e.Max, attempt) / 2
	return time.Duration(half + rand.Float64()*half) //nolint:gosec // jitter intentionally uses non-crypto rand
}

func capped(initial, maxDelay time.Duration, attempt int) float64 {
	if attempt < 1 {
		attempt = 1
	}
	d := float64(initial) * math.Pow(2, float64(attempt-1))
	if maxDelay > 0 && d > float64(maxDelay) {
		return float64(maxDelay)
	}
	return d
}

// DefaultStrategy returns the reconnect backoff used by worker agents:
// ExponentialWithJitter with 250ms initial and 15s max.
func DefaultStrategy() Strategy {
	return NewExponentialWithJitter(DefaultInitialDelay, 15*time.Second)
}

// DefaultInitialDelay is the first delay of DefaultStrategy.
const DefaultInitialDelay = 250 * time.Millisecond

// ──────────────────────────────────────────────────
// Retry loop
// ──────────────────────────────────────────────────

type permanentError struct{ err error }

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks err as not worth retrying. Retry returns the wrapped error
// immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Wait sleeps for d or until ctx is done, whichever comes first.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Retry calls fn until it succeeds, returns a Permanent error, ctx is
// cancelled, or maxAttempts calls have failed. A maxAttempts of zero
// retries forever. The last error from fn is returned.
func Retry(ctx context.Context, s Strategy, maxAttempts int, fn func(ctx context.Context) error) error {
	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if maxAttempts > 0 && attempt >= maxAttempts {
			return err
		}
		if waitErr := Wait(ctx, s.Delay(attempt)); waitErr != nil {
			return errors.Join(err, waitErr)
		}
	}
}
