// Package retry implements the STAR recovery policy (spec.md §4.5,
// component C5): a bounded number of attempts at a protocol-level
// operation, with a fixed cool-down between attempts and a caller-supplied
// re-initialization hook invoked before the final attempt.
package retry

import (
	"context"
	"time"

	"github.com/labcore/labdrive/clog"
)

// DefaultAttempts and DefaultDelay mirror the cytomat driver's own retry
// loop (3 attempts total, 5s apart) — the same cadence the firmware
// expects across both instrument families.
const (
	DefaultAttempts = 3
	DefaultDelay    = 5 * time.Second
)

// Policy governs one retryable operation.
type Policy struct {
	Attempts int
	Delay    time.Duration
	// Reinit, if non-nil, runs once before the final attempt is made. A
	// typical implementation resets the instrument's error register and
	// re-sends an initialization command.
	Reinit func(ctx context.Context) error
	Log    clog.Clog
}

// New builds a Policy with the default attempts/delay.
func New(log clog.Clog) *Policy {
	return &Policy{Attempts: DefaultAttempts, Delay: DefaultDelay, Log: log}
}

// Do runs op up to p.Attempts times. It sleeps p.Delay between attempts
// (respecting ctx cancellation) and, if Reinit is set, calls it once right
// before the last attempt. It returns the last error seen, or nil on the
// first success.
func (p *Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if attempt == attempts && p.Reinit != nil {
			p.Log.Warn("retry: final attempt, re-initializing before retry")
			if err := p.Reinit(ctx); err != nil {
				p.Log.Error("retry: re-initialization failed: %v", err)
			}
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		p.Log.Warn("retry: attempt %d/%d failed: %v", attempt, attempts, lastErr)

		if attempt < attempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.Delay):
			}
		}
	}
	return lastErr
}
