package service

import (
	"context"
	"time"

	"github.com/maxduke/rsi6-monitor-bot/pkg/logger"
)

// RetryPolicy bounds how often a fallible upstream call is re-attempted.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

// RunWithRetries invokes op up to p.Attempts times with p.Delay between
// attempts, returning the first success. Exhaustion is "no data this cycle",
// never a fatal condition; callers get the zero value and false.
func RunWithRetries[T any](ctx context.Context, p RetryPolicy, description string, op func(ctx context.Context) (T, error)) (T, bool) {
	var zero T
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		out, err := op(ctx)
		if err == nil {
			return out, true
		}
		logger.Warn("%s failed (attempt %d/%d): %v", description, attempt, attempts, err)
		if attempt == attempts {
			break
		}
		if !sleepCtx(ctx, p.Delay) {
			break
		}
	}
	return zero, false
}

// sleepCtx sleeps for d, returning false when the context ends first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
