package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/maxduke/rsi6-monitor-bot/pkg/logger"
)

// FailureCounter tracks consecutive zero-success spot cycles and arms a
// single operator alert once the threshold is crossed. Any successful cycle
// resets both the count and the alert latch.
type FailureCounter struct {
	mu        sync.Mutex
	threshold int
	count     int
	alerted   bool
}

func NewFailureCounter(threshold int) *FailureCounter {
	return &FailureCounter{threshold: threshold}
}

// RecordFailure bumps the count and reports whether the one-shot operator
// alert should fire now.
func (f *FailureCounter) RecordFailure() (count int, alertNow bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count++
	if f.count >= f.threshold && !f.alerted {
		f.alerted = true
		return f.count, true
	}
	return f.count, false
}

// RecordSuccess resets the counter. Returns true when it was previously
// failing so the recovery can be logged once.
func (f *FailureCounter) RecordSuccess() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	wasFailing := f.count > 0
	f.count = 0
	f.alerted = false
	return wasFailing
}

// LivePrice fetches one live quote, guarded by the retry policy. Every call
// pauses RequestInterval first; this per-request pacing is the rate limiter
// for all spot traffic, scheduled or on demand.
func (s *Service) LivePrice(ctx context.Context, code string) (float64, bool) {
	if !sleepCtx(ctx, s.cfg.RequestInterval) {
		return 0, false
	}
	return RunWithRetries(ctx, s.cfg.Retry,
		fmt.Sprintf("fetch live price %s", code),
		func(ctx context.Context) (float64, error) {
			return s.spot.LivePrice(ctx, code)
		})
}

// SpotPrices fetches live prices for a batch, one paced request per
// instrument. The sequential loop is deliberate; do not parallelize it.
// Success means at least one code yielded a price; alertNow fires once when
// the consecutive-failure threshold is hit.
func (s *Service) SpotPrices(ctx context.Context, codes []string) (prices map[string]float64, success, alertNow bool) {
	prices = make(map[string]float64, len(codes))
	for _, code := range codes {
		if ctx.Err() != nil {
			break
		}
		if px, ok := s.LivePrice(ctx, code); ok {
			prices[code] = px
		}
	}

	if len(prices) == 0 && len(codes) > 0 {
		count, alert := s.failures.RecordFailure()
		logger.Warn("no live prices obtained this cycle (%d consecutive failures)", count)
		return prices, false, alert
	}

	if s.failures.RecordSuccess() {
		logger.Info("live price fetch recovered, failure counter reset")
	}
	return prices, true, false
}

// FailureCount exposes the current consecutive-failure tally.
func (s *Service) FailureCount() int {
	s.failures.mu.Lock()
	defer s.failures.mu.Unlock()
	return s.failures.count
}
