package service

import (
	"context"
	"fmt"
	"time"

	"github.com/maxduke/rsi6-monitor-bot/internal/models"
	"github.com/maxduke/rsi6-monitor-bot/pkg/logger"
)

// MarketData is the slice of the market data service the engine consumes.
type MarketData interface {
	DailyHistory(ctx context.Context, code string, windowDays int, adjusted bool) (*models.PriceSeries, bool)
	SpotPrices(ctx context.Context, codes []string) (map[string]float64, bool, bool)
	LivePrice(ctx context.Context, code string) (float64, bool)
}

// RuleStore persists rule trigger state between cycles.
type RuleStore interface {
	ActiveRules(ctx context.Context) ([]models.Rule, error)
	RecordNotified(ctx context.Context, ruleID int64, rsi float64) error
	RecordSeen(ctx context.Context, ruleID int64, rsi float64) error
	ResetTrigger(ctx context.Context, ruleID int64, rsi float64) error
}

// Clock yields the exchange-local time the engine reasons in.
type Clock interface {
	Now() time.Time
	DayKey(t time.Time) string
}

// NotificationIntent is one alert the engine wants delivered. The rule's
// counter is only advanced once the transport confirms delivery, so a
// send failure leaves the rule armed for the next cycle.
type NotificationIntent struct {
	UserID    int64
	RuleID    int64
	AssetCode string
	AssetName string
	RSIMin    float64
	RSIMax    float64
	RSI       float64
	Sequence  int
	MaxCount  int
}

// CycleResult is everything one evaluation pass produced.
type CycleResult struct {
	Intents       []NotificationIntent
	OperatorAlert string
	Evaluated     int
}

// Config carries the tunables of one engine instance.
type Config struct {
	RSIPeriod     int
	UseAdjust     bool
	HistFetchDays int
	MaxPerTrigger int
}

// Engine evaluates RSI rules against live-patched price histories.
type Engine struct {
	cfg    Config
	market MarketData
	rules  RuleStore
	clock  Clock
	cache  *HistoryCache
}

func NewEngine(cfg Config, market MarketData, rules RuleStore, clock Clock) *Engine {
	return &Engine{
		cfg:    cfg,
		market: market,
		rules:  rules,
		clock:  clock,
		cache:  NewHistoryCache(),
	}
}

// history returns today's cached daily series for code, fetching it once
// per trading day. The bool is false when no source could serve the code.
// Only successes are cached: a fetch that fails to a transient rate limit
// must be retried on the next cycle, not silenced for the rest of the day.
func (e *Engine) history(ctx context.Context, code string) (*models.PriceSeries, bool) {
	day := e.clock.DayKey(e.clock.Now())
	if s, ok := e.cache.Lookup(day, code); ok {
		return s, true
	}
	s, ok := e.market.DailyHistory(ctx, code, e.cfg.HistFetchDays, e.cfg.UseAdjust)
	if !ok {
		return nil, false
	}
	e.cache.Store(day, code, s)
	return s, true
}

// liveRSI computes the current RSI for code given an already-fetched spot
// price, splicing the quote into the cached history first.
func (e *Engine) liveRSI(ctx context.Context, code string, live float64) (float64, bool) {
	s, ok := e.history(ctx, code)
	if !ok {
		return 0, false
	}
	patched := PatchSeries(s, live, e.clock.Now())
	return RSI(patched.Closes(), e.cfg.RSIPeriod)
}

// EvaluateCycle runs one monitoring pass over all active rules: fetch spot
// prices, compute patched RSI per instrument, and run every rule through
// the hysteresis evaluator. Rules whose evaluation demands an alert come
// back as intents; the caller delivers them and reports back through
// ConfirmDelivered. Store updates that need no delivery (persist-only,
// reset) are applied here directly.
func (e *Engine) EvaluateCycle(ctx context.Context) (*CycleResult, error) {
	rules, err := e.rules.ActiveRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("monitor: load active rules: %w", err)
	}
	res := &CycleResult{}
	if len(rules) == 0 {
		return res, nil
	}

	codes := uniqueCodes(rules)
	prices, _, alertNow := e.market.SpotPrices(ctx, codes)
	if alertNow {
		res.OperatorAlert = fmt.Sprintf("All %d spot price fetches failed repeatedly; upstream sources may be blocking us.", len(codes))
	}

	rsiByCode := make(map[string]float64, len(prices))
	for code, live := range prices {
		if v, ok := e.liveRSI(ctx, code, live); ok {
			rsiByCode[code] = v
		}
	}

	for i := range rules {
		r := &rules[i]
		rsi, ok := rsiByCode[r.AssetCode]
		if !ok {
			continue
		}
		res.Evaluated++
		switch Evaluate(r, rsi, e.cfg.MaxPerTrigger) {
		case ActionNotify:
			res.Intents = append(res.Intents, NotificationIntent{
				UserID:    r.UserID,
				RuleID:    r.ID,
				AssetCode: r.AssetCode,
				AssetName: r.AssetName,
				RSIMin:    r.RSIMin,
				RSIMax:    r.RSIMax,
				RSI:       rsi,
				Sequence:  r.NotificationCount + 1,
				MaxCount:  e.cfg.MaxPerTrigger,
			})
		case ActionPersistOnly:
			if err := e.rules.RecordSeen(ctx, r.ID, rsi); err != nil {
				logger.Error("record seen rsi for rule %d: %v", r.ID, err)
			}
		case ActionReset:
			if err := e.rules.ResetTrigger(ctx, r.ID, rsi); err != nil {
				logger.Error("reset trigger for rule %d: %v", r.ID, err)
			} else {
				logger.Info("rule %d re-armed: RSI %.2f left band [%.0f, %.0f]", r.ID, rsi, r.RSIMin, r.RSIMax)
			}
		}
	}
	return res, nil
}

// ConfirmDelivered advances a rule's trigger state after the transport
// accepted the alert built from intent.
func (e *Engine) ConfirmDelivered(ctx context.Context, intent NotificationIntent) error {
	return e.rules.RecordNotified(ctx, intent.RuleID, intent.RSI)
}

// RSIQueryStatus classifies why an on-demand RSI query produced no value.
type RSIQueryStatus int

const (
	QueryOK RSIQueryStatus = iota
	QueryPriceUnavailable
	QueryHistoryUnavailable
	QueryComputeFailed
)

// RSIQueryResult is the answer to an on-demand per-instrument query.
type RSIQueryResult struct {
	Status   RSIQueryStatus
	RSI      float64
	Live     float64
	Degraded bool
}

// QueryRSI computes the live-patched RSI for a single instrument on demand.
func (e *Engine) QueryRSI(ctx context.Context, code string) RSIQueryResult {
	live, ok := e.market.LivePrice(ctx, code)
	if !ok {
		return RSIQueryResult{Status: QueryPriceUnavailable}
	}
	return e.queryWithLive(ctx, code, live)
}

// QueryRSIBatch answers an on-demand query for several instruments through
// the spot aggregator, so ad-hoc checks are paced and failure-counted the
// same way the monitoring cycle is.
func (e *Engine) QueryRSIBatch(ctx context.Context, codes []string) map[string]RSIQueryResult {
	prices, _, _ := e.market.SpotPrices(ctx, codes)
	out := make(map[string]RSIQueryResult, len(codes))
	for _, code := range codes {
		live, ok := prices[code]
		if !ok {
			out[code] = RSIQueryResult{Status: QueryPriceUnavailable}
			continue
		}
		out[code] = e.queryWithLive(ctx, code, live)
	}
	return out
}

func (e *Engine) queryWithLive(ctx context.Context, code string, live float64) RSIQueryResult {
	s, ok := e.history(ctx, code)
	if !ok {
		return RSIQueryResult{Status: QueryHistoryUnavailable, Live: live}
	}
	patched := PatchSeries(s, live, e.clock.Now())
	v, ok := RSI(patched.Closes(), e.cfg.RSIPeriod)
	if !ok {
		return RSIQueryResult{Status: QueryComputeFailed, Live: live, Degraded: s.Degraded}
	}
	return RSIQueryResult{Status: QueryOK, RSI: v, Live: live, Degraded: s.Degraded}
}

// ClosingRSI computes the end-of-day RSI for code. The cached history may
// still hold a mid-session provisional bar, so the last traded price is
// fetched and spliced in the same way the check cycle does.
func (e *Engine) ClosingRSI(ctx context.Context, code string) (float64, bool) {
	live, ok := e.market.LivePrice(ctx, code)
	if !ok {
		return 0, false
	}
	s, ok := e.history(ctx, code)
	if !ok {
		return 0, false
	}
	patched := PatchSeries(s, live, e.clock.Now())
	return RSI(patched.Closes(), e.cfg.RSIPeriod)
}

func uniqueCodes(rules []models.Rule) []string {
	seen := make(map[string]struct{}, len(rules))
	codes := make([]string, 0, len(rules))
	for _, r := range rules {
		if _, ok := seen[r.AssetCode]; ok {
			continue
		}
		seen[r.AssetCode] = struct{}{}
		codes = append(codes, r.AssetCode)
	}
	return codes
}
