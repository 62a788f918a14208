package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/maxduke/rsi6-monitor-bot/internal/models"
	"github.com/maxduke/rsi6-monitor-bot/pkg/logger"
)

// Provider is one upstream history source. Implementations fetch and
// normalize into the canonical series schema; orchestration between them
// lives in Service.
type Provider interface {
	Name() string
	DailyHistory(ctx context.Context, code string, class models.AssetClass, start, end time.Time, adjusted bool) (*models.PriceSeries, error)
}

// SpotSource serves a single live price per instrument.
type SpotSource interface {
	LivePrice(ctx context.Context, code string) (float64, error)
}

// NameSource resolves instrument display names.
type NameSource interface {
	AssetName(ctx context.Context, code string) (string, error)
}

// Config carries the upstream etiquette knobs.
type Config struct {
	Retry            RetryPolicy
	RequestInterval  time.Duration
	FailureThreshold int
}

// Service fuses the primary and fallback sources into one history/spot
// surface with health gating, retries and adjust-factor reconciliation.
type Service struct {
	cfg      Config
	primary  Provider
	fallback Provider
	spot     SpotSource
	namer    NameSource
	health   *HealthMonitor
	loc      *time.Location
	now      func() time.Time
	failures *FailureCounter
	names    *nameCache
}

func New(cfg Config, primary, fallback Provider, spot SpotSource, namer NameSource, health *HealthMonitor, loc *time.Location) *Service {
	return &Service{
		cfg:      cfg,
		primary:  primary,
		fallback: fallback,
		spot:     spot,
		namer:    namer,
		health:   health,
		loc:      loc,
		now:      time.Now,
		failures: NewFailureCounter(cfg.FailureThreshold),
		names:    newNameCache(),
	}
}

// DailyHistory retrieves the daily series for code over the trailing window,
// primary source first unless it is blocked, fallback on failure or
// emptiness. Absence means "skip this instrument this cycle"; it never
// aborts a batch.
func (s *Service) DailyHistory(ctx context.Context, code string, windowDays int, adjusted bool) (*models.PriceSeries, bool) {
	class := models.Classify(code)
	if class == models.ClassUnknown {
		logger.Warn("cannot classify instrument %s, skipping", code)
		return nil, false
	}

	end := s.now().In(s.loc)
	start := end.AddDate(0, 0, -windowDays)

	series, ok := s.fetchWithFallback(ctx, code, class, start, end, adjusted)
	if !ok || series.Len() == 0 {
		return nil, false
	}

	if adjusted {
		if series.Source == s.fallback.Name() && class == models.ClassFund {
			// The fallback NAV table cannot serve adjusted fund data; keep
			// the raw scale and mark the series degraded.
			logger.Info("fund %s served by %s without adjustment, live prices used as-is", code, series.Source)
			series.AdjustFactor = 1
			series.Degraded = true
		} else {
			series.AdjustFactor = s.adjustFactor(ctx, code, class, series)
		}
	}
	return series, true
}

// fetchWithFallback runs the shared primary-then-fallback strategy and
// records which source actually served the data. Every fetch, including the
// adjust-factor refetch, pauses RequestInterval first so back-to-back
// history requests stay under the upstream rate limits.
func (s *Service) fetchWithFallback(ctx context.Context, code string, class models.AssetClass, start, end time.Time, adjusted bool) (*models.PriceSeries, bool) {
	if !sleepCtx(ctx, s.cfg.RequestInterval) {
		return nil, false
	}

	var series *models.PriceSeries

	if !s.health.PrimaryBlocked(ctx) {
		got, ok := RunWithRetries(ctx, s.cfg.Retry,
			fmt.Sprintf("fetch history %s (%s)", code, s.primary.Name()),
			func(ctx context.Context) (*models.PriceSeries, error) {
				return s.primary.DailyHistory(ctx, code, class, start, end, adjusted)
			})
		if ok {
			series = got
		}
	}

	if series == nil || series.Len() == 0 {
		logger.Info("falling back to %s for %s", s.fallback.Name(), code)
		got, ok := RunWithRetries(ctx, s.cfg.Retry,
			fmt.Sprintf("fetch history %s (%s)", code, s.fallback.Name()),
			func(ctx context.Context) (*models.PriceSeries, error) {
				return s.fallback.DailyHistory(ctx, code, class, start, end, adjusted)
			})
		if !ok {
			return nil, false
		}
		series = got
	}

	if series == nil || series.Len() == 0 {
		return nil, false
	}
	return series, true
}

// normalizePoints sorts by date and keeps the last row per calendar day, so
// the series invariant (strictly increasing, date-unique) always holds.
func normalizePoints(points []models.PricePoint) []models.PricePoint {
	if len(points) == 0 {
		return points
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	out := points[:0]
	for _, p := range points {
		if len(out) > 0 && sameDay(out[len(out)-1].Date, p.Date) {
			out[len(out)-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// today returns the current exchange-local calendar day, midnight.
func (s *Service) today() time.Time {
	n := s.now().In(s.loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, s.loc)
}
