package service

import (
	"context"
	"time"

	"github.com/maxduke/rsi6-monitor-bot/internal/models"
	"github.com/maxduke/rsi6-monitor-bot/pkg/logger"
)

// adjustFactor computes the scalar converting a raw live quote onto the
// adjusted scale of series: adjustedClose / rawClose at a shared base date.
// Anything that prevents the computation degrades to 1.0 so the cycle keeps
// going with the live price as-is.
func (s *Service) adjustFactor(ctx context.Context, code string, class models.AssetClass, adjusted *models.PriceSeries) float64 {
	if adjusted.Len() == 0 {
		return 1
	}

	// Today's adjusted close may still be provisional on some providers, so
	// anchor on the previous row when the series already reaches today.
	baseDate := adjusted.LastDate()
	if baseDate.Format("2006-01-02") >= s.today().Format("2006-01-02") && adjusted.Len() > 1 {
		baseDate = adjusted.Points[adjusted.Len()-2].Date
	}

	rawStart := baseDate.AddDate(0, 0, -30)
	rawEnd := baseDate.AddDate(0, 0, 1)
	raw, ok := s.fetchWithFallback(ctx, code, class, rawStart, rawEnd, false)
	if !ok || raw.Len() == 0 {
		logger.Info("no unadjusted data for %s, adjust factor defaults to 1", code)
		return 1
	}

	rawClose, ok := raw.CloseOn(baseDate)
	if !ok || rawClose == 0 {
		logger.Info("base date %s missing from unadjusted data for %s, adjust factor defaults to 1",
			baseDate.Format(time.DateOnly), code)
		return 1
	}
	adjClose, ok := adjusted.CloseOn(baseDate)
	if !ok {
		return 1
	}
	return adjClose / rawClose
}
