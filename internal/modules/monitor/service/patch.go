package service

import (
	"time"

	"github.com/maxduke/rsi6-monitor-bot/internal/models"
)

// PatchSeries splices a raw live price into an adjusted daily history. The
// live quote is rescaled by the series' adjust factor so it lives on the
// same price basis as the history. When the history already carries a row
// for today that row's close is overwritten, otherwise a new row is
// appended; either way the input series is left untouched.
func PatchSeries(s *models.PriceSeries, live float64, today time.Time) *models.PriceSeries {
	patched := &models.PriceSeries{
		Code:         s.Code,
		Points:       make([]models.PricePoint, len(s.Points)),
		AdjustFactor: s.AdjustFactor,
		Degraded:     s.Degraded,
		Source:       s.Source,
	}
	copy(patched.Points, s.Points)

	adjusted := live * s.AdjustFactor
	day := today.Format("2006-01-02")

	if n := len(patched.Points); n > 0 && patched.Points[n-1].Date.Format("2006-01-02") == day {
		patched.Points[n-1].Close = adjusted
		return patched
	}
	patched.Points = append(patched.Points, models.PricePoint{
		Date:  time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location()),
		Close: adjusted,
	})
	return patched
}
