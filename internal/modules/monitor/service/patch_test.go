package service

import (
	"math"
	"testing"
	"time"

	"github.com/maxduke/rsi6-monitor-bot/internal/models"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func seriesEndingAt(dates []string, closes []float64, factor float64) *models.PriceSeries {
	s := &models.PriceSeries{Code: "600000", AdjustFactor: factor}
	for i, d := range dates {
		s.Points = append(s.Points, models.PricePoint{Date: day(d), Close: closes[i]})
	}
	return s
}

func TestPatchSeriesAppendsNewDay(t *testing.T) {
	s := seriesEndingAt([]string{"2026-08-27", "2026-08-28"}, []float64{10.0, 10.1}, 1)
	got := PatchSeries(s, 10.3, day("2026-08-31"))

	if got.Len() != 3 {
		t.Fatalf("len = %d, want 3", got.Len())
	}
	last := got.Points[2]
	if !last.Date.Equal(day("2026-08-31")) {
		t.Errorf("appended date = %v", last.Date)
	}
	if last.Close != 10.3 {
		t.Errorf("appended close = %v, want 10.3", last.Close)
	}
	if s.Len() != 2 {
		t.Errorf("input series mutated, len = %d", s.Len())
	}
}

func TestPatchSeriesOverwritesToday(t *testing.T) {
	s := seriesEndingAt([]string{"2026-08-28", "2026-08-31"}, []float64{10.0, 10.1}, 1)
	got := PatchSeries(s, 10.5, day("2026-08-31"))

	if got.Len() != 2 {
		t.Fatalf("len = %d, want 2", got.Len())
	}
	if got.Points[1].Close != 10.5 {
		t.Errorf("today's close = %v, want 10.5", got.Points[1].Close)
	}
	if s.Points[1].Close != 10.1 {
		t.Errorf("input series mutated, close = %v", s.Points[1].Close)
	}
}

func TestPatchSeriesAppliesAdjustFactor(t *testing.T) {
	factor := 10.00 / 9.50
	s := seriesEndingAt([]string{"2026-08-28"}, []float64{10.0}, factor)
	got := PatchSeries(s, 10.10, day("2026-08-31"))

	want := 10.10 * factor
	if math.Abs(got.Points[1].Close-want) > 1e-9 {
		t.Errorf("patched close = %v, want %v", got.Points[1].Close, want)
	}
}
