package models

import (
	"strings"
	"time"
)

// AssetClass is derived from the leading digit of an instrument code and
// selects which upstream endpoints are valid for it.
type AssetClass int

const (
	ClassUnknown AssetClass = iota
	ClassStock
	ClassFund
)

func (c AssetClass) String() string {
	switch c {
	case ClassStock:
		return "stock"
	case ClassFund:
		return "fund"
	default:
		return "unknown"
	}
}

var (
	stockPrefixes = []string{"0", "3", "6", "4", "8"}
	fundPrefixes  = []string{"5", "1"}
)

// Classify maps an instrument code to its asset class. Stock prefixes win
// over fund prefixes where they overlap, matching the upstream convention.
func Classify(code string) AssetClass {
	for _, p := range stockPrefixes {
		if strings.HasPrefix(code, p) {
			return ClassStock
		}
	}
	for _, p := range fundPrefixes {
		if strings.HasPrefix(code, p) {
			return ClassFund
		}
	}
	return ClassUnknown
}

// PricePoint is one daily bar. Date carries no time-of-day component.
type PricePoint struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
	Amount float64
}

// PriceSeries is a date-unique, strictly increasing daily series for one
// instrument. AdjustFactor converts a raw live price onto the series' price
// scale; it is 1 for unadjusted series and for degraded fetches.
type PriceSeries struct {
	Code         string
	Points       []PricePoint
	AdjustFactor float64
	Degraded     bool
	Source       string
}

func (s *PriceSeries) Len() int { return len(s.Points) }

// LastDate returns the date of the newest point. Zero time when empty.
func (s *PriceSeries) LastDate() time.Time {
	if len(s.Points) == 0 {
		return time.Time{}
	}
	return s.Points[len(s.Points)-1].Date
}

// Closes returns the close column, oldest first.
func (s *PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Close
	}
	return out
}

// CloseOn returns the close at the given calendar date.
func (s *PriceSeries) CloseOn(date time.Time) (float64, bool) {
	y, m, d := date.Date()
	for i := len(s.Points) - 1; i >= 0; i-- {
		py, pm, pd := s.Points[i].Date.Date()
		if py == y && pm == m && pd == d {
			return s.Points[i].Close, true
		}
	}
	return 0, false
}
