package models

import (
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		code string
		want AssetClass
	}{
		{"600000", ClassStock},
		{"000001", ClassStock},
		{"300750", ClassStock},
		{"430047", ClassStock},
		{"830799", ClassStock},
		{"510300", ClassFund},
		{"159915", ClassFund},
		{"700001", ClassUnknown},
		{"", ClassUnknown},
	}
	for _, tt := range tests {
		if got := Classify(tt.code); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestRuleInBand(t *testing.T) {
	r := &Rule{RSIMin: 0, RSIMax: 30}
	for _, v := range []float64{0, 15, 30} {
		if !r.InBand(v) {
			t.Errorf("InBand(%v) = false", v)
		}
	}
	for _, v := range []float64{-0.01, 30.01, 70} {
		if r.InBand(v) {
			t.Errorf("InBand(%v) = true", v)
		}
	}
}

func TestCloseOn(t *testing.T) {
	d := func(s string) time.Time {
		v, _ := time.Parse("2006-01-02", s)
		return v
	}
	s := &PriceSeries{Points: []PricePoint{
		{Date: d("2026-08-27"), Close: 9.9},
		{Date: d("2026-08-28"), Close: 10.0},
	}}
	if px, ok := s.CloseOn(d("2026-08-27")); !ok || px != 9.9 {
		t.Errorf("CloseOn = %v, %v", px, ok)
	}
	if _, ok := s.CloseOn(d("2026-08-29")); ok {
		t.Error("unexpected close for missing date")
	}
	if !s.LastDate().Equal(d("2026-08-28")) {
		t.Errorf("LastDate = %v", s.LastDate())
	}
}
