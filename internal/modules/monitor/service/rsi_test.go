package service

import (
	"math"
	"testing"
)

func TestRSI(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		period int
		want   float64
	}{
		{
			name:   "mixed up moves",
			closes: []float64{10.0, 10.2, 10.1, 10.4, 10.3, 10.5, 10.6, 10.4, 10.7},
			period: 6,
			want:   72.70,
		},
		{
			name:   "near neutral",
			closes: []float64{9.8, 9.9, 10.05, 9.95, 10.1, 10.2, 10.0},
			period: 6,
			want:   53.78,
		},
		{
			name:   "all gains saturates at 100",
			closes: []float64{1, 2, 3, 4, 5, 6, 7, 8},
			period: 6,
			want:   100,
		},
		{
			name:   "all losses saturates at 0",
			closes: []float64{8, 7, 6, 5, 4, 3, 2, 1},
			period: 6,
			want:   0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RSI(tt.closes, tt.period)
			if !ok {
				t.Fatalf("RSI(%v, %d) not ok", tt.closes, tt.period)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("RSI = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRSITooShort(t *testing.T) {
	// period deltas need period+1 closes; exactly period is not enough.
	closes := []float64{1, 2, 3, 4, 5, 6}
	if _, ok := RSI(closes, 6); ok {
		t.Errorf("RSI accepted %d closes for period 6", len(closes))
	}
	if _, ok := RSI(append(closes, 7), 6); !ok {
		t.Errorf("RSI rejected %d closes for period 6", len(closes)+1)
	}
	if _, ok := RSI(closes, 0); ok {
		t.Error("RSI accepted period 0")
	}
}

func TestRSIRounding(t *testing.T) {
	got, ok := RSI([]float64{10.0, 10.2, 10.1, 10.4, 10.3, 10.5, 10.6, 10.4, 10.7}, 6)
	if !ok {
		t.Fatal("not ok")
	}
	if got != math.Round(got*100)/100 {
		t.Errorf("RSI = %v, not rounded to 2 decimals", got)
	}
}
