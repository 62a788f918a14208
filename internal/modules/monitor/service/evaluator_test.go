package service

import (
	"testing"

	"github.com/maxduke/rsi6-monitor-bot/internal/models"
)

func TestEvaluate(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	tests := []struct {
		name     string
		last     *float64
		count    int
		rsi      float64
		maxCount int
		want     Action
	}{
		{
			name: "fresh rule enters band",
			rsi:  25, maxCount: 1,
			want: ActionNotify,
		},
		{
			name: "still in band with budget left",
			last: f(25), count: 1, rsi: 26, maxCount: 3,
			want: ActionNotify,
		},
		{
			name: "budget exhausted, still in band",
			last: f(25), count: 1, rsi: 26, maxCount: 1,
			want: ActionPersistOnly,
		},
		{
			name: "band exit after trigger re-arms",
			last: f(25), count: 1, rsi: 35, maxCount: 1,
			want: ActionReset,
		},
		{
			name: "out of band, never triggered",
			rsi:  35, maxCount: 1,
			want: ActionNone,
		},
		{
			name: "out of band, last recorded value also out",
			last: f(40), count: 0, rsi: 35, maxCount: 1,
			want: ActionNone,
		},
		{
			name: "band boundary counts as in band",
			rsi:  30, maxCount: 1,
			want: ActionNotify,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &models.Rule{
				RSIMin:            0,
				RSIMax:            30,
				LastNotifiedRSI:   tt.last,
				NotificationCount: tt.count,
			}
			if got := Evaluate(r, tt.rsi, tt.maxCount); got != tt.want {
				t.Errorf("Evaluate = %v, want %v", got, tt.want)
			}
		})
	}
}
