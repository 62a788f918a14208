package service

import (
	"testing"
	"time"
)

func at(c *Calendar, s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", s, c.Location())
	if err != nil {
		panic(err)
	}
	return t
}

func TestIsTradingDay(t *testing.T) {
	c := New()
	tests := []struct {
		day  string
		want bool
	}{
		{"2026-08-31 10:00", true},  // Monday
		{"2026-08-29 10:00", false}, // Saturday
		{"2026-08-30 10:00", false}, // Sunday
		{"2026-10-01 10:00", false}, // National Day
		{"2026-02-17 10:00", false}, // Spring Festival
		{"2026-09-28 10:00", true},
	}
	for _, tt := range tests {
		if got := c.IsTradingDay(at(c, tt.day)); got != tt.want {
			t.Errorf("IsTradingDay(%s) = %v, want %v", tt.day, got, tt.want)
		}
	}
}

func TestInSession(t *testing.T) {
	c := New()
	tests := []struct {
		at   string
		want bool
	}{
		{"2026-08-31 09:29", false},
		{"2026-08-31 09:30", true},
		{"2026-08-31 11:30", true},
		{"2026-08-31 11:31", false}, // lunch break
		{"2026-08-31 12:59", false},
		{"2026-08-31 13:00", true},
		{"2026-08-31 15:00", true},
		{"2026-08-31 15:01", false},
		{"2026-08-29 10:00", false}, // weekend
		{"2026-10-01 10:00", false}, // holiday
	}
	for _, tt := range tests {
		if got := c.InSession(at(c, tt.at)); got != tt.want {
			t.Errorf("InSession(%s) = %v, want %v", tt.at, got, tt.want)
		}
	}
}

func TestDayKey(t *testing.T) {
	c := New()
	if got := c.DayKey(at(c, "2026-08-31 23:59")); got != "2026-08-31" {
		t.Errorf("DayKey = %q", got)
	}
}
