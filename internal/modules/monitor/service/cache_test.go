package service

import (
	"testing"

	"github.com/maxduke/rsi6-monitor-bot/internal/models"
)

func TestHistoryCacheSameDay(t *testing.T) {
	c := NewHistoryCache()
	s := &models.PriceSeries{Code: "510300"}

	c.Store("2026-08-31", "510300", s)
	got, ok := c.Lookup("2026-08-31", "510300")
	if !ok || got != s {
		t.Fatalf("Lookup = %v, %v", got, ok)
	}
	if _, ok := c.Lookup("2026-08-31", "600000"); ok {
		t.Error("unexpected hit for uncached code")
	}
}

func TestHistoryCacheRollover(t *testing.T) {
	c := NewHistoryCache()
	c.Store("2026-08-28", "510300", &models.PriceSeries{Code: "510300"})
	c.Store("2026-08-28", "600000", &models.PriceSeries{Code: "600000"})

	// A new trading day discards every entry at once.
	if _, ok := c.Lookup("2026-08-31", "510300"); ok {
		t.Error("entry survived day rollover")
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d after rollover, want 0", c.Len())
	}
}
