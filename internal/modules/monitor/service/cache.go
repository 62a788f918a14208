package service

import (
	"sync"

	"github.com/maxduke/rsi6-monitor-bot/internal/models"
	"github.com/maxduke/rsi6-monitor-bot/pkg/logger"
)

// HistoryCache keys fetched histories by trading day. A day change discards
// the whole map at once: overnight history changes for every instrument
// simultaneously, so per-entry invalidation would only mask staleness.
type HistoryCache struct {
	mu      sync.Mutex
	day     string
	entries map[string]*models.PriceSeries
}

func NewHistoryCache() *HistoryCache {
	return &HistoryCache{entries: make(map[string]*models.PriceSeries)}
}

func (c *HistoryCache) rollover(day string) {
	if c.day != day {
		if c.day != "" {
			logger.Info("trading day changed %s -> %s, rebuilding history cache", c.day, day)
		}
		c.day = day
		c.entries = make(map[string]*models.PriceSeries)
	}
}

// Lookup returns the cached series for code on the given trading day,
// discarding everything first when the day rolled over.
func (c *HistoryCache) Lookup(day, code string) (*models.PriceSeries, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollover(day)
	s, ok := c.entries[code]
	return s, ok
}

// Store caches a series under the given trading day.
func (c *HistoryCache) Store(day, code string, s *models.PriceSeries) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollover(day)
	c.entries[code] = s
}

// Len reports the number of cached instruments for the current day.
func (c *HistoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
