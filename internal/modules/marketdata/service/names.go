package service

import (
	"context"
	"sync"

	"github.com/maxduke/rsi6-monitor-bot/pkg/logger"
)

type nameCache struct {
	mu    sync.RWMutex
	names map[string]string
}

func newNameCache() *nameCache {
	return &nameCache{names: make(map[string]string)}
}

func (c *nameCache) get(code string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	name, ok := c.names[code]
	return name, ok
}

func (c *nameCache) put(code, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names[code] = name
}

// SeedName primes the display-name cache, used at startup with names already
// stored alongside rules.
func (s *Service) SeedName(code, name string) {
	if code == "" || name == "" {
		return
	}
	s.names.put(code, name)
}

// AssetName resolves a display name, cached per process. Lookup failures
// yield a synthetic "Asset_<code>" name and are not retried until restart.
func (s *Service) AssetName(ctx context.Context, code string) string {
	if name, ok := s.names.get(code); ok {
		return name
	}

	sleepCtx(ctx, s.cfg.RequestInterval)
	name, ok := RunWithRetries(ctx, s.cfg.Retry, "fetch asset name "+code,
		func(ctx context.Context) (string, error) {
			return s.namer.AssetName(ctx, code)
		})
	if !ok || name == "" {
		logger.Warn("could not resolve display name for %s", code)
		name = "Asset_" + code
	}
	s.names.put(code, name)
	return name
}
