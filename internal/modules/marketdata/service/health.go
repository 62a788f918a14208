package service

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/maxduke/rsi6-monitor-bot/pkg/logger"
)

const defaultBlockProbeURL = "https://i.eastmoney.com/websitecaptcha/api/checkuser?callback=wsc_checkuser"

// HealthMonitor caches whether the primary source is currently serving a
// captcha wall. The cached answer lives for a TTL; a probe failure counts as
// "not blocked" so a flaky status endpoint does not starve the primary.
type HealthMonitor struct {
	client   *http.Client
	probeURL string
	ttl      time.Duration
	now      func() time.Time

	mu        sync.Mutex
	blocked   bool
	checkedAt time.Time
}

func NewHealthMonitor(client *http.Client, probeURL string, ttl time.Duration) *HealthMonitor {
	if probeURL == "" {
		probeURL = defaultBlockProbeURL
	}
	return &HealthMonitor{
		client:   client,
		probeURL: probeURL,
		ttl:      ttl,
		now:      time.Now,
	}
}

// PrimaryBlocked returns the cached block status, re-probing once per TTL
// window. Callers check this once per logical fetch, not once per instrument.
func (h *HealthMonitor) PrimaryBlocked(ctx context.Context) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	if !h.checkedAt.IsZero() && now.Sub(h.checkedAt) < h.ttl {
		return h.blocked
	}

	h.blocked = h.probe(ctx)
	h.checkedAt = now
	if h.blocked {
		logger.Warn("primary source reports a request block, switching to fallback until %s",
			now.Add(h.ttl).Format(time.TimeOnly))
	}
	return h.blocked
}

func (h *HealthMonitor) probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.probeURL, nil)
	if err != nil {
		return false
	}
	resp, err := h.client.Do(req)
	if err != nil {
		logger.Warn("block-status probe failed: %v", err)
		return false
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Warn("block-status probe read failed: %v", err)
		return false
	}
	text := string(body)
	return strings.Contains(text, `"block":true`) || strings.Contains(text, `"block": true`)
}
