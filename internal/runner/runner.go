package runner

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/robfig/cron/v3"

	calendarsvc "github.com/maxduke/rsi6-monitor-bot/internal/modules/calendar/service"
	"github.com/maxduke/rsi6-monitor-bot/internal/modules/config"
	monitorsvc "github.com/maxduke/rsi6-monitor-bot/internal/modules/monitor/service"
	"github.com/maxduke/rsi6-monitor-bot/internal/modules/telegram_bot/service/pg"
	"github.com/maxduke/rsi6-monitor-bot/pkg/logger"
)

// ErrForbidden is re-declared here to keep the transport dependency
// one-directional; the notifier maps its own blocked-recipient error onto
// it before returning.
var ErrForbidden = errors.New("recipient blocked the bot")

// BriefingItem is one line of a user's daily closing summary.
type BriefingItem struct {
	Code string
	Name string
	RSI  float64
	OK   bool
}

// Notifier delivers engine output to users. A Forbidden delivery error
// means the recipient blocked the bot; callers log and move on.
type Notifier interface {
	SendAlert(ctx context.Context, intent monitorsvc.NotificationIntent) error
	SendOperatorAlert(ctx context.Context, text string) error
	SendBriefing(ctx context.Context, userID int64, items []BriefingItem) error
}

// Runner owns the cron schedule: the in-session check cycle and the daily
// closing briefing.
type Runner struct {
	cfg       *config.Config
	engine    *monitorsvc.Engine
	notifier  Notifier
	cal       *calendarsvc.Calendar
	rules     *pg.RuleRepo
	whitelist *pg.WhitelistRepo
	cron      *cron.Cron
}

func New(
	cfg *config.Config,
	engine *monitorsvc.Engine,
	notifier Notifier,
	cal *calendarsvc.Calendar,
	rules *pg.RuleRepo,
	whitelist *pg.WhitelistRepo,
) *Runner {
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(cal.Location()),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	return &Runner{
		cfg:       cfg,
		engine:    engine,
		notifier:  notifier,
		cal:       cal,
		rules:     rules,
		whitelist: whitelist,
		cron:      c,
	}
}

// Start registers the jobs and launches the scheduler.
func (r *Runner) Start(ctx context.Context) error {
	checkSpec := fmt.Sprintf("@every %s", r.cfg.CheckInterval)
	if _, err := r.cron.AddFunc(checkSpec, func() { r.runCheckCycle(ctx) }); err != nil {
		return fmt.Errorf("runner: schedule check cycle: %w", err)
	}

	if r.cfg.EnableDailyBriefing {
		specs, err := briefingSpecs(r.cfg.BriefingTimes)
		if err != nil {
			return fmt.Errorf("runner: %w", err)
		}
		for _, spec := range specs {
			if _, err := r.cron.AddFunc(spec, func() { r.runBriefing(ctx) }); err != nil {
				return fmt.Errorf("runner: schedule briefing %q: %w", spec, err)
			}
		}
		logger.Info("daily briefing scheduled at %s", r.cfg.BriefingTimes)
	}

	r.cron.Start()
	logger.Info("runner started, check cycle every %s", r.cfg.CheckInterval)
	return nil
}

// Stop halts the scheduler and waits for an in-flight job to finish.
func (r *Runner) Stop(ctx context.Context) error {
	stopped := r.cron.Stop()
	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) runCheckCycle(ctx context.Context) {
	if !r.cal.InSession(r.cal.Now()) {
		return
	}
	if d := r.cfg.RandomDelayMax; d > 0 {
		jitter := time.Duration(rand.Int63n(int64(d)))
		if !sleepCtx(ctx, jitter) {
			return
		}
	}

	span := opentracing.StartSpan("check_cycle")
	defer span.Finish()
	ctx = opentracing.ContextWithSpan(ctx, span)

	res, err := r.engine.EvaluateCycle(ctx)
	if err != nil {
		logger.Error("check cycle: %v", err)
		return
	}
	span.SetTag("rules.evaluated", res.Evaluated)
	span.SetTag("alerts.pending", len(res.Intents))

	if res.OperatorAlert != "" {
		if err := r.notifier.SendOperatorAlert(ctx, res.OperatorAlert); err != nil {
			logger.Error("operator alert: %v", err)
		}
	}

	for _, intent := range res.Intents {
		err := r.notifier.SendAlert(ctx, intent)
		if errors.Is(err, ErrForbidden) {
			logger.Info("user %d blocked the bot, skipping alert for rule %d", intent.UserID, intent.RuleID)
			continue
		}
		if err != nil {
			logger.Error("send alert for rule %d: %v", intent.RuleID, err)
			continue
		}
		if err := r.engine.ConfirmDelivered(ctx, intent); err != nil {
			logger.Error("confirm alert for rule %d: %v", intent.RuleID, err)
		}
	}
}

func (r *Runner) runBriefing(ctx context.Context) {
	if !r.cal.IsTradingDay(r.cal.Now()) {
		return
	}

	span := opentracing.StartSpan("daily_briefing")
	defer span.Finish()
	ctx = opentracing.ContextWithSpan(ctx, span)

	users, err := r.whitelist.BriefingUsers(ctx)
	if err != nil {
		logger.Error("briefing: load users: %v", err)
		return
	}
	for _, userID := range users {
		items, err := r.briefingItems(ctx, userID)
		if err != nil {
			logger.Error("briefing for %d: %v", userID, err)
			continue
		}
		if len(items) == 0 {
			continue
		}
		err = r.notifier.SendBriefing(ctx, userID, items)
		if errors.Is(err, ErrForbidden) {
			logger.Info("user %d blocked the bot, skipping briefing", userID)
			continue
		}
		if err != nil {
			logger.Error("send briefing to %d: %v", userID, err)
		}
	}
}

func (r *Runner) briefingItems(ctx context.Context, userID int64) ([]BriefingItem, error) {
	rules, err := r.rules.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	var items []BriefingItem
	seen := map[string]struct{}{}
	for _, rule := range rules {
		if !rule.IsActive {
			continue
		}
		if _, ok := seen[rule.AssetCode]; ok {
			continue
		}
		seen[rule.AssetCode] = struct{}{}
		rsi, ok := r.engine.ClosingRSI(ctx, rule.AssetCode)
		items = append(items, BriefingItem{Code: rule.AssetCode, Name: rule.AssetName, RSI: rsi, OK: ok})
	}
	return items, nil
}

// briefingSpecs turns comma-separated HH:MM times into six-field cron specs.
func briefingSpecs(times string) ([]string, error) {
	var specs []string
	for _, raw := range strings.Split(times, ",") {
		hhmm := strings.TrimSpace(raw)
		if hhmm == "" {
			continue
		}
		parts := strings.Split(hhmm, ":")
		if len(parts) != 2 {
			return nil, fmt.Errorf("bad briefing time %q, want HH:MM", hhmm)
		}
		hh, errH := strconv.Atoi(parts[0])
		mm, errM := strconv.Atoi(parts[1])
		if errH != nil || errM != nil || hh < 0 || hh > 23 || mm < 0 || mm > 59 {
			return nil, fmt.Errorf("bad briefing time %q, want HH:MM", hhmm)
		}
		specs = append(specs, fmt.Sprintf("0 %d %d * * *", mm, hh))
	}
	if len(specs) == 0 {
		return nil, errors.New("no briefing times configured")
	}
	return specs, nil
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
