package service

import (
	"context"
	"errors"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/maxduke/rsi6-monitor-bot/internal/modules/config"
	marketsvc "github.com/maxduke/rsi6-monitor-bot/internal/modules/marketdata/service"
	monitorsvc "github.com/maxduke/rsi6-monitor-bot/internal/modules/monitor/service"
	"github.com/maxduke/rsi6-monitor-bot/internal/modules/telegram_bot/service/pg"
	"github.com/maxduke/rsi6-monitor-bot/internal/runner"
	"github.com/maxduke/rsi6-monitor-bot/pkg/logger"
)

// Telegram is the bot surface: long-polling command handling plus outbound
// alert delivery for the runner.
type Telegram struct {
	bot       *tgbot.BotAPI
	cfg       *config.Config
	rules     *pg.RuleRepo
	whitelist *pg.WhitelistRepo
	engine    *monitorsvc.Engine
	market    *marketsvc.Service
}

func NewTelegram(
	cfg *config.Config,
	rules *pg.RuleRepo,
	whitelist *pg.WhitelistRepo,
	engine *monitorsvc.Engine,
	market *marketsvc.Service,
) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, err
	}
	return &Telegram{
		bot:       b,
		cfg:       cfg,
		rules:     rules,
		whitelist: whitelist,
		engine:    engine,
		market:    market,
	}, nil
}

// SendHTML delivers an HTML-formatted message, translating a 403 from the
// Bot API into runner.ErrForbidden.
func (t *Telegram) SendHTML(_ context.Context, chatID int64, html string) error {
	msg := tgbot.NewMessage(chatID, html)
	msg.ParseMode = tgbot.ModeHTML
	msg.DisableWebPagePreview = true
	_, err := t.bot.Send(msg)
	var apiErr *tgbot.Error
	if errors.As(err, &apiErr) && apiErr.Code == 403 {
		return runner.ErrForbidden
	}
	return err
}

// SendAlert delivers one rule-trigger alert.
func (t *Telegram) SendAlert(ctx context.Context, intent monitorsvc.NotificationIntent) error {
	return t.SendHTML(ctx, intent.UserID, formatAlert(intent, t.cfg.RSIPeriod))
}

// SendOperatorAlert delivers an upstream-failure warning to the admin.
func (t *Telegram) SendOperatorAlert(ctx context.Context, text string) error {
	return t.SendHTML(ctx, t.cfg.AdminUserID, "⚠️ "+text)
}

// SendBriefing delivers one user's daily closing summary.
func (t *Telegram) SendBriefing(ctx context.Context, userID int64, items []runner.BriefingItem) error {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, formatBriefingLine(it.Code, it.Name, it.RSI, it.OK, t.cfg.RSIPeriod))
	}
	return t.SendHTML(ctx, userID, formatBriefing(lines))
}

func (t *Telegram) registerCommands() {
	cmds := tgbot.NewSetMyCommands(
		tgbot.BotCommand{Command: "start", Description: "introduction and usage"},
		tgbot.BotCommand{Command: "help", Description: "command reference"},
		tgbot.BotCommand{Command: "add", Description: "add a rule: /add CODE MIN MAX"},
		tgbot.BotCommand{Command: "del", Description: "delete a rule: /del ID"},
		tgbot.BotCommand{Command: "list", Description: "list your rules"},
		tgbot.BotCommand{Command: "on", Description: "enable a rule: /on ID"},
		tgbot.BotCommand{Command: "off", Description: "disable a rule: /off ID"},
		tgbot.BotCommand{Command: "check", Description: "current RSI of your watched assets"},
		tgbot.BotCommand{Command: "briefing", Description: "daily briefing: /briefing on|off"},
	)
	if _, err := t.bot.Request(cmds); err != nil {
		logger.Error("register bot commands: %v", err)
	}
}

// seedNames preloads the display-name cache from stored rules so the first
// alerts of the day do not block on the quote endpoint.
func (t *Telegram) seedNames(ctx context.Context) {
	assets, err := t.rules.DistinctAssets(ctx)
	if err != nil {
		logger.Error("preload asset names: %v", err)
		return
	}
	for code, name := range assets {
		t.market.SeedName(code, name)
	}
	logger.Info("preloaded %d asset names from stored rules", len(assets))
}

// Start registers the command menu, seeds caches and blocks on the
// long-polling update loop until ctx is cancelled.
func (t *Telegram) Start(ctx context.Context) error {
	logger.Info("telegram bot authorized as @%s", t.bot.Self.UserName)

	t.registerCommands()
	t.seedNames(ctx)

	if err := t.whitelist.Add(ctx, t.cfg.AdminUserID); err != nil {
		logger.Error("seed admin into whitelist: %v", err)
	}

	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	updates := t.bot.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			t.handleUpdate(ctx, update)
		}
	}
}

func (t *Telegram) Stop() {
	t.bot.StopReceivingUpdates()
}
