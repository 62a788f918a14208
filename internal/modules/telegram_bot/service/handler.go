package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/maxduke/rsi6-monitor-bot/internal/models"
	"github.com/maxduke/rsi6-monitor-bot/internal/modules/telegram_bot/service/pg"
	"github.com/maxduke/rsi6-monitor-bot/pkg/logger"
)

func (t *Telegram) handleUpdate(ctx context.Context, update tgbot.Update) {
	msg := update.Message
	if msg == nil || !msg.IsCommand() {
		return
	}
	userID, ok := senderID(msg)
	if !ok {
		return
	}

	allowed, err := t.allowed(ctx, userID)
	if err != nil {
		logger.Error("whitelist check for %d: %v", userID, err)
		return
	}
	if !allowed {
		logger.Info("ignoring command %q from non-whitelisted user %d", msg.Command(), userID)
		return
	}

	args := strings.Fields(msg.CommandArguments())
	switch msg.Command() {
	case "start", "help":
		t.handleHelp(ctx, userID)
	case "add":
		t.handleAdd(ctx, userID, args)
	case "del":
		t.handleDel(ctx, userID, args)
	case "list":
		t.handleList(ctx, userID)
	case "on":
		t.handleToggle(ctx, userID, args, true)
	case "off":
		t.handleToggle(ctx, userID, args, false)
	case "check":
		t.handleCheck(ctx, userID)
	case "briefing":
		t.handleBriefingToggle(ctx, userID, args)
	case "add_w":
		t.handleWhitelistAdd(ctx, userID, args)
	case "del_w":
		t.handleWhitelistDel(ctx, userID, args)
	case "list_w":
		t.handleWhitelistList(ctx, userID)
	}
}

// senderID extracts the identity every command is keyed on: the sending
// user, never the chat. In a group the two differ.
func senderID(msg *tgbot.Message) (int64, bool) {
	if msg == nil || msg.From == nil {
		return 0, false
	}
	return msg.From.ID, true
}

func (t *Telegram) isAdmin(userID int64) bool {
	return userID == t.cfg.AdminUserID
}

func (t *Telegram) allowed(ctx context.Context, userID int64) (bool, error) {
	if t.isAdmin(userID) {
		return true, nil
	}
	return t.whitelist.Contains(ctx, userID)
}

func (t *Telegram) reply(ctx context.Context, userID int64, html string) {
	if err := t.SendHTML(ctx, userID, html); err != nil {
		logger.Error("reply to %d: %v", userID, err)
	}
}

func (t *Telegram) handleHelp(ctx context.Context, userID int64) {
	text := helpText(t.cfg.RSIPeriod)
	if t.isAdmin(userID) {
		text += adminHelpText
	}
	t.reply(ctx, userID, text)
}

func (t *Telegram) handleAdd(ctx context.Context, userID int64, args []string) {
	if len(args) != 3 {
		t.reply(ctx, userID, "Usage: /add CODE MIN MAX, e.g. <code>/add 510300 0 30</code>")
		return
	}
	code := args[0]
	min, errMin := strconv.ParseFloat(args[1], 64)
	max, errMax := strconv.ParseFloat(args[2], 64)
	if errMin != nil || errMax != nil || min < 0 || max > 100 || min >= max {
		t.reply(ctx, userID, "MIN and MAX must be numbers with 0 ≤ MIN &lt; MAX ≤ 100.")
		return
	}
	if models.Classify(code) == models.ClassUnknown {
		t.reply(ctx, userID, fmt.Sprintf("Unrecognized code <code>%s</code>.", code))
		return
	}

	// A live quote doubles as existence check for the code.
	if _, ok := t.market.LivePrice(ctx, code); !ok {
		t.reply(ctx, userID, fmt.Sprintf("No quote found for <code>%s</code>; check the code.", code))
		return
	}
	name := t.market.AssetName(ctx, code)

	rule, err := t.rules.Create(ctx, models.Rule{
		UserID:    userID,
		AssetCode: code,
		AssetName: name,
		RSIMin:    min,
		RSIMax:    max,
	})
	if errors.Is(err, pg.ErrDuplicateRule) {
		t.reply(ctx, userID, "You already have this exact rule.")
		return
	}
	if err != nil {
		logger.Error("create rule for %d: %v", userID, err)
		t.reply(ctx, userID, "Could not save the rule, try again later.")
		return
	}
	t.reply(ctx, userID, fmt.Sprintf(
		"✅ Rule <code>#%d</code> added: <b>%s</b> (<code>%s</code>) band [%.0f, %.0f].",
		rule.ID, html(name), code, min, max))
}

func (t *Telegram) handleDel(ctx context.Context, userID int64, args []string) {
	id, ok := parseID(args)
	if !ok {
		t.reply(ctx, userID, "Usage: /del ID (see /list for ids).")
		return
	}
	err := t.rules.Delete(ctx, userID, id)
	if errors.Is(err, pg.ErrNotFound) {
		t.reply(ctx, userID, fmt.Sprintf("No rule <code>#%d</code> of yours.", id))
		return
	}
	if err != nil {
		logger.Error("delete rule %d for %d: %v", id, userID, err)
		t.reply(ctx, userID, "Could not delete the rule, try again later.")
		return
	}
	t.reply(ctx, userID, fmt.Sprintf("🗑 Rule <code>#%d</code> deleted.", id))
}

func (t *Telegram) handleList(ctx context.Context, userID int64) {
	rules, err := t.rules.ListByUser(ctx, userID)
	if err != nil {
		logger.Error("list rules for %d: %v", userID, err)
		t.reply(ctx, userID, "Could not load your rules, try again later.")
		return
	}
	t.reply(ctx, userID, formatRuleList(rules))
}

func (t *Telegram) handleToggle(ctx context.Context, userID int64, args []string, active bool) {
	verb := "/on"
	if !active {
		verb = "/off"
	}
	id, ok := parseID(args)
	if !ok {
		t.reply(ctx, userID, fmt.Sprintf("Usage: %s ID (see /list for ids).", verb))
		return
	}
	err := t.rules.SetActive(ctx, userID, id, active)
	if errors.Is(err, pg.ErrNotFound) {
		t.reply(ctx, userID, fmt.Sprintf("No rule <code>#%d</code> of yours.", id))
		return
	}
	if err != nil {
		logger.Error("toggle rule %d for %d: %v", id, userID, err)
		t.reply(ctx, userID, "Could not update the rule, try again later.")
		return
	}
	if active {
		t.reply(ctx, userID, fmt.Sprintf("▶️ Rule <code>#%d</code> enabled.", id))
	} else {
		t.reply(ctx, userID, fmt.Sprintf("⏸ Rule <code>#%d</code> disabled.", id))
	}
}

func (t *Telegram) handleCheck(ctx context.Context, userID int64) {
	rules, err := t.rules.ListByUser(ctx, userID)
	if err != nil {
		logger.Error("list rules for %d: %v", userID, err)
		t.reply(ctx, userID, "Could not load your rules, try again later.")
		return
	}
	type asset struct{ code, name string }
	var assets []asset
	seen := map[string]struct{}{}
	for _, r := range rules {
		if !r.IsActive {
			continue
		}
		if _, ok := seen[r.AssetCode]; ok {
			continue
		}
		seen[r.AssetCode] = struct{}{}
		assets = append(assets, asset{r.AssetCode, r.AssetName})
	}
	if len(assets) == 0 {
		t.reply(ctx, userID, "You have no active rules. Add one with /add CODE MIN MAX.")
		return
	}

	// One batch through the aggregator keeps ad-hoc checks paced and
	// failure-counted like the scheduled cycle.
	codes := make([]string, 0, len(assets))
	for _, a := range assets {
		codes = append(codes, a.code)
	}
	results := t.engine.QueryRSIBatch(ctx, codes)

	lines := make([]string, 0, len(assets))
	for _, a := range assets {
		lines = append(lines, formatCheckLine(a.code, a.name, results[a.code], t.cfg.RSIPeriod))
	}
	t.reply(ctx, userID, "📈 <b>Current RSI</b>\n\n"+strings.Join(lines, "\n"))
}

func (t *Telegram) handleBriefingToggle(ctx context.Context, userID int64, args []string) {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		t.reply(ctx, userID, "Usage: /briefing on|off")
		return
	}
	enabled := args[0] == "on"
	err := t.whitelist.SetBriefing(ctx, userID, enabled)
	if err != nil {
		logger.Error("set briefing for %d: %v", userID, err)
		t.reply(ctx, userID, "Could not update the briefing setting, try again later.")
		return
	}
	if enabled {
		t.reply(ctx, userID, "🌅 Daily briefing enabled.")
	} else {
		t.reply(ctx, userID, "Daily briefing disabled.")
	}
}

func (t *Telegram) handleWhitelistAdd(ctx context.Context, userID int64, args []string) {
	if !t.isAdmin(userID) {
		return
	}
	id, ok := parseID(args)
	if !ok {
		t.reply(ctx, userID, "Usage: /add_w USER_ID")
		return
	}
	if err := t.whitelist.Add(ctx, id); err != nil {
		logger.Error("whitelist add %d: %v", id, err)
		t.reply(ctx, userID, "Could not update the whitelist, try again later.")
		return
	}
	t.reply(ctx, userID, fmt.Sprintf("✅ User <code>%d</code> whitelisted.", id))
}

func (t *Telegram) handleWhitelistDel(ctx context.Context, userID int64, args []string) {
	if !t.isAdmin(userID) {
		return
	}
	id, ok := parseID(args)
	if !ok {
		t.reply(ctx, userID, "Usage: /del_w USER_ID")
		return
	}
	if id == t.cfg.AdminUserID {
		t.reply(ctx, userID, "The admin cannot be removed from the whitelist.")
		return
	}
	err := t.whitelist.Remove(ctx, id)
	if errors.Is(err, pg.ErrNotFound) {
		t.reply(ctx, userID, fmt.Sprintf("User <code>%d</code> is not whitelisted.", id))
		return
	}
	if err != nil {
		logger.Error("whitelist remove %d: %v", id, err)
		t.reply(ctx, userID, "Could not update the whitelist, try again later.")
		return
	}
	t.reply(ctx, userID, fmt.Sprintf("🗑 User <code>%d</code> removed from the whitelist.", id))
}

func (t *Telegram) handleWhitelistList(ctx context.Context, userID int64) {
	if !t.isAdmin(userID) {
		return
	}
	entries, err := t.whitelist.List(ctx)
	if err != nil {
		logger.Error("whitelist list: %v", err)
		t.reply(ctx, userID, "Could not load the whitelist, try again later.")
		return
	}
	if len(entries) == 0 {
		t.reply(ctx, userID, "The whitelist is empty.")
		return
	}
	var b strings.Builder
	b.WriteString("👥 <b>Whitelist</b>\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "\n<code>%d</code>", e.UserID)
		if e.UserID == t.cfg.AdminUserID {
			b.WriteString(" (admin)")
		}
		if e.DailyBriefingEnabled {
			b.WriteString(" 🌅")
		}
	}
	t.reply(ctx, userID, b.String())
}

func parseID(args []string) (int64, bool) {
	if len(args) != 1 {
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
