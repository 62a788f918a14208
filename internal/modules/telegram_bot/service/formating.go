package service

import (
	"fmt"
	"strings"

	"github.com/maxduke/rsi6-monitor-bot/internal/models"
	monitorsvc "github.com/maxduke/rsi6-monitor-bot/internal/modules/monitor/service"
)

func formatAlert(in monitorsvc.NotificationIntent, period int) string {
	return fmt.Sprintf(
		"🔔 <b>RSI alert</b> (%d/%d)\n\n"+
			"<b>%s</b> (<code>%s</code>)\n"+
			"RSI(%d): <b>%.2f</b>\n"+
			"Band: [%.0f, %.0f]",
		in.Sequence, in.MaxCount,
		html(in.AssetName), in.AssetCode,
		period, in.RSI,
		in.RSIMin, in.RSIMax,
	)
}

func formatRuleList(rules []models.Rule) string {
	if len(rules) == 0 {
		return "You have no rules yet. Add one with /add CODE MIN MAX."
	}
	var b strings.Builder
	b.WriteString("📋 <b>Your rules</b>\n")
	for _, r := range rules {
		state := "✅"
		if !r.IsActive {
			state = "⏸"
		}
		fmt.Fprintf(&b, "\n%s <code>#%d</code> <b>%s</b> (<code>%s</code>) band [%.0f, %.0f]",
			state, r.ID, html(r.AssetName), r.AssetCode, r.RSIMin, r.RSIMax)
		if r.LastNotifiedRSI != nil {
			fmt.Fprintf(&b, "\n   last RSI %.2f, alerts sent %d", *r.LastNotifiedRSI, r.NotificationCount)
		}
	}
	return b.String()
}

func formatCheckLine(code, name string, res monitorsvc.RSIQueryResult, period int) string {
	switch res.Status {
	case monitorsvc.QueryOK:
		line := fmt.Sprintf("<b>%s</b> (<code>%s</code>): RSI(%d) <b>%.2f</b>, price %.3f",
			html(name), code, period, res.RSI, res.Live)
		if res.Degraded {
			line += " (unadjusted history)"
		}
		return line
	case monitorsvc.QueryPriceUnavailable:
		return fmt.Sprintf("<b>%s</b> (<code>%s</code>): live price unavailable", html(name), code)
	case monitorsvc.QueryHistoryUnavailable:
		return fmt.Sprintf("<b>%s</b> (<code>%s</code>): history unavailable", html(name), code)
	default:
		return fmt.Sprintf("<b>%s</b> (<code>%s</code>): not enough history for RSI(%d)", html(name), code, period)
	}
}

func formatBriefing(lines []string) string {
	var b strings.Builder
	b.WriteString("🌅 <b>Daily closing briefing</b>\n")
	for _, l := range lines {
		b.WriteString("\n")
		b.WriteString(l)
	}
	return b.String()
}

func formatBriefingLine(code, name string, rsi float64, ok bool, period int) string {
	if !ok {
		return fmt.Sprintf("<b>%s</b> (<code>%s</code>): RSI unavailable", html(name), code)
	}
	return fmt.Sprintf("<b>%s</b> (<code>%s</code>): closing RSI(%d) <b>%.2f</b>", html(name), code, period, rsi)
}

func helpText(period int) string {
	return fmt.Sprintf("🤖 <b>RSI(%d) monitor</b>\n\n"+
		"I watch A-share and ETF codes and alert you when the live RSI(%d) enters your band.\n\n", period, period) +
		"/add CODE MIN MAX — watch a code, e.g. <code>/add 510300 0 30</code>\n" +
		"/del ID — delete a rule\n" +
		"/list — your rules with trigger state\n" +
		"/on ID, /off ID — enable or disable a rule\n" +
		"/check — current RSI of your watched assets\n" +
		"/briefing on|off — daily closing summary"
}

const adminHelpText = "\n\nAdmin:\n" +
	"/add_w USER_ID — whitelist a user\n" +
	"/del_w USER_ID — remove a user\n" +
	"/list_w — whitelisted users"

func html(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
