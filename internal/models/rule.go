package models

// Rule is one user-owned RSI band watch. A rule "triggers" while the current
// RSI sits inside [RSIMin, RSIMax]; NotificationCount tracks how many alerts
// were already sent for the current band entry.
type Rule struct {
	ID                int64
	UserID            int64
	AssetCode         string
	AssetName         string
	RSIMin            float64
	RSIMax            float64
	IsActive          bool
	LastNotifiedRSI   *float64
	NotificationCount int
}

// InBand reports whether v lies inside the rule's target band, inclusive.
func (r *Rule) InBand(v float64) bool {
	return r.RSIMin <= v && v <= r.RSIMax
}

// WhitelistEntry is one user allowed to talk to the bot.
type WhitelistEntry struct {
	UserID               int64
	DailyBriefingEnabled bool
}
