package service

import "github.com/maxduke/rsi6-monitor-bot/internal/models"

// Action is the outcome of evaluating one rule against a fresh RSI value.
type Action int

const (
	// ActionNone leaves the rule state untouched.
	ActionNone Action = iota
	// ActionNotify sends an alert and records the value with an
	// incremented notification count.
	ActionNotify
	// ActionPersistOnly records the value without alerting; the rule has
	// exhausted its notification budget for the current trigger.
	ActionPersistOnly
	// ActionReset clears the trigger state after the value left the band.
	ActionReset
)

// Evaluate decides what to do with a rule given the current RSI. The rule
// acts as hysteresis state: alerts repeat while the value stays in band up
// to maxCount, then go silent until the value exits the band, which
// re-arms the rule.
func Evaluate(r *models.Rule, rsi float64, maxCount int) Action {
	if r.InBand(rsi) {
		if r.NotificationCount < maxCount {
			return ActionNotify
		}
		return ActionPersistOnly
	}
	if r.LastNotifiedRSI != nil && r.InBand(*r.LastNotifiedRSI) {
		return ActionReset
	}
	return ActionNone
}
