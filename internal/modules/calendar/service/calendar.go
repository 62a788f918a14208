package service

import "time"

// CST is China Standard Time, used when the tz database is unavailable.
var CST = time.FixedZone("CST", 8*3600)

// Session windows of the Shanghai/Shenzhen exchanges, exchange-local minutes
// since midnight: 09:30–11:30 and 13:00–15:00.
const (
	morningOpen    = 9*60 + 30
	morningClose   = 11*60 + 30
	afternoonOpen  = 13 * 60
	afternoonClose = 15 * 60
)

// holidays lists exchange closures that fall on weekdays, keyed YYYY-MM-DD.
// Extend once per year when the exchange publishes the schedule.
var holidays = map[string]struct{}{
	// 2025
	"2025-01-01": {},
	"2025-01-28": {}, "2025-01-29": {}, "2025-01-30": {}, "2025-01-31": {},
	"2025-02-03": {}, "2025-02-04": {},
	"2025-04-04": {},
	"2025-05-01": {}, "2025-05-02": {}, "2025-05-05": {},
	"2025-06-02": {},
	"2025-10-01": {}, "2025-10-02": {}, "2025-10-03": {},
	"2025-10-06": {}, "2025-10-07": {}, "2025-10-08": {},
	// 2026
	"2026-01-01": {}, "2026-01-02": {},
	"2026-02-16": {}, "2026-02-17": {}, "2026-02-18": {},
	"2026-02-19": {}, "2026-02-20": {},
	"2026-04-06": {},
	"2026-05-01": {}, "2026-05-04": {}, "2026-05-05": {},
	"2026-06-19": {},
	"2026-09-25": {},
	"2026-10-01": {}, "2026-10-02": {},
	"2026-10-05": {}, "2026-10-06": {}, "2026-10-07": {},
}

// Calendar answers "is the exchange open" questions in exchange-local time.
type Calendar struct {
	loc *time.Location
}

func New() *Calendar {
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		loc = CST
	}
	return &Calendar{loc: loc}
}

// Now returns the current exchange-local time.
func (c *Calendar) Now() time.Time {
	return time.Now().In(c.loc)
}

// Location returns the exchange time zone.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// DayKey formats t as the trading-day cache key.
func (c *Calendar) DayKey(t time.Time) string {
	return t.In(c.loc).Format("2006-01-02")
}

// IsTradingDay reports whether t falls on a weekday that is not an exchange
// holiday.
func (c *Calendar) IsTradingDay(t time.Time) bool {
	local := t.In(c.loc)
	wd := local.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	_, closed := holidays[local.Format("2006-01-02")]
	return !closed
}

// InSession reports whether t falls inside a trading session.
func (c *Calendar) InSession(t time.Time) bool {
	if !c.IsTradingDay(t) {
		return false
	}
	local := t.In(c.loc)
	hm := local.Hour()*60 + local.Minute()
	return (hm >= morningOpen && hm <= morningClose) ||
		(hm >= afternoonOpen && hm <= afternoonClose)
}
