// Package fine computes overdue penalties for returned loans. All
// strategies share one contract: given the expected and actual return
// timestamps and a base daily rate, produce a fine amount. A return on
// or before the expected time always costs nothing. Overdue days are
// whole 24-hour periods between the two timestamps (truncating), not
// calendar days.
package fine

import "time"

// Strategy is a pluggable fine policy. Implementations must be pure:
// identical inputs always yield identical output, and no state is kept
// between calls.
type Strategy interface {
	// Calculate returns the fine owed for returning at actualReturn a
	// loan that was due at expectedReturn, charged at baseRate per day.
	Calculate(expectedReturn, actualReturn time.Time, baseRate float64) float64
}

// Simple charges the base rate linearly per overdue day with no
// tiering and no weekend exclusion. This is the default policy.
type Simple struct{}

func (Simple) Calculate(expectedReturn, actualReturn time.Time, baseRate float64) float64 {
	days := daysOverdue(expectedReturn, actualReturn)
	if days <= 0 {
		return 0
	}
	return float64(days) * baseRate
}

// Progressive applies a tiered multiplier picked by the total overdue
// span: 1.0x up to 7 days, 1.5x up to 30 days, 2.0x beyond. The
// multiplier covers the entire span, not just the days within its
// tier.
type Progressive struct{}

func (Progressive) Calculate(expectedReturn, actualReturn time.Time, baseRate float64) float64 {
	days := daysOverdue(expectedReturn, actualReturn)
	if days <= 0 {
		return 0
	}
	switch {
	case days <= 7:
		return float64(days) * baseRate
	case days <= 30:
		return float64(days) * baseRate * 1.5
	default:
		return float64(days) * baseRate * 2.0
	}
}

// WeekendAware charges the base rate only for business days in the
// overdue span, skipping Saturdays and Sundays, with no tiering.
type WeekendAware struct{}

func (WeekendAware) Calculate(expectedReturn, actualReturn time.Time, baseRate float64) float64 {
	if !actualReturn.After(expectedReturn) {
		return 0
	}
	days := int64(0)
	for cur := expectedReturn; cur.Before(actualReturn); cur = cur.AddDate(0, 0, 1) {
		if wd := cur.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days++
		}
	}
	return float64(days) * baseRate
}

// ByName returns the strategy registered under name ("simple",
// "progressive", "weekend") and whether the name was recognised.
// Selection happens once at composition time; an unknown name should
// be treated as a configuration error by the caller.
func ByName(name string) (Strategy, bool) {
	switch name {
	case "simple":
		return Simple{}, true
	case "progressive":
		return Progressive{}, true
	case "weekend":
		return WeekendAware{}, true
	}
	return nil, false
}

// daysOverdue counts whole 24h periods between the two timestamps,
// zero or negative when the return is on time.
func daysOverdue(expectedReturn, actualReturn time.Time) int64 {
	if !actualReturn.After(expectedReturn) {
		return 0
	}
	return int64(actualReturn.Sub(expectedReturn).Hours() / 24)
}
