package timeline

import (
	"fmt"
	"time"
)

// Humanize renders t relative to now in the same dialect search engines use
// ("5 minutes ago", "2 days ago"), so that Normalize can read it back.
// Times in the future render as "0 minutes ago".
func Humanize(t, now time.Time) string {
	d := now.Sub(t)
	if d < 0 {
		d = 0
	}

	switch {
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute")
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour")
	case d < 7*24*time.Hour:
		return plural(int(d/(24*time.Hour)), "day")
	case d < 30*24*time.Hour:
		return plural(int(d/(7*24*time.Hour)), "week")
	default:
		if m := monthsBetween(t, now); m > 0 {
			return plural(m, "month")
		}
		// 30 or 31 days inside one calendar month.
		return plural(int(d/(7*24*time.Hour)), "week")
	}
}

// monthsBetween counts whole calendar months from t up to now.
func monthsBetween(t, now time.Time) int {
	months := (now.Year()-t.Year())*12 + int(now.Month()-t.Month())
	for months > 0 && now.AddDate(0, -months, 0).Before(t) {
		months--
	}
	return months
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
