// Package timeline turns the human-readable dates attached to search results
// into comparable millisecond timestamps.
package timeline

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Invalid is the timestamp assigned to dates that cannot be interpreted.
// It is the smallest int64, so such records always rank as the oldest.
const Invalid int64 = math.MinInt64

const (
	minuteMillis int64 = 60 * 1000
	hourMillis         = 60 * minuteMillis
	dayMillis          = 24 * hourMillis
	weekMillis         = 7 * dayMillis
)

// relativeUnits is checked in order; the first unit contained in the date wins.
var relativeUnits = []struct {
	word   string
	millis int64
}{
	{"minute", minuteMillis},
	{"hour", hourMillis},
	{"day", dayMillis},
	{"week", weekMillis},
}

// absoluteLayouts are tried in order when a date carries no relative unit.
var absoluteLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.RFC822Z,
	time.RFC822,
	time.ANSIC,
	time.UnixDate,
	time.RubyDate,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006 3:04 PM",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"2 January 2006",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"Mon, 2 Jan 2006 15:04:05 -0700",
}

// Normalize converts date into milliseconds since the Unix epoch, anchored at now.
//
// Relative expressions are matched by substring ("minute", "hour", "day",
// "week", "month", in that priority) and the count is read with LeadingInt.
// Months use calendar arithmetic. Anything else is parsed as an absolute date;
// unparseable input yields Invalid.
func Normalize(date string, now time.Time) int64 {
	for _, unit := range relativeUnits {
		if strings.Contains(date, unit.word) {
			return subtractMillis(now.UnixMilli(), LeadingInt(date), unit.millis)
		}
	}

	if strings.Contains(date, "month") {
		months := LeadingInt(date)
		if months > math.MaxInt32 || months < math.MinInt32 {
			return Invalid
		}
		return now.AddDate(0, -int(months), 0).UnixMilli()
	}

	if ts, ok := ParseAbsolute(date, now.Location()); ok {
		return ts.UnixMilli()
	}
	return Invalid
}

// LeadingInt reads the integer prefix of the text before the first space.
// An optional sign is honoured and anything after the digits is ignored,
// so "5min" yields 5. Text without a leading number yields 0.
func LeadingInt(date string) int64 {
	token, _, _ := strings.Cut(date, " ")

	sign := int64(1)
	switch {
	case strings.HasPrefix(token, "-"):
		sign = -1
		token = token[1:]
	case strings.HasPrefix(token, "+"):
		token = token[1:]
	}

	end := 0
	for end < len(token) && token[end] >= '0' && token[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}

	n, err := strconv.ParseInt(token[:end], 10, 64)
	if err != nil {
		// out of range
		return 0
	}
	return sign * n
}

// ParseAbsolute parses raw against the known absolute layouts. Layouts without
// a zone are interpreted in loc.
func ParseAbsolute(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}

	for _, layout := range absoluteLayouts {
		if ts, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func subtractMillis(base, count, unit int64) int64 {
	if count != 0 && (count > math.MaxInt64/unit || count < math.MinInt64/unit) {
		if count > 0 {
			return Invalid
		}
		return math.MaxInt64
	}
	delta := count * unit
	if delta > 0 && base < Invalid+delta {
		return Invalid
	}
	if delta < 0 && base > math.MaxInt64+delta {
		return math.MaxInt64
	}
	return base - delta
}
