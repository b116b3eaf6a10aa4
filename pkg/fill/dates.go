package fill

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/goliatone/go-formfill/pkg/fields"
)

var (
	isoPrefixPattern = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})`)
	tripletPattern   = regexp.MustCompile(`^(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{2,4})\b`)
	clockPattern     = regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})(?::(\d{2}))?\s*([ap])?\.?m?\.?\b`)
)

// NormalizeDate formats raw for a date-like control of the given kind. Time
// kinds only look for a clock reading; every other kind parses a calendar
// date (ISO prefix, then month/day/year, then free-form). Week numbers use
// the approximate day-of-year formula; see WithISOWeeks for the ISO-8601
// variant.
func NormalizeDate(raw string, kind fields.Kind) (string, bool) {
	return normalizeDate(raw, kind, false)
}

func normalizeDate(raw string, kind fields.Kind, isoWeeks bool) (string, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", false
	}

	if kind == fields.KindTime {
		hour, minute, ok := parseClock(value)
		if !ok {
			return "", false
		}
		return fmt.Sprintf("%02d:%02d", hour, minute), true
	}

	t, ok := parseCalendar(value)
	if !ok {
		return "", false
	}

	switch kind {
	case fields.KindDateTime:
		return t.Format("2006-01-02T15:04"), true
	case fields.KindMonth:
		return t.Format("2006-01"), true
	case fields.KindWeek:
		if isoWeeks {
			year, week := t.ISOWeek()
			return fmt.Sprintf("%04d-W%02d", year, week), true
		}
		return fmt.Sprintf("%04d-W%02d", t.Year(), approximateWeek(t)), true
	default:
		return t.Format("2006-01-02"), true
	}
}

// approximateWeek counts weeks from January 1st, shifted by the weekday
// January 1st falls on (Sunday = 0). It disagrees with ISO-8601 around year
// boundaries.
func approximateWeek(t time.Time) int {
	jan1 := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	offset := t.YearDay() - 1 + int(jan1.Weekday()) + 1
	return (offset + 6) / 7
}

func parseCalendar(value string) (time.Time, bool) {
	if m := isoPrefixPattern.FindStringSubmatch(value); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		hour, minute, ok := clockAfter(value[len(m[0]):])
		if !ok {
			return time.Time{}, false
		}
		if t, ok := buildDate(year, month, day, hour, minute); ok {
			return t, true
		}
		return time.Time{}, false
	}

	if m := tripletPattern.FindStringSubmatch(value); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if year < 100 {
			year += 2000
		}
		hour, minute, ok := clockAfter(value[len(m[0]):])
		if !ok {
			return time.Time{}, false
		}
		if t, ok := buildDate(year, month, day, hour, minute); ok {
			return t, true
		}
		return time.Time{}, false
	}

	t, err := dateparse.ParseIn(value, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func buildDate(year, month, day, hour, minute int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || hour > 23 || minute > 59 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)
	if t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// clockAfter reads the time of day that may follow a date. No clock means
// midnight; a clock that is out of range fails the whole value.
func clockAfter(rest string) (int, int, bool) {
	if !clockPattern.MatchString(rest) {
		return 0, 0, true
	}
	return parseClock(rest)
}

// parseClock finds the first H:MM[:SS][ am|pm] reading in value and returns it
// on a 24-hour clock.
func parseClock(value string) (int, int, bool) {
	m := clockPattern.FindStringSubmatch(value)
	if m == nil {
		return 0, 0, false
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if minute > 59 {
		return 0, 0, false
	}
	switch strings.ToLower(m[4]) {
	case "a":
		if hour < 1 || hour > 12 {
			return 0, 0, false
		}
		if hour == 12 {
			hour = 0
		}
	case "p":
		if hour < 1 || hour > 12 {
			return 0, 0, false
		}
		if hour != 12 {
			hour += 12
		}
	default:
		if hour > 23 {
			return 0, 0, false
		}
	}
	return hour, minute, true
}
