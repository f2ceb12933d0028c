// Package dates holds the date math shared by normalization and scoring:
// window computation, lenient parsing, confidence tagging and recency decay.
package dates

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"last30days/internal/model"
)

// ISO is the layout every item date is stored in.
const ISO = "2006-01-02"

// DefaultMaxDays is the age at which recency decays to zero.
const DefaultMaxDays = 30

// maxUnix is 10000-01-01T00:00:00Z. Timestamps at or past it, negative or
// non-finite ones are not dates.
const maxUnix = 253402300800

func validUnix(ts float64) bool {
	return !math.IsNaN(ts) && !math.IsInf(ts, 0) && ts >= 0 && ts < maxUnix
}

var isoLayouts = []string{
	ISO,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.999999999Z07:00",
}

// Range returns the window ending today (UTC) and starting days earlier.
func Range(now time.Time, days int) (from, to string) {
	today := now.UTC()
	return today.AddDate(0, 0, -days).Format(ISO), today.Format(ISO)
}

// Parse accepts a Unix timestamp or an ISO-8601 variant. Anything else is
// handed to dateparse as a last resort. It reports false instead of failing.
func Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if ts, err := strconv.ParseFloat(s, 64); err == nil {
		if !validUnix(ts) {
			return time.Time{}, false
		}
		sec, frac := int64(ts), ts-float64(int64(ts))
		return time.Unix(sec, int64(frac*1e9)).UTC(), true
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	if t, err := dateparse.ParseIn(s, time.UTC); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

// TimestampToDate converts Unix seconds to a YYYY-MM-DD string.
func TimestampToDate(ts float64) *string {
	if ts <= 0 || !validUnix(ts) {
		return nil
	}
	d := time.Unix(int64(ts), 0).UTC().Format(ISO)
	return &d
}

func parseDay(s string) (time.Time, bool) {
	t, err := time.Parse(ISO, s)
	return t, err == nil
}

// InRange reports whether date lies inside [from, to]. Unparsable input is
// never in range.
func InRange(date, from, to string) bool {
	d, ok := parseDay(date)
	if !ok {
		return false
	}
	start, ok1 := parseDay(from)
	end, ok2 := parseDay(to)
	if !ok1 || !ok2 {
		return false
	}
	return !d.Before(start) && !d.After(end)
}

// Confidence is high for a date inside the window and low for anything
// else, including a missing date. Medium is never produced here; callers
// with weaker provenance assign it themselves.
func Confidence(date *string, from, to string) model.DateConfidence {
	if date == nil || *date == "" {
		return model.ConfidenceLow
	}
	if InRange(*date, from, to) {
		return model.ConfidenceHigh
	}
	return model.ConfidenceLow
}

// DaysAgo returns the whole-day age of date relative to now (UTC).
func DaysAgo(date *string, now time.Time) (int, bool) {
	if date == nil {
		return 0, false
	}
	d, ok := parseDay(*date)
	if !ok {
		return 0, false
	}
	n := now.UTC()
	today := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
	return int(today.Sub(d).Hours() / 24), true
}

// RecencyScore decays linearly from 100 today to 0 at maxDays. Future dates
// score 100; unknown dates score 0.
func RecencyScore(date *string, now time.Time, maxDays int) int {
	if maxDays <= 0 {
		maxDays = DefaultMaxDays
	}
	age, ok := DaysAgo(date, now)
	if !ok {
		return 0
	}
	if age < 0 {
		return 100
	}
	if age >= maxDays {
		return 0
	}
	return int(100 * (1 - float64(age)/float64(maxDays)))
}
