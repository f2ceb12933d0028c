package websearch

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"last30days/internal/dates"
	"last30days/internal/model"
)

const (
	minYear = 2020
	maxYear = 2030

	maxDaysAgo = 60
)

var monthNames = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

const monthAlt = `jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|` +
	`jul(?:y)?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?`

var (
	urlSlashed = regexp.MustCompile(`/(\d{4})/(\d{2})/(\d{2})/`)
	urlDashed  = regexp.MustCompile(`/(\d{4})-(\d{2})-(\d{2})[-/]`)
	urlCompact = regexp.MustCompile(`/(\d{4})(\d{2})(\d{2})/`)

	textMonthFirst = regexp.MustCompile(`\b(` + monthAlt + `)\s+(\d{1,2})(?:st|nd|rd|th)?,?\s*(\d{4})\b`)
	textDayFirst   = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+(` + monthAlt + `)\s+(\d{4})\b`)
	textISO        = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	daysAgo        = regexp.MustCompile(`\b(\d+)\s*days?\s*ago\b`)
	hoursAgo       = regexp.MustCompile(`\b(\d+)\s*hours?\s*ago\b`)
)

func plausible(year, month, day int) bool {
	return year >= minYear && year <= maxYear && month >= 1 && month <= 12 && day >= 1 && day <= 31
}

func ymd(y, m, d string) (int, int, int) {
	year, _ := strconv.Atoi(y)
	month, _ := strconv.Atoi(m)
	day, _ := strconv.Atoi(d)
	return year, month, day
}

func format(year, month, day int) *string {
	s := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	return &s
}

// DateFromURL looks for /YYYY/MM/DD/, /YYYY-MM-DD[-/] and /YYYYMMDD/ path
// segments, in that order.
func DateFromURL(u string) *string {
	for _, re := range []*regexp.Regexp{urlSlashed, urlDashed, urlCompact} {
		m := re.FindStringSubmatch(u)
		if m == nil {
			continue
		}
		if y, mo, d := ymd(m[1], m[2], m[3]); plausible(y, mo, d) {
			return format(y, mo, d)
		}
	}
	return nil
}

// DateFromText recognizes absolute dates in prose and a handful of relative
// phrases, which are resolved against now.
func DateFromText(text string, now time.Time) *string {
	if text == "" {
		return nil
	}
	lower := strings.ToLower(text)

	if m := textMonthFirst.FindStringSubmatch(lower); m != nil {
		month := monthNames[m[1][:3]]
		y, _, d := ymd(m[3], "1", m[2])
		if month != 0 && plausible(y, month, d) {
			return format(y, month, d)
		}
	}
	if m := textDayFirst.FindStringSubmatch(lower); m != nil {
		month := monthNames[m[2][:3]]
		y, _, d := ymd(m[3], "1", m[1])
		if month != 0 && plausible(y, month, d) {
			return format(y, month, d)
		}
	}
	if m := textISO.FindStringSubmatch(text); m != nil {
		if y, mo, d := ymd(m[1], m[2], m[3]); plausible(y, mo, d) {
			return format(y, mo, d)
		}
	}

	today := now.UTC()
	daysBack := func(n int) *string {
		s := today.AddDate(0, 0, -n).Format(dates.ISO)
		return &s
	}
	if strings.Contains(lower, "yesterday") {
		return daysBack(1)
	}
	if strings.Contains(lower, "today") {
		return daysBack(0)
	}
	if m := daysAgo.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n <= maxDaysAgo {
			return daysBack(n)
		}
	}
	if hoursAgo.MatchString(lower) {
		return daysBack(0)
	}
	if strings.Contains(lower, "last week") {
		return daysBack(7)
	}
	if strings.Contains(lower, "this week") {
		return daysBack(3)
	}
	return nil
}

// DateSignals tries the URL (high confidence), then the snippet and the
// title (medium). Without any signal it returns nil and low.
func DateSignals(u, snippet, title string, now time.Time) (*string, model.DateConfidence) {
	if d := DateFromURL(u); d != nil {
		return d, model.ConfidenceHigh
	}
	if d := DateFromText(snippet, now); d != nil {
		return d, model.ConfidenceMed
	}
	if d := DateFromText(title, now); d != nil {
		return d, model.ConfidenceMed
	}
	return nil, model.ConfidenceLow
}
