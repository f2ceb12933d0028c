// Package websearch normalizes externally supplied web search results.
// Most results carry no date, so dates are recovered from the URL path,
// then from snippet and title text.
package websearch

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"last30days/internal/model"
	"last30days/internal/normalize"
)

const (
	titleLimit   = 200
	snippetLimit = 500
)

// excludedHosts are covered by the forum and microblog paths.
var excludedHosts = map[string]struct{}{
	"reddit.com":         {},
	"www.reddit.com":     {},
	"old.reddit.com":     {},
	"twitter.com":        {},
	"www.twitter.com":    {},
	"x.com":              {},
	"www.x.com":          {},
	"mobile.twitter.com": {},
}

var isoDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// RawResult is one web search hit as supplied by the caller. Relevance is
// loosely typed: numbers and numeric strings are accepted.
type RawResult struct {
	Title       string `json:"title" yaml:"title"`
	URL         string `json:"url" yaml:"url"`
	Snippet     string `json:"snippet" yaml:"snippet"`
	Description string `json:"description" yaml:"description"`
	Date        string `json:"date" yaml:"date"`
	Relevance   any    `json:"relevance" yaml:"relevance"`
	WhyRelevant string `json:"why_relevant" yaml:"why_relevant"`
}

func host(u string) string {
	p, err := url.Parse(u)
	if err != nil {
		return ""
	}
	return strings.ToLower(p.Host)
}

// Domain returns the lowercased host without a leading "www.".
func Domain(u string) string {
	return strings.TrimPrefix(host(u), "www.")
}

// IsExcludedDomain reports whether u points at a forum or microblog host.
func IsExcludedDomain(u string) bool {
	_, ok := excludedHosts[host(u)]
	return ok
}

func truncRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Parse normalizes results into web items. Results without a URL, on
// excluded hosts, or with neither title nor snippet are skipped, as is any
// result whose date falls outside [from, to]. Ids follow input position.
func Parse(results []RawResult, topic, from, to string, now time.Time) []model.WebSearchItem {
	items := make([]model.WebSearchItem, 0, len(results))
	for i, r := range results {
		if r.URL == "" || IsExcludedDomain(r.URL) {
			continue
		}
		title := strings.TrimSpace(r.Title)
		snippet := strings.TrimSpace(r.Snippet)
		if snippet == "" {
			snippet = strings.TrimSpace(r.Description)
		}
		if title == "" && snippet == "" {
			continue
		}

		var date *string
		conf := model.ConfidenceLow
		if provided := strings.TrimSpace(r.Date); isoDate.MatchString(provided) {
			date, conf = &provided, model.ConfidenceMed
		} else {
			date, conf = DateSignals(r.URL, snippet, title, now)
		}

		if date != nil {
			if from != "" && *date < from {
				continue
			}
			if to != "" && *date > to {
				continue
			}
		}

		items = append(items, model.WebSearchItem{
			Base: model.Base{
				ID:             fmt.Sprintf("W%d", i+1),
				URL:            r.URL,
				Date:           date,
				DateConfidence: conf,
				Relevance:      normalize.Relevance(r.Relevance),
				WhyRelevant:    strings.TrimSpace(r.WhyRelevant),
			},
			Title:        truncRunes(title, titleLimit),
			SourceDomain: Domain(r.URL),
			Snippet:      truncRunes(snippet, snippetLimit),
		})
	}
	return items
}

// DedupeByURL keeps the first item per URL, comparing case-insensitively
// and ignoring trailing slashes.
func DedupeByURL(items []model.WebSearchItem) []model.WebSearchItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]model.WebSearchItem, 0, len(items))
	for _, it := range items {
		k := strings.TrimRight(strings.ToLower(it.URL), "/")
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, it)
	}
	return out
}
