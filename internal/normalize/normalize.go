// Package normalize turns loosely typed per-source results into canonical
// items, tagging date confidence and dropping anything dated outside the
// requested window.
package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"last30days/internal/dates"
	"last30days/internal/model"
)

const defaultRelevance = 0.5

// RawEngagement is engagement as supplied by the caller. Values may be
// numbers or numeric strings; anything else is treated as missing.
type RawEngagement struct {
	Score       any `json:"score" yaml:"score"`
	NumComments any `json:"num_comments" yaml:"num_comments"`
	UpvoteRatio any `json:"upvote_ratio" yaml:"upvote_ratio"`
	Likes       any `json:"likes" yaml:"likes"`
	Reposts     any `json:"reposts" yaml:"reposts"`
	Replies     any `json:"replies" yaml:"replies"`
	Quotes      any `json:"quotes" yaml:"quotes"`
}

type RawComment struct {
	Score   any    `json:"score" yaml:"score"`
	Date    string `json:"date" yaml:"date"`
	Author  string `json:"author" yaml:"author"`
	Excerpt string `json:"excerpt" yaml:"excerpt"`
	URL     string `json:"url" yaml:"url"`
}

type RawRedditItem struct {
	ID              string         `json:"id" yaml:"id"`
	Title           string         `json:"title" yaml:"title"`
	URL             string         `json:"url" yaml:"url"`
	Subreddit       string         `json:"subreddit" yaml:"subreddit"`
	Date            string         `json:"date" yaml:"date"`
	Engagement      *RawEngagement `json:"engagement" yaml:"engagement"`
	TopComments     []RawComment   `json:"top_comments" yaml:"top_comments"`
	CommentInsights []string       `json:"comment_insights" yaml:"comment_insights"`
	Relevance       any            `json:"relevance" yaml:"relevance"`
	WhyRelevant     string         `json:"why_relevant" yaml:"why_relevant"`
}

type RawXItem struct {
	ID           string         `json:"id" yaml:"id"`
	Text         string         `json:"text" yaml:"text"`
	URL          string         `json:"url" yaml:"url"`
	AuthorHandle string         `json:"author_handle" yaml:"author_handle"`
	Date         string         `json:"date" yaml:"date"`
	Engagement   *RawEngagement `json:"engagement" yaml:"engagement"`
	Relevance    any            `json:"relevance" yaml:"relevance"`
	WhyRelevant  string         `json:"why_relevant" yaml:"why_relevant"`
}

// Options control filtering.
type Options struct {
	// RequireDate drops items whose date is unknown.
	RequireDate bool
}

// Reddit normalizes forum threads. Missing ids are assigned R1, R2, ... by
// input position.
func Reddit(raw []RawRedditItem, from, to string, opts Options) []model.RedditItem {
	items := make([]model.RedditItem, 0, len(raw))
	for i, r := range raw {
		date := normalizeDate(r.Date)
		it := model.RedditItem{
			Base: model.Base{
				ID:             idOr(r.ID, "R", i),
				URL:            strings.TrimSpace(r.URL),
				Date:           date,
				DateConfidence: dates.Confidence(date, from, to),
				Relevance:      Relevance(r.Relevance),
				WhyRelevant:    strings.TrimSpace(r.WhyRelevant),
			},
			Title:           strings.TrimSpace(r.Title),
			Subreddit:       strings.TrimPrefix(strings.TrimSpace(r.Subreddit), "r/"),
			TopComments:     comments(r.TopComments),
			CommentInsights: nonEmpty(r.CommentInsights),
		}
		if e := r.Engagement; e != nil {
			it.Engagement = emptyToNil(&model.Engagement{
				Score:       Int(e.Score),
				NumComments: Int(e.NumComments),
				UpvoteRatio: Float(e.UpvoteRatio),
			})
		}
		items = append(items, it)
	}
	return FilterByDateRange(items, from, to, opts.RequireDate)
}

// X normalizes microblog posts. Missing ids are assigned X1, X2, ...
func X(raw []RawXItem, from, to string, opts Options) []model.XItem {
	items := make([]model.XItem, 0, len(raw))
	for i, r := range raw {
		date := normalizeDate(r.Date)
		it := model.XItem{
			Base: model.Base{
				ID:             idOr(r.ID, "X", i),
				URL:            strings.TrimSpace(r.URL),
				Date:           date,
				DateConfidence: dates.Confidence(date, from, to),
				Relevance:      Relevance(r.Relevance),
				WhyRelevant:    strings.TrimSpace(r.WhyRelevant),
			},
			Text:         strings.TrimSpace(r.Text),
			AuthorHandle: strings.TrimPrefix(strings.TrimSpace(r.AuthorHandle), "@"),
		}
		if e := r.Engagement; e != nil {
			it.Engagement = emptyToNil(&model.Engagement{
				Likes:   Int(e.Likes),
				Reposts: Int(e.Reposts),
				Replies: Int(e.Replies),
				Quotes:  Int(e.Quotes),
			})
		}
		items = append(items, it)
	}
	return FilterByDateRange(items, from, to, opts.RequireDate)
}

// FilterByDateRange drops items dated before from or after to. Undated
// items survive unless requireDate is set.
func FilterByDateRange[T any, P interface {
	*T
	model.Scorable
}](items []T, from, to string, requireDate bool) []T {
	out := items[:0:0]
	for i := range items {
		d := P(&items[i]).Core().Date
		if d == nil {
			if !requireDate {
				out = append(out, items[i])
			}
			continue
		}
		if *d < from || *d > to {
			continue
		}
		out = append(out, items[i])
	}
	return out
}

// normalizeDate keeps ISO dates and converts anything else dates.Parse
// understands. Unparsable input becomes unknown.
func normalizeDate(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, ok := dates.Parse(s)
	if !ok {
		return nil
	}
	d := t.Format(dates.ISO)
	return &d
}

func idOr(id, prefix string, i int) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return fmt.Sprintf("%s%d", prefix, i+1)
}

func comments(raw []RawComment) []model.Comment {
	out := make([]model.Comment, 0, len(raw))
	for _, c := range raw {
		score := 0
		if n := Int(c.Score); n != nil {
			score = *n
		}
		out = append(out, model.Comment{
			Score:   score,
			Date:    normalizeDate(c.Date),
			Author:  c.Author,
			Excerpt: c.Excerpt,
			URL:     c.URL,
		})
	}
	return out
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func emptyToNil(e *model.Engagement) *model.Engagement {
	if e.IsEmpty() {
		return nil
	}
	return e
}

// Float reads a number or numeric string.
func Float(v any) *float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint64:
		f = float64(x)
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil
		}
		f = p
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// Int reads a number or numeric string, truncating fractions.
func Int(v any) *int {
	f := Float(v)
	if f == nil {
		return nil
	}
	n := int(*f)
	return &n
}

// Relevance reads a relevance value, defaulting to 0.5 and clamping to [0,1].
func Relevance(v any) float64 {
	f := Float(v)
	if f == nil {
		return defaultRelevance
	}
	return min(1, max(0, *f))
}
