// Package reddit enriches forum thread items with live engagement numbers,
// top comments and short insight excerpts taken from the thread payload.
package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"last30days/internal/dates"
	"last30days/internal/httpclient"
	"last30days/internal/model"
)

const (
	DefaultTopN         = 10
	DefaultInsightLimit = 7

	excerptLimit = 200
)

// ErrNotThreadURL is returned for URLs that do not point at a forum thread.
var ErrNotThreadURL = errors.New("reddit: not a thread url")

// ExtractPath returns the path of a reddit.com URL.
func ExtractPath(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || !strings.Contains(strings.ToLower(u.Host), "reddit.com") {
		return "", false
	}
	return u.Path, u.Path != ""
}

// Enricher fetches thread payloads and folds them into items.
type Enricher struct {
	HTTP         *httpclient.Client
	TopN         int
	InsightLimit int
}

// NewEnricher returns an enricher with the default limits.
func NewEnricher(c *httpclient.Client) *Enricher {
	return &Enricher{HTTP: c, TopN: DefaultTopN, InsightLimit: DefaultInsightLimit}
}

// FetchThread returns mock when it is non-nil, otherwise the live payload.
func (e *Enricher) FetchThread(ctx context.Context, threadURL string, mock json.RawMessage) (json.RawMessage, error) {
	if mock != nil {
		return mock, nil
	}
	path, ok := ExtractPath(threadURL)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotThreadURL, threadURL)
	}
	if e.HTTP == nil {
		return nil, errors.New("reddit: no http client configured")
	}
	var raw json.RawMessage
	headers := map[string]string{"Accept": "application/json"}
	if err := e.HTTP.GetJSON(ctx, httpclient.RedditJSONURL(path), headers, &raw); err != nil {
		return nil, fmt.Errorf("fetch thread: %w", err)
	}
	return raw, nil
}

// Enrich replaces the item's engagement, date, top comments and insights
// with what the thread payload reports. On error the item is unchanged.
func (e *Enricher) Enrich(ctx context.Context, it *model.RedditItem, mock json.RawMessage) error {
	raw, err := e.FetchThread(ctx, it.URL, mock)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	th := ParseThread(raw)

	if s := th.Submission; s != nil {
		eng := &model.Engagement{Score: s.Score, NumComments: s.NumComments, UpvoteRatio: s.UpvoteRatio}
		if eng.IsEmpty() {
			eng = nil
		}
		it.Engagement = eng
		if s.CreatedUTC != nil && *s.CreatedUTC != 0 {
			it.Date = dates.TimestampToDate(*s.CreatedUTC)
		}
	}

	topN, limit := e.TopN, e.InsightLimit
	if topN <= 0 {
		topN = DefaultTopN
	}
	if limit <= 0 {
		limit = DefaultInsightLimit
	}
	top := TopComments(th.Comments, topN)
	it.TopComments = make([]model.Comment, 0, len(top))
	for _, c := range top {
		var date *string
		if c.CreatedUTC != nil {
			date = dates.TimestampToDate(*c.CreatedUTC)
		}
		link := ""
		if c.Permalink != "" {
			link = "https://reddit.com" + c.Permalink
		}
		it.TopComments = append(it.TopComments, model.Comment{
			Score:   c.Score,
			Date:    date,
			Author:  c.Author,
			Excerpt: truncRunes(c.Body, excerptLimit),
			URL:     link,
		})
	}
	it.CommentInsights = ExtractInsights(top, limit)
	return nil
}
