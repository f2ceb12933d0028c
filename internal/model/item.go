package model

import "strings"

// DateConfidence tags how much an item's date can be trusted.
type DateConfidence string

const (
	ConfidenceHigh DateConfidence = "high"
	ConfidenceMed  DateConfidence = "med"
	ConfidenceLow  DateConfidence = "low"
)

// ParseConfidence maps free-form input onto one of the three levels.
// Anything unrecognized is low.
func ParseConfidence(s string) DateConfidence {
	switch DateConfidence(strings.ToLower(strings.TrimSpace(s))) {
	case ConfidenceHigh:
		return ConfidenceHigh
	case ConfidenceMed:
		return ConfidenceMed
	default:
		return ConfidenceLow
	}
}

// Source identifies the family an item came from. The numeric value is
// also the tie-break priority when sorting merged lists.
type Source int

const (
	SourceReddit Source = iota
	SourceX
	SourceWeb
)

func (s Source) String() string {
	switch s {
	case SourceReddit:
		return "reddit"
	case SourceX:
		return "x"
	case SourceWeb:
		return "web"
	default:
		return "unknown"
	}
}

// Engagement holds popularity metrics. Reddit items use Score, NumComments
// and UpvoteRatio; X items use Likes, Reposts, Replies and Quotes.
// A nil *Engagement means no metrics were collected at all.
type Engagement struct {
	Score       *int     `json:"score,omitempty"`
	NumComments *int     `json:"num_comments,omitempty"`
	UpvoteRatio *float64 `json:"upvote_ratio,omitempty"`

	Likes   *int `json:"likes,omitempty"`
	Reposts *int `json:"reposts,omitempty"`
	Replies *int `json:"replies,omitempty"`
	Quotes  *int `json:"quotes,omitempty"`
}

// IsEmpty is true for a nil Engagement or one with every metric unset.
func (e *Engagement) IsEmpty() bool {
	if e == nil {
		return true
	}
	return e.Score == nil && e.NumComments == nil && e.UpvoteRatio == nil &&
		e.Likes == nil && e.Reposts == nil && e.Replies == nil && e.Quotes == nil
}

// Comment is one top-level Reddit comment attached to a thread item.
type Comment struct {
	Score   int     `json:"score"`
	Date    *string `json:"date,omitempty"`
	Author  string  `json:"author"`
	Excerpt string  `json:"excerpt"`
	URL     string  `json:"url"`
}

// SubScores are the per-dimension scores in [0,100]. They are informational
// and do not have to add up to the overall score.
type SubScores struct {
	Relevance  int `json:"relevance"`
	Recency    int `json:"recency"`
	Engagement int `json:"engagement"`
}

// Base carries the fields every item kind shares with the scorer.
type Base struct {
	ID             string         `json:"id"`
	URL            string         `json:"url"`
	Date           *string        `json:"date,omitempty"` // YYYY-MM-DD
	DateConfidence DateConfidence `json:"date_confidence"`
	Relevance      float64        `json:"relevance"`
	WhyRelevant    string         `json:"why_relevant"`
	Subs           SubScores      `json:"subs"`
	Score          int            `json:"score"`
}

// Core exposes the shared fields for scoring, sorting and dedupe.
func (b *Base) Core() *Base { return b }

// DateString returns the date or "" when unknown.
func (b *Base) DateString() string {
	if b.Date == nil {
		return ""
	}
	return *b.Date
}

// Scorable is implemented by every item kind.
type Scorable interface {
	Source() Source
	// DisplayText is the comparable text used for dedupe and the final sort
	// tie-break: the title for threads and web results, the body for posts.
	DisplayText() string
	Core() *Base
}

// EngagementBearing is a Scorable that may carry popularity metrics.
type EngagementBearing interface {
	Scorable
	Metrics() *Engagement
}

// RedditItem is a normalized forum thread.
type RedditItem struct {
	Base
	Title           string      `json:"title"`
	Subreddit       string      `json:"subreddit"`
	Engagement      *Engagement `json:"engagement,omitempty"`
	TopComments     []Comment   `json:"top_comments"`
	CommentInsights []string    `json:"comment_insights"`
}

func (it *RedditItem) Source() Source       { return SourceReddit }
func (it *RedditItem) DisplayText() string  { return it.Title }
func (it *RedditItem) Metrics() *Engagement { return it.Engagement }

// XItem is a normalized microblog post.
type XItem struct {
	Base
	Text         string      `json:"text"`
	AuthorHandle string      `json:"author_handle"`
	Engagement   *Engagement `json:"engagement,omitempty"`
}

func (it *XItem) Source() Source       { return SourceX }
func (it *XItem) DisplayText() string  { return it.Text }
func (it *XItem) Metrics() *Engagement { return it.Engagement }

// WebSearchItem is a normalized web result. It never carries engagement.
type WebSearchItem struct {
	Base
	Title        string `json:"title"`
	SourceDomain string `json:"source_domain"`
	Snippet      string `json:"snippet"`
}

func (it *WebSearchItem) Source() Source      { return SourceWeb }
func (it *WebSearchItem) DisplayText() string { return it.Title }

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// IntPtr returns a pointer to n.
func IntPtr(n int) *int { return &n }

// FloatPtr returns a pointer to f.
func FloatPtr(f float64) *float64 { return &f }
