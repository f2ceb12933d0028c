// Package score ranks normalized items on a 0-100 scale. Forum and
// microblog items blend relevance, recency and batch-relative engagement;
// web results, which carry no engagement, use relevance and recency with a
// fixed source penalty and a date-confidence adjustment.
package score

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"last30days/internal/dates"
	"last30days/internal/model"
)

// Weights holds every scoring constant.
type Weights struct {
	Relevance  float64
	Recency    float64
	Engagement float64

	WebRelevance     float64
	WebRecency       float64
	WebSourcePenalty float64
	WebVerifiedBonus float64
	WebNoDatePenalty float64

	DefaultEngagement        int
	UnknownEngagementPenalty float64
	LowConfidencePenalty     float64
	MedConfidencePenalty     float64

	RecencyMaxDays int
}

func DefaultWeights() Weights {
	return Weights{
		Relevance:  0.45,
		Recency:    0.25,
		Engagement: 0.30,

		WebRelevance:     0.55,
		WebRecency:       0.45,
		WebSourcePenalty: 15,
		WebVerifiedBonus: 10,
		WebNoDatePenalty: 20,

		DefaultEngagement:        35,
		UnknownEngagementPenalty: 10,
		LowConfidencePenalty:     10,
		MedConfidencePenalty:     5,

		RecencyMaxDays: dates.DefaultMaxDays,
	}
}

// Scorer assigns sub-scores and overall scores in place.
type Scorer struct {
	Weights Weights
	Now     func() time.Time
}

// New returns a scorer with the default weights and the wall clock.
func New() *Scorer {
	return &Scorer{Weights: DefaultWeights(), Now: time.Now}
}

func (s *Scorer) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// Log1pSafe is log1p for non-negative input and 0 otherwise.
func Log1pSafe(x *int) float64 {
	if x == nil || *x < 0 {
		return 0
	}
	return math.Log1p(float64(*x))
}

// RedditEngagementRaw blends score, comment count and approval ratio. It is
// nil when neither score nor comment count is known.
func RedditEngagementRaw(e *model.Engagement) *float64 {
	if e == nil || (e.Score == nil && e.NumComments == nil) {
		return nil
	}
	ratio := 0.5
	if e.UpvoteRatio != nil && *e.UpvoteRatio != 0 {
		ratio = *e.UpvoteRatio
	}
	v := 0.55*Log1pSafe(e.Score) + 0.40*Log1pSafe(e.NumComments) + 0.05*(ratio*10)
	return &v
}

// XEngagementRaw blends likes, reposts, replies and quotes. It is nil when
// neither likes nor reposts are known.
func XEngagementRaw(e *model.Engagement) *float64 {
	if e == nil || (e.Likes == nil && e.Reposts == nil) {
		return nil
	}
	v := 0.55*Log1pSafe(e.Likes) + 0.25*Log1pSafe(e.Reposts) +
		0.15*Log1pSafe(e.Replies) + 0.05*Log1pSafe(e.Quotes)
	return &v
}

// NormalizeTo100 min-max scales the known values onto [0,100]. Unknown
// values stay nil. When every known value is equal they all map to 50.
func NormalizeTo100(values []*float64) []*float64 {
	out := make([]*float64, len(values))
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if v == nil {
			continue
		}
		lo, hi = math.Min(lo, *v), math.Max(hi, *v)
	}
	span := hi - lo
	for i, v := range values {
		if v == nil {
			continue
		}
		n := 50.0
		if span > 0 {
			n = (*v - lo) / span * 100
		}
		out[i] = &n
	}
	return out
}

func relevance100(r float64) int {
	return int(math.Round(r * 100))
}

func clamp(overall float64) int {
	return int(math.Max(0, math.Min(100, overall)))
}

func (s *Scorer) scoreEngaged(items []model.EngagementBearing, raw func(*model.Engagement) *float64) {
	if len(items) == 0 {
		return
	}
	w := s.Weights
	now := s.now()

	rawVals := make([]*float64, len(items))
	for i, it := range items {
		rawVals[i] = raw(it.Metrics())
	}
	norm := NormalizeTo100(rawVals)

	for i, it := range items {
		c := it.Core()
		rel := relevance100(c.Relevance)
		rec := dates.RecencyScore(c.Date, now, w.RecencyMaxDays)
		eng := w.DefaultEngagement
		if norm[i] != nil {
			eng = int(*norm[i])
		}
		c.Subs = model.SubScores{Relevance: rel, Recency: rec, Engagement: eng}

		overall := w.Relevance*float64(rel) + w.Recency*float64(rec) + w.Engagement*float64(eng)
		if rawVals[i] == nil {
			overall -= w.UnknownEngagementPenalty
		}
		switch c.DateConfidence {
		case model.ConfidenceLow:
			overall -= w.LowConfidencePenalty
		case model.ConfidenceMed:
			overall -= w.MedConfidencePenalty
		}
		c.Score = clamp(overall)
	}
}

// ScoreReddit scores forum threads, normalizing engagement across items.
func (s *Scorer) ScoreReddit(items []model.RedditItem) {
	batch := make([]model.EngagementBearing, len(items))
	for i := range items {
		batch[i] = &items[i]
	}
	s.scoreEngaged(batch, RedditEngagementRaw)
}

// ScoreX scores microblog posts, normalizing engagement across items.
func (s *Scorer) ScoreX(items []model.XItem) {
	batch := make([]model.EngagementBearing, len(items))
	for i := range items {
		batch[i] = &items[i]
	}
	s.scoreEngaged(batch, XEngagementRaw)
}

// ScoreWeb scores web results. Their engagement sub-score is always 0.
func (s *Scorer) ScoreWeb(items []model.WebSearchItem) {
	w := s.Weights
	now := s.now()
	for i := range items {
		c := items[i].Core()
		rel := relevance100(c.Relevance)
		rec := dates.RecencyScore(c.Date, now, w.RecencyMaxDays)
		c.Subs = model.SubScores{Relevance: rel, Recency: rec, Engagement: 0}

		overall := w.WebRelevance*float64(rel) + w.WebRecency*float64(rec) - w.WebSourcePenalty
		switch c.DateConfidence {
		case model.ConfidenceHigh:
			overall += w.WebVerifiedBonus
		case model.ConfidenceLow:
			overall -= w.WebNoDatePenalty
		}
		c.Score = clamp(overall)
	}
}

func dateKey(b *model.Base) int {
	d := b.DateString()
	if d == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.ReplaceAll(d, "-", ""))
	if err != nil {
		return 0
	}
	return n
}

// Sort orders items by score, then date (newest first), then source
// (forum, microblog, web), then text.
func Sort(items []model.Scorable) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		ca, cb := a.Core(), b.Core()
		if ca.Score != cb.Score {
			return ca.Score > cb.Score
		}
		if da, db := dateKey(ca), dateKey(cb); da != db {
			return da > db
		}
		if a.Source() != b.Source() {
			return a.Source() < b.Source()
		}
		return a.DisplayText() < b.DisplayText()
	})
}

// SortItems applies Sort to a slice of concrete items, reordering it in
// place.
func SortItems[T any, P interface {
	*T
	model.Scorable
}](items []T) {
	view := make([]model.Scorable, len(items))
	for i := range items {
		view[i] = P(&items[i])
	}
	Sort(view)
	sorted := make([]T, len(items))
	for i, v := range view {
		sorted[i] = *(v.(P))
	}
	copy(items, sorted)
}
