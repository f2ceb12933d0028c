// Package research runs one aggregation request end to end: source
// validation, cache lookup, model selection, normalization, optional thread
// enrichment, scoring, dedupe and report assembly.
package research

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"last30days/internal/ai"
	"last30days/internal/cache"
	"last30days/internal/config"
	"last30days/internal/dates"
	"last30days/internal/dedupe"
	"last30days/internal/model"
	"last30days/internal/normalize"
	"last30days/internal/rawinput"
	"last30days/internal/reddit"
	"last30days/internal/score"
	"last30days/internal/snippet"
	"last30days/internal/websearch"
)

// ErrNoTopic is returned when the request has an empty topic.
var ErrNoTopic = errors.New("research: topic is required")

// SourceError reports that none of the requested sources can be served with
// the configured credentials.
type SourceError struct {
	Requested string
	Available string
	Message   string
}

func (e *SourceError) Error() string { return e.Message }

// Request describes one research query.
type Request struct {
	Topic       string
	Days        int
	Sources     string // auto, both, reddit, x, web
	IncludeWeb  bool
	RequireDate bool
	Refresh     bool // bypass the cache lookup; the result is still saved
	Enrich      bool // fetch thread details for forum items
	Input       *rawinput.Bundle
}

// Aggregator wires the pipeline stages together. Store, Models and
// Enricher are optional.
type Aggregator struct {
	Config   *config.Config
	Store    cache.ReportStore
	Models   *ai.Selector
	Enricher *reddit.Enricher
	Scorer   *score.Scorer
	Logger   *slog.Logger
	Now      func() time.Time

	Threshold float64
}

func (a *Aggregator) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func (a *Aggregator) scorer() *score.Scorer {
	if a.Scorer != nil {
		return a.Scorer
	}
	s := score.New()
	s.Now = a.now
	return s
}

func (a *Aggregator) threshold() float64 {
	if a.Threshold > 0 {
		return a.Threshold
	}
	return dedupe.DefaultThreshold
}

// Run executes req. The only hard failures are an empty topic and a source
// request that cannot be served at all; everything else degrades into the
// report's error fields or a log line.
func (a *Aggregator) Run(ctx context.Context, req Request) (*model.Report, error) {
	if a.Config == nil {
		return nil, errors.New("research: config is required")
	}
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return nil, ErrNoTopic
	}
	log := a.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("run_id", uuid.NewString(), "topic", topic)

	requested := strings.ToLower(strings.TrimSpace(req.Sources))
	if requested == "" {
		requested = config.SourcesAuto
	}
	available := config.AvailableSources(a.Config)
	effective, msg := config.ValidateSources(requested, available, req.IncludeWeb)
	if effective == config.SourcesNone {
		return nil, &SourceError{Requested: requested, Available: available, Message: msg}
	}
	if msg != "" {
		log.Warn("research: "+msg, "requested", requested, "effective", effective)
	}

	days := req.Days
	if days <= 0 {
		days = dates.DefaultMaxDays
	}
	now := a.now()
	from, to := dates.Range(now, days)
	key := cache.Key(topic, from, to, effective)

	if a.Store != nil && !req.Refresh {
		if r, age, ok := a.Store.LoadReport(key); ok {
			r.FromCache = true
			r.CacheAgeHours = &age
			log.Info("research: cache hit", "key", key, "age_hours", fmt.Sprintf("%.1f", age))
			return r, nil
		}
	}

	var sel ai.Selection
	if a.Models != nil {
		sel = a.Models.Models(ctx, a.Config, nil)
	}

	in := req.Input
	if in == nil {
		in = &rawinput.Bundle{}
	}
	if in.Empty() {
		log.Warn("research: input has no reddit, x or web items")
	}
	opts := normalize.Options{RequireDate: req.RequireDate}
	r := model.NewReport(topic, from, to, effective, sel.OpenAI, sel.XAI, now)
	r.BestPractices = in.BestPractices
	r.PromptPack = in.PromptPack

	sc := a.scorer()
	th := a.threshold()

	if config.WantsReddit(effective) {
		items := normalize.Reddit(in.Reddit, from, to, opts)
		r.RedditError = in.RedditError
		if req.Enrich && a.Enricher != nil {
			var enrichErr error
			items, enrichErr = a.enrich(ctx, log, items, in, from, to, req.RequireDate)
			if enrichErr != nil && r.RedditError == "" {
				r.RedditError = enrichErr.Error()
			}
		}
		sc.ScoreReddit(items)
		score.SortItems(items)
		r.Reddit = dedupe.Items(items, th)
	}
	if config.WantsX(effective) {
		items := normalize.X(in.X, from, to, opts)
		sc.ScoreX(items)
		score.SortItems(items)
		r.X = dedupe.Items(items, th)
		r.XError = in.XError
	}
	if config.WantsWeb(effective) {
		items := websearch.Parse(in.Web, topic, from, to, now)
		items = normalize.FilterByDateRange(items, from, to, req.RequireDate)
		items = websearch.DedupeByURL(items)
		sc.ScoreWeb(items)
		score.SortItems(items)
		r.Web = dedupe.Items(items, th)
		r.WebError = in.WebError
	}

	md, err := snippet.Render(r)
	if err != nil {
		log.Warn("research: render snippet failed", "err", err)
	}
	r.ContextSnippetMD = md

	log.Info("research: report assembled", "mode", effective,
		"reddit", len(r.Reddit), "x", len(r.X), "web", len(r.Web))

	if a.Store != nil {
		if err := a.Store.SaveReport(key, r); err != nil {
			log.Warn("research: save report failed", "key", key, "err", err)
		}
	}
	return r, nil
}

// enrich replaces forum items' metrics and dates with what their threads
// report, then re-applies the date window since enrichment can move dates.
// Items whose enrichment fails are kept as they were; the returned error
// summarizes those failures.
func (a *Aggregator) enrich(ctx context.Context, log *slog.Logger, items []model.RedditItem, in *rawinput.Bundle, from, to string, requireDate bool) ([]model.RedditItem, error) {
	var (
		failed   int
		firstErr error
	)
	for i := range items {
		it := &items[i]
		if err := a.Enricher.Enrich(ctx, it, in.Thread(it.URL)); err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				log.Warn("research: enrichment stopped", "err", err)
				failed += len(items) - i - 1
				break
			}
			log.Warn("research: enrich thread failed", "id", it.ID, "url", it.URL, "err", err)
			continue
		}
		it.DateConfidence = dates.Confidence(it.Date, from, to)
	}
	var err error
	if failed > 0 {
		err = fmt.Errorf("enrichment failed for %d of %d threads: %w", failed, len(items), firstErr)
	}
	return normalize.FilterByDateRange(items, from, to, requireDate), err
}
