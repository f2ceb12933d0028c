package model

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrNoTopic is returned when decoding a report without a topic, such as a
// JSON null.
var ErrNoTopic = errors.New("model: report has no topic")

// DateRange is the inclusive [From, To] window, both YYYY-MM-DD.
type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Report is the assembled research result for one topic and window.
type Report struct {
	Topic            string          `json:"topic"`
	Range            DateRange       `json:"range"`
	GeneratedAt      string          `json:"generated_at"`
	Mode             string          `json:"mode"`
	OpenAIModelUsed  *string         `json:"openai_model_used"`
	XAIModelUsed     *string         `json:"xai_model_used"`
	Reddit           []RedditItem    `json:"reddit"`
	X                []XItem         `json:"x"`
	Web              []WebSearchItem `json:"web"`
	BestPractices    []string        `json:"best_practices"`
	PromptPack       []string        `json:"prompt_pack"`
	ContextSnippetMD string          `json:"context_snippet_md"`

	RedditError string `json:"reddit_error,omitempty"`
	XError      string `json:"x_error,omitempty"`
	WebError    string `json:"web_error,omitempty"`

	FromCache     bool     `json:"from_cache,omitempty"`
	CacheAgeHours *float64 `json:"cache_age_hours,omitempty"`
}

// NewReport creates an empty report stamped with now.
func NewReport(topic, from, to, mode string, openaiModel, xaiModel string, now time.Time) *Report {
	r := &Report{
		Topic:       topic,
		Range:       DateRange{From: from, To: to},
		GeneratedAt: now.UTC().Format(time.RFC3339),
		Mode:        mode,
	}
	if openaiModel != "" {
		r.OpenAIModelUsed = StringPtr(openaiModel)
	}
	if xaiModel != "" {
		r.XAIModelUsed = StringPtr(xaiModel)
	}
	return r
}

// Items returns every item of the report as Scorables, Reddit first, then X,
// then web. The returned values point into the report's slices.
func (r *Report) Items() []Scorable {
	out := make([]Scorable, 0, len(r.Reddit)+len(r.X)+len(r.Web))
	for i := range r.Reddit {
		out = append(out, &r.Reddit[i])
	}
	for i := range r.X {
		out = append(out, &r.X[i])
	}
	for i := range r.Web {
		out = append(out, &r.Web[i])
	}
	return out
}

// Encode serializes the report to JSON.
func (r *Report) Encode() ([]byte, error) {
	return json.Marshal(r)
}

// DecodeReport parses a serialized report, as written by Encode or by older
// cache files that used flat range_from/range_to keys.
func DecodeReport(b []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, err
	}
	if r.Topic == "" {
		return nil, ErrNoTopic
	}
	return &r, nil
}

// MarshalJSON writes list fields as [] rather than null.
func (r Report) MarshalJSON() ([]byte, error) {
	type alias Report
	a := alias(r)
	if a.Reddit == nil {
		a.Reddit = []RedditItem{}
	}
	if a.X == nil {
		a.X = []XItem{}
	}
	if a.Web == nil {
		a.Web = []WebSearchItem{}
	}
	if a.BestPractices == nil {
		a.BestPractices = []string{}
	}
	if a.PromptPack == nil {
		a.PromptPack = []string{}
	}
	return json.Marshal(a)
}

// UnmarshalJSON accepts the legacy flat range keys and normalizes
// confidence values; unknown ones become low.
func (r *Report) UnmarshalJSON(b []byte) error {
	type alias Report
	aux := struct {
		*alias
		RangeFrom string `json:"range_from"`
		RangeTo   string `json:"range_to"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if r.Range.From == "" {
		r.Range.From = aux.RangeFrom
	}
	if r.Range.To == "" {
		r.Range.To = aux.RangeTo
	}
	for _, it := range r.Items() {
		c := it.Core()
		c.DateConfidence = ParseConfidence(string(c.DateConfidence))
	}
	return nil
}
