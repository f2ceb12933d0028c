// Package rawinput loads externally fetched per-source result lists. The
// file is YAML; JSON documents are accepted too since they parse as YAML.
package rawinput

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"last30days/internal/normalize"
	"last30days/internal/websearch"
)

// Bundle is everything one research run consumes besides its parameters.
type Bundle struct {
	Reddit []normalize.RawRedditItem `yaml:"reddit"`
	X      []normalize.RawXItem      `yaml:"x"`
	Web    []websearch.RawResult     `yaml:"web"`

	BestPractices []string `yaml:"best_practices"`
	PromptPack    []string `yaml:"prompt_pack"`

	// Upstream fetch failures, copied onto the report.
	RedditError string `yaml:"reddit_error"`
	XError      string `yaml:"x_error"`
	WebError    string `yaml:"web_error"`

	// Threads holds pre-fetched thread payloads keyed by thread URL. When
	// present they replace live fetches during enrichment.
	Threads map[string]any `yaml:"threads"`
}

// ErrEmptyInput is returned for a document with no content.
var ErrEmptyInput = errors.New("rawinput: empty input")

// ParseFile reads and decodes the bundle at path. "-" reads stdin.
func ParseFile(path string) (*Bundle, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	b, err := Read(r)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return b, nil
}

// Read decodes a bundle from r.
func Read(r io.Reader) (*Bundle, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a bundle from YAML or JSON bytes.
func Parse(data []byte) (*Bundle, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyInput
	}
	var b Bundle
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Thread returns the pre-fetched payload for url as JSON, or nil.
func (b *Bundle) Thread(url string) json.RawMessage {
	if b == nil || b.Threads == nil {
		return nil
	}
	v, ok := b.Threads[url]
	if !ok || v == nil {
		return nil
	}
	if s, ok := v.(string); ok {
		return json.RawMessage(s)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return raw
}

// Empty reports whether the bundle carries no items at all.
func (b *Bundle) Empty() bool {
	return b == nil || len(b.Reddit)+len(b.X)+len(b.Web) == 0
}
