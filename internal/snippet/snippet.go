// Package snippet renders the compact markdown context block stored on a
// report.
package snippet

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"last30days/internal/model"
)

// PerSource caps how many items of each source are listed.
const PerSource = 5

const (
	titleLimit = 120
	notesLimit = 2
)

type Line struct {
	Score int
	Title string
	Meta  string
	URL   string
	Notes []string
}

type Section struct {
	Name  string
	Lines []Line
}

type Data struct {
	Topic         string
	From          string
	To            string
	Mode          string
	Models        string
	Sections      []Section
	BestPractices []string
	Errors        []string
}

//go:embed snippet.tmpl
var snippetTpl string

var compiled = template.Must(template.New("snippet").Parse(snippetTpl))

// Render builds the snippet for r. Items are listed in report order.
func Render(r *model.Report) (string, error) {
	var buf bytes.Buffer
	if err := compiled.Execute(&buf, build(r)); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n") + "\n", nil
}

func build(r *model.Report) Data {
	d := Data{
		Topic:         r.Topic,
		From:          r.Range.From,
		To:            r.Range.To,
		Mode:          r.Mode,
		BestPractices: r.BestPractices,
	}

	var models []string
	if r.OpenAIModelUsed != nil {
		models = append(models, "openai="+*r.OpenAIModelUsed)
	}
	if r.XAIModelUsed != nil {
		models = append(models, "xai="+*r.XAIModelUsed)
	}
	d.Models = strings.Join(models, ", ")

	if lines := redditLines(r.Reddit); len(lines) > 0 {
		d.Sections = append(d.Sections, Section{Name: "Reddit", Lines: lines})
	}
	if lines := xLines(r.X); len(lines) > 0 {
		d.Sections = append(d.Sections, Section{Name: "X", Lines: lines})
	}
	if lines := webLines(r.Web); len(lines) > 0 {
		d.Sections = append(d.Sections, Section{Name: "Web", Lines: lines})
	}

	for _, e := range []struct{ src, msg string }{
		{"reddit", r.RedditError}, {"x", r.XError}, {"web", r.WebError},
	} {
		if e.msg != "" {
			d.Errors = append(d.Errors, fmt.Sprintf("%s: %s", e.src, e.msg))
		}
	}
	return d
}

func redditLines(items []model.RedditItem) []Line {
	var out []Line
	for i := range items {
		if i == PerSource {
			break
		}
		it := &items[i]
		meta := joinMeta("r/"+it.Subreddit, it.DateString())
		if it.Subreddit == "" {
			meta = it.DateString()
		}
		notes := it.CommentInsights
		if len(notes) > notesLimit {
			notes = notes[:notesLimit]
		}
		out = append(out, Line{Score: it.Score, Title: clip(it.Title), Meta: meta, URL: it.URL, Notes: notes})
	}
	return out
}

func xLines(items []model.XItem) []Line {
	var out []Line
	for i := range items {
		if i == PerSource {
			break
		}
		it := &items[i]
		handle := ""
		if it.AuthorHandle != "" {
			handle = "@" + it.AuthorHandle
		}
		out = append(out, Line{Score: it.Score, Title: clip(it.Text), Meta: joinMeta(handle, it.DateString()), URL: it.URL})
	}
	return out
}

func webLines(items []model.WebSearchItem) []Line {
	var out []Line
	for i := range items {
		if i == PerSource {
			break
		}
		it := &items[i]
		out = append(out, Line{Score: it.Score, Title: clip(it.Title), Meta: joinMeta(it.SourceDomain, it.DateString()), URL: it.URL})
	}
	return out
}

func joinMeta(parts ...string) string {
	var keep []string
	for _, p := range parts {
		if p != "" {
			keep = append(keep, p)
		}
	}
	return strings.Join(keep, ", ")
}

// clip flattens whitespace and shortens s to titleLimit runes.
func clip(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= titleLimit {
		return s
	}
	return strings.TrimSpace(string(r[:titleLimit])) + "..."
}
