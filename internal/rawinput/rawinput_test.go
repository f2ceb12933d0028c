package rawinput

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"last30days/internal/normalize"
)

const sampleYAML = `
reddit:
  - id: R1
    title: "Best Go web frameworks in 2026"
    url: https://www.reddit.com/r/golang/comments/abc/best/
    subreddit: golang
    date: "2026-01-15"
    relevance: 0.85
    why_relevant: direct comparison
    engagement:
      score: 120
      num_comments: 45
      upvote_ratio: 0.93
x:
  - text: "chi vs echo, thoughts?"
    url: https://x.com/dev/status/1
    author_handle: dev
    date: "2026-01-20"
    relevance: "0.7"
    engagement: {likes: 40, reposts: 3}
web:
  - title: Framework roundup
    url: https://blog.dev/2026/01/10/roundup/
    snippet: A roundup of frameworks.
best_practices:
  - Prefer the standard library router
prompt_pack:
  - "Build a chi service"
x_error: "HTTP 429: Too Many Requests"
threads:
  https://www.reddit.com/r/golang/comments/abc/best/:
    - data:
        children:
          - data: {score: 130}
`

func TestParseYAML(t *testing.T) {
	b, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	require.Len(t, b.Reddit, 1)
	r := b.Reddit[0]
	assert.Equal(t, "R1", r.ID)
	assert.Equal(t, "2026-01-15", r.Date)
	require.NotNil(t, r.Engagement)
	assert.Equal(t, 120, *normalize.Int(r.Engagement.Score))
	assert.InDelta(t, 0.93, *normalize.Float(r.Engagement.UpvoteRatio), 1e-9)

	require.Len(t, b.X, 1)
	assert.Equal(t, 0.7, normalize.Relevance(b.X[0].Relevance))
	assert.Equal(t, 40, *normalize.Int(b.X[0].Engagement.Likes))

	require.Len(t, b.Web, 1)
	assert.Equal(t, "Framework roundup", b.Web[0].Title)

	assert.Equal(t, []string{"Prefer the standard library router"}, b.BestPractices)
	assert.Equal(t, []string{"Build a chi service"}, b.PromptPack)
	assert.Equal(t, "HTTP 429: Too Many Requests", b.XError)
	assert.False(t, b.Empty())

	raw := b.Thread("https://www.reddit.com/r/golang/comments/abc/best/")
	require.NotNil(t, raw)
	assert.JSONEq(t, `[{"data":{"children":[{"data":{"score":130}}]}}]`, string(raw))
	assert.Nil(t, b.Thread("https://www.reddit.com/other"))
}

func TestParseJSON(t *testing.T) {
	b, err := Parse([]byte(`{"web":[{"title":"T","url":"https://a.dev","relevance":0.4}],"web_error":""}`))
	require.NoError(t, err)
	require.Len(t, b.Web, 1)
	assert.Equal(t, 0.4, normalize.Relevance(b.Web[0].Relevance))
	assert.Empty(t, b.Reddit)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("   \n"))
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = Parse([]byte("reddit: [unterminated"))
	assert.Error(t, err)

	_, err = Parse([]byte("reddit: just a string"))
	assert.Error(t, err)
}

func TestParseFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "in.yaml")
	require.NoError(t, os.WriteFile(p, []byte(sampleYAML), 0o644))
	b, err := ParseFile(p)
	require.NoError(t, err)
	assert.Len(t, b.Reddit, 1)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRead(t *testing.T) {
	b, err := Read(strings.NewReader("best_practices: [a, b]"))
	require.NoError(t, err)
	assert.True(t, b.Empty())
	assert.Len(t, b.BestPractices, 2)
}
