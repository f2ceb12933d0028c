package snippet

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"last30days/internal/model"
)

func TestRenderEmptyReport(t *testing.T) {
	r := model.NewReport("Agent Skills", "2026-01-01", "2026-01-31", "both", "", "", time.Now())
	out, err := Render(r)
	require.NoError(t, err)
	assert.Contains(t, out, "Agent Skills")
	assert.Contains(t, out, "Last 30 Days")
	assert.Contains(t, out, "2026-01-01 to 2026-01-31 | mode: both")
	assert.NotContains(t, out, "models:")
	assert.NotContains(t, out, "## ")
}

func TestRenderFull(t *testing.T) {
	r := model.NewReport("go web", "2026-01-01", "2026-01-31", "all", "gpt-5.2", "grok-4-1-fast", time.Now())
	for i := 0; i < 7; i++ {
		r.Reddit = append(r.Reddit, model.RedditItem{
			Base:            model.Base{Score: 90 - i, URL: fmt.Sprintf("https://reddit.com/%d", i), Date: model.StringPtr("2026-01-15")},
			Title:           fmt.Sprintf("Thread %d", i),
			Subreddit:       "golang",
			CommentInsights: []string{"one", "two", "three"},
		})
	}
	r.X = []model.XItem{{Base: model.Base{Score: 50}, Text: "multi\nline   post", AuthorHandle: "dev"}}
	r.Web = []model.WebSearchItem{{Base: model.Base{Score: 40, URL: "https://blog.dev/a"}, Title: strings.Repeat("long ", 40), SourceDomain: "blog.dev"}}
	r.BestPractices = []string{"Use context everywhere"}
	r.WebError = "timeout"

	out, err := Render(r)
	require.NoError(t, err)

	assert.Contains(t, out, "models: openai=gpt-5.2, xai=grok-4-1-fast")
	assert.Contains(t, out, "## Reddit\n- [90] Thread 0 (r/golang, 2026-01-15) https://reddit.com/0\n  - one\n  - two\n")
	assert.NotContains(t, out, "three")
	assert.Contains(t, out, "Thread 4")
	assert.NotContains(t, out, "Thread 5")
	assert.Contains(t, out, "## X\n- [50] multi line post (@dev)\n")
	assert.Contains(t, out, "...")
	assert.Contains(t, out, "## Best practices\n- Use context everywhere")
	assert.Contains(t, out, "## Source errors\n- web: timeout")
	assert.True(t, strings.HasSuffix(out, "\n"))
	assert.False(t, strings.HasSuffix(out, "\n\n"))
}
