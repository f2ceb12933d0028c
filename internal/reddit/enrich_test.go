package reddit

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"last30days/internal/httpclient"
	"last30days/internal/model"
)

const threadJSON = `[
  {"kind":"Listing","data":{"children":[{"kind":"t3","data":{
    "score":120,"num_comments":45,"upvote_ratio":0.93,"created_utc":1768435200,
    "permalink":"/r/golang/comments/abc/generics/","title":"Generics in practice","selftext":"body"}}]}},
  {"kind":"Listing","data":{"children":[
    {"kind":"t1","data":{"score":5,"created_utc":1768521600,"author":"alice","body":"Short one","permalink":"/r/golang/comments/abc/generics/c1/"}},
    {"kind":"t1","data":{"score":50,"created_utc":1768521600,"author":"bob","body":"We migrated our whole codebase last quarter. The biggest win was deleting reflection-heavy helpers, and the compile times barely moved at all. We would do it again without hesitation, honestly.","permalink":"/r/golang/comments/abc/generics/c2/"}},
    {"kind":"t1","data":{"score":40,"author":"[deleted]","body":"gone"}},
    {"kind":"more","data":{"count":10}},
    {"kind":"t1","data":{"score":30,"author":"carol","body":"lol this is exactly what happened to our team as well, wow"}},
    {"kind":"t1","data":{"score":20,"author":"dave","body":""}}
  ]}}
]`

func TestExtractPath(t *testing.T) {
	p, ok := ExtractPath("https://www.reddit.com/r/golang/comments/abc/generics/")
	require.True(t, ok)
	assert.Equal(t, "/r/golang/comments/abc/generics/", p)

	_, ok = ExtractPath("https://example.com/r/golang")
	assert.False(t, ok)
	_, ok = ExtractPath("::not a url")
	assert.False(t, ok)
}

func TestParseThread(t *testing.T) {
	th := ParseThread(json.RawMessage(threadJSON))
	require.NotNil(t, th.Submission)
	assert.Equal(t, 120, *th.Submission.Score)
	assert.Equal(t, 45, *th.Submission.NumComments)
	assert.InDelta(t, 0.93, *th.Submission.UpvoteRatio, 1e-9)
	assert.Equal(t, "Generics in practice", th.Submission.Title)

	// "more" and empty-body children are skipped
	require.Len(t, th.Comments, 4)
	assert.Equal(t, "alice", th.Comments[0].Author)
	assert.Equal(t, "[deleted]", th.Comments[2].Author)
}

func TestParseThreadDegrades(t *testing.T) {
	assert.Nil(t, ParseThread(json.RawMessage(`{"error":404}`)).Submission)
	assert.Nil(t, ParseThread(json.RawMessage(`[]`)).Submission)
	th := ParseThread(json.RawMessage(`[{"data":{"children":[{"kind":"t3","data":{"score":3}}]}}]`))
	require.NotNil(t, th.Submission)
	assert.Equal(t, 3, *th.Submission.Score)
	assert.Nil(t, th.Submission.NumComments)
	assert.Empty(t, th.Comments)
}

func TestParseThreadTruncates(t *testing.T) {
	long := strings.Repeat("é", 400)
	raw := `[{"data":{"children":[{"data":{"selftext":"` + strings.Repeat("s", 600) + `"}}]}},` +
		`{"data":{"children":[{"kind":"t1","data":{"author":"a","body":"` + long + `"}}]}}]`
	th := ParseThread(json.RawMessage(raw))
	require.NotNil(t, th.Submission)
	assert.Len(t, th.Submission.Selftext, 500)
	require.Len(t, th.Comments, 1)
	assert.Equal(t, 300, len([]rune(th.Comments[0].Body)))
}

func TestTopComments(t *testing.T) {
	in := []RawComment{
		{Score: 1, Author: "a"},
		{Score: 9, Author: "[removed]"},
		{Score: 5, Author: "b"},
		{Score: 5, Author: "c"},
		{Score: 7, Author: "[deleted]"},
		{Score: 3, Author: "d"},
	}
	got := TopComments(in, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Author)
	assert.Equal(t, "c", got[1].Author)
	assert.Len(t, TopComments(in, 10), 4)
}

func TestExtractInsights(t *testing.T) {
	sentence := "This library saved us weeks of work on the ingestion side. " + strings.Repeat("More detail follows here ", 8)
	noBoundary := strings.Repeat("word ", 40)
	in := []RawComment{
		{Body: "too short"},
		{Body: "Thanks."},
		{Body: "haha that was the funniest thing I have read all week long"},
		{Body: "[removed] by moderators for breaking the rules of the sub"},
		{Body: sentence},
		{Body: noBoundary},
		{Body: "A reasonably sized comment that fits entirely."},
	}
	got := ExtractInsights(in, 7)
	require.Len(t, got, 3)
	assert.Equal(t, "This library saved us weeks of work on the ingestion side.", got[0])
	assert.True(t, strings.HasSuffix(got[1], "word..."), got[1])
	assert.Equal(t, "A reasonably sized comment that fits entirely.", got[2])

	assert.Len(t, ExtractInsights(in, 1), 1)
	assert.Empty(t, ExtractInsights(in[:4], 7))
}

func TestExtractInsightsSkipsLaughter(t *testing.T) {
	in := []RawComment{
		{Body: "This is great haha, I really loved the part about the scheduler."},
		{Body: "Reading the benchmark section had me going lmao, great writeup."},
		{Body: "lol no, the allocator numbers do not support that claim at all."},
		{Body: "A colleague said lol is fine here, but the numbers look solid."},
	}
	got := ExtractInsights(in, 7)
	assert.Equal(t, []string{"A colleague said lol is fine here, but the numbers look solid."}, got,
		"lmao and haha anywhere are low signal; lol only at the start")
}

func TestExtractInsightsScanWindow(t *testing.T) {
	var in []RawComment
	for i := 0; i < 4; i++ {
		in = append(in, RawComment{Body: "ok"})
	}
	in = append(in, RawComment{Body: "A perfectly good insight that is long enough to count."})
	assert.Empty(t, ExtractInsights(in, 2), "only the first 2*limit comments are scanned")
}

func TestEnrichWithMock(t *testing.T) {
	it := &model.RedditItem{
		Base:  model.Base{ID: "R1", URL: "https://www.reddit.com/r/golang/comments/abc/generics/", Date: model.StringPtr("2026-01-01")},
		Title: "Generics in practice",
	}
	e := NewEnricher(nil)
	require.NoError(t, e.Enrich(context.Background(), it, json.RawMessage(threadJSON)))

	require.NotNil(t, it.Engagement)
	assert.Equal(t, 120, *it.Engagement.Score)
	assert.Equal(t, 45, *it.Engagement.NumComments)
	assert.Equal(t, "2026-01-15", *it.Date)

	require.Len(t, it.TopComments, 3)
	assert.Equal(t, "bob", it.TopComments[0].Author)
	assert.Equal(t, "https://reddit.com/r/golang/comments/abc/generics/c2/", it.TopComments[0].URL)
	assert.Equal(t, "2026-01-16", *it.TopComments[0].Date)
	assert.Len(t, []rune(it.TopComments[0].Excerpt), 193)
	assert.Nil(t, it.TopComments[1].Date)
	assert.Empty(t, it.TopComments[1].URL)

	require.Len(t, it.CommentInsights, 1)
	assert.Equal(t, "We migrated our whole codebase last quarter. The biggest win was deleting reflection-heavy helpers, and the compile times barely moved at all.", it.CommentInsights[0])
}

func TestEnrichNonThreadURLLeavesItem(t *testing.T) {
	it := &model.RedditItem{Base: model.Base{URL: "https://example.com/post", Date: model.StringPtr("2026-01-03")}}
	err := NewEnricher(nil).Enrich(context.Background(), it, nil)
	assert.ErrorIs(t, err, ErrNotThreadURL)
	assert.Equal(t, "2026-01-03", *it.Date)
	assert.Nil(t, it.TopComments)
}

// rewriteTransport sends every request to the test server regardless of host.
type rewriteTransport struct {
	target string
}

func (rt rewriteTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.URL.Scheme = "http"
	r.URL.Host = strings.TrimPrefix(rt.target, "http://")
	return http.DefaultTransport.RoundTrip(r)
}

func TestFetchThreadLive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/r/golang/comments/abc/generics.json", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("raw_json"))
		w.Write([]byte(threadJSON))
	}))
	defer srv.Close()

	c := httpclient.New(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.SetTransport(rewriteTransport{target: srv.URL})
	e := NewEnricher(c)

	raw, err := e.FetchThread(context.Background(), "https://www.reddit.com/r/golang/comments/abc/generics/", nil)
	require.NoError(t, err)
	assert.NotNil(t, ParseThread(raw).Submission)
}
