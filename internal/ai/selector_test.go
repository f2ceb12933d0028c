package ai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"last30days/internal/cache"
	"last30days/internal/config"
)

type memCache map[string]string

func (m memCache) CachedModel(p string) (string, bool) {
	v, ok := m[p]
	return v, ok
}

func (m memCache) SetCachedModel(p, model string) error {
	m[p] = model
	return nil
}

type fakeCatalog struct {
	models []CatalogModel
	err    error
	calls  int
}

func (f *fakeCatalog) ListModels(context.Context) ([]CatalogModel, error) {
	f.calls++
	return f.models, f.err
}

func TestParseVersion(t *testing.T) {
	assert.Equal(t, []int{5}, ParseVersion("gpt-5"))
	assert.Equal(t, []int{5, 2}, ParseVersion("gpt-5.2"))
	assert.Equal(t, []int{5, 2, 1}, ParseVersion("gpt-5.2.1"))
	assert.Nil(t, ParseVersion("davinci"))
}

func TestIsMainlineOpenAI(t *testing.T) {
	for _, id := range []string{"gpt-5", "gpt-5.1", "GPT-5.2", "gpt-5.2.1"} {
		assert.True(t, IsMainlineOpenAI(id), id)
	}
	for _, id := range []string{"gpt-5-mini", "gpt-5.1-codex", "gpt-5-pro", "gpt-4o", "gpt-5-chat-latest", "o3"} {
		assert.False(t, IsMainlineOpenAI(id), id)
	}
}

func TestSelectOpenAIPinned(t *testing.T) {
	s := &Selector{Cache: memCache{ProviderOpenAI: "gpt-5"}}
	assert.Equal(t, "gpt-5.1", s.SelectOpenAI(context.Background(), PolicyPinned, "gpt-5.1", nil))
	// pinned without a pin behaves like auto
	assert.Equal(t, "gpt-5", s.SelectOpenAI(context.Background(), PolicyPinned, "", nil))
}

func TestSelectOpenAIFromMock(t *testing.T) {
	mc := memCache{}
	s := &Selector{Cache: mc}
	mock := []CatalogModel{
		{ID: "gpt-5", Created: 100},
		{ID: "gpt-5.2-mini", Created: 400},
		{ID: "gpt-5.1", Created: 300},
		{ID: "gpt-5.2", Created: 200},
		{ID: "gpt-4o", Created: 500},
	}
	got := s.SelectOpenAI(context.Background(), PolicyAuto, "", mock)
	assert.Equal(t, "gpt-5.2", got)
	assert.Equal(t, "gpt-5.2", mc[ProviderOpenAI])

	// cached value now wins over the listing
	got = s.SelectOpenAI(context.Background(), PolicyAuto, "", []CatalogModel{{ID: "gpt-5.9"}})
	assert.Equal(t, "gpt-5.2", got)
}

func TestSelectOpenAICreatedTieBreak(t *testing.T) {
	s := &Selector{Cache: memCache{}}
	mock := []CatalogModel{{ID: "gpt-5.1", Created: 1}, {ID: "GPT-5.1", Created: 2}}
	assert.Equal(t, "GPT-5.1", s.SelectOpenAI(context.Background(), PolicyAuto, "", mock))
}

func TestSelectOpenAIFallbacks(t *testing.T) {
	mc := memCache{}
	cat := &fakeCatalog{err: errors.New("boom")}
	s := &Selector{Cache: mc, Catalog: cat}
	assert.Equal(t, OpenAIFallback, s.SelectOpenAI(context.Background(), PolicyAuto, "", nil))
	assert.Equal(t, 1, cat.calls)
	_, cachedFallback := mc[ProviderOpenAI]
	assert.False(t, cachedFallback)

	s = &Selector{Cache: memCache{}}
	assert.Equal(t, OpenAIFallback, s.SelectOpenAI(context.Background(), PolicyAuto, "", []CatalogModel{{ID: "gpt-4o"}}))
}

func TestSelectXAI(t *testing.T) {
	mc := memCache{}
	s := &Selector{Cache: mc}
	assert.Equal(t, "grok-x", s.SelectXAI(PolicyPinned, "grok-x"))
	assert.Equal(t, "grok-4-1-fast", s.SelectXAI(PolicyLatest, ""))
	assert.Equal(t, "grok-4-1-fast", mc[ProviderXAI])

	mc[ProviderXAI] = "grok-cached"
	assert.Equal(t, "grok-cached", s.SelectXAI(PolicyStable, ""))
	assert.Equal(t, "grok-4-1-fast", s.SelectXAI("bogus", ""))
}

func TestModelsOnlyForConfiguredProviders(t *testing.T) {
	s := &Selector{Cache: memCache{}}
	sel := s.Models(context.Background(), &config.Config{XAIAPIKey: "x", XAIModelPolicy: PolicyLatest}, nil)
	assert.Empty(t, sel.OpenAI)
	assert.Equal(t, "grok-4-1-fast", sel.XAI)

	sel = s.Models(context.Background(), &config.Config{OpenAIAPIKey: "k", OpenAIModelPolicy: PolicyAuto},
		[]CatalogModel{{ID: "gpt-5.1"}})
	assert.Equal(t, "gpt-5.1", sel.OpenAI)
	assert.Empty(t, sel.XAI)
}

func TestSelectorWithFileCache(t *testing.T) {
	c := cache.New(t.TempDir())
	s := &Selector{Cache: c}
	assert.Equal(t, "gpt-5.1", s.SelectOpenAI(context.Background(), PolicyAuto, "", []CatalogModel{{ID: "gpt-5.1"}}))
	m, ok := c.CachedModel(ProviderOpenAI)
	require.True(t, ok)
	assert.Equal(t, "gpt-5.1", m)
}

func TestOpenAICatalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"object":"list","data":[{"id":"gpt-5.1","object":"model","created":10,"owned_by":"openai"},{"id":"gpt-5.2","object":"model","created":20,"owned_by":"openai"}]}`))
	}))
	defer srv.Close()

	cat := NewOpenAICatalog(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})
	models, err := cat.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []CatalogModel{{ID: "gpt-5.1", Created: 10}, {ID: "gpt-5.2", Created: 20}}, models)

	s := &Selector{Cache: memCache{}, Catalog: cat}
	assert.Equal(t, "gpt-5.2", s.SelectOpenAI(context.Background(), PolicyAuto, "", nil))
}
