// Package ai picks which model each provider should be asked to use.
package ai

import (
	"context"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"last30days/internal/config"
)

const (
	ProviderOpenAI = "openai"
	ProviderXAI    = "xai"

	PolicyAuto   = "auto"
	PolicyPinned = "pinned"
	PolicyLatest = "latest"
	PolicyStable = "stable"

	OpenAIFallback = "gpt-5.2"
)

// xaiAliases maps xAI policies to concrete models.
var xaiAliases = map[string]string{
	PolicyLatest: "grok-4-1-fast",
	PolicyStable: "grok-4-1-fast",
}

var (
	mainlineRe = regexp.MustCompile(`^gpt-5(\.\d+)*$`)
	versionRe  = regexp.MustCompile(`\d+(?:\.\d+)*`)

	variantMarkers = []string{"mini", "nano", "chat", "codex", "pro", "preview", "turbo"}
)

// ModelCache remembers the last selection per provider.
type ModelCache interface {
	CachedModel(provider string) (string, bool)
	SetCachedModel(provider, model string) error
}

// Selector resolves model policies to concrete model ids.
type Selector struct {
	Cache   ModelCache
	Catalog Catalog
	Logger  *slog.Logger
}

// Selection holds the chosen model per provider; empty when the provider
// has no key.
type Selection struct {
	OpenAI string
	XAI    string
}

func (s *Selector) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Selector) remember(provider, model string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.SetCachedModel(provider, model); err != nil {
		s.logger().Warn("ai: cache model selection failed", "provider", provider, "err", err)
	}
}

func (s *Selector) cached(provider string) (string, bool) {
	if s.Cache == nil {
		return "", false
	}
	return s.Cache.CachedModel(provider)
}

// ParseVersion extracts the first dotted number run from a model id:
// gpt-5 -> [5], gpt-5.2.1 -> [5 2 1].
func ParseVersion(id string) []int {
	m := versionRe.FindString(id)
	if m == "" {
		return nil
	}
	parts := strings.Split(m, ".")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil
		}
		out = append(out, n)
	}
	return out
}

// compareVersions orders element-wise, a shorter prefix sorting first.
func compareVersions(a, b []int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

// IsMainlineOpenAI accepts plain gpt-5 family ids and rejects variants.
func IsMainlineOpenAI(id string) bool {
	lower := strings.ToLower(id)
	if !mainlineRe.MatchString(lower) {
		return false
	}
	for _, v := range variantMarkers {
		if strings.Contains(lower, v) {
			return false
		}
	}
	return true
}

// SelectOpenAI picks the newest mainline model. mock, when non-nil, replaces
// the live catalog. Listing failures fall back without touching the cache.
func (s *Selector) SelectOpenAI(ctx context.Context, policy, pin string, mock []CatalogModel) string {
	if policy == PolicyPinned && pin != "" {
		return pin
	}
	if m, ok := s.cached(ProviderOpenAI); ok {
		return m
	}

	models := mock
	if models == nil {
		if s.Catalog == nil {
			return OpenAIFallback
		}
		list, err := s.Catalog.ListModels(ctx)
		if err != nil {
			s.logger().Warn("ai: list models failed, using fallback", "fallback", OpenAIFallback, "err", err)
			return OpenAIFallback
		}
		models = list
	}

	candidates := make([]CatalogModel, 0, len(models))
	for _, m := range models {
		if IsMainlineOpenAI(m.ID) {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return OpenAIFallback
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		vi, vj := ParseVersion(candidates[i].ID), ParseVersion(candidates[j].ID)
		if vi == nil {
			vi = []int{0}
		}
		if vj == nil {
			vj = []int{0}
		}
		if c := compareVersions(vi, vj); c != 0 {
			return c > 0
		}
		return candidates[i].Created > candidates[j].Created
	})
	selected := candidates[0].ID
	s.logger().Debug("ai: selected openai model", "model", selected, "candidates", len(candidates))
	s.remember(ProviderOpenAI, selected)
	return selected
}

// SelectXAI resolves an xAI policy. Unknown policies resolve like latest.
func (s *Selector) SelectXAI(policy, pin string) string {
	if policy == PolicyPinned && pin != "" {
		return pin
	}
	alias, ok := xaiAliases[policy]
	if !ok {
		return xaiAliases[PolicyLatest]
	}
	if m, ok := s.cached(ProviderXAI); ok {
		return m
	}
	s.remember(ProviderXAI, alias)
	return alias
}

// Models selects a model for every provider that has a key.
func (s *Selector) Models(ctx context.Context, cfg *config.Config, mockOpenAI []CatalogModel) Selection {
	var sel Selection
	if cfg.OpenAIAPIKey != "" {
		if s.Catalog == nil && mockOpenAI == nil {
			s.Catalog = NewOpenAICatalog(Config{APIKey: cfg.OpenAIAPIKey})
		}
		sel.OpenAI = s.SelectOpenAI(ctx, cfg.OpenAIModelPolicy, cfg.OpenAIModelPin, mockOpenAI)
	}
	if cfg.XAIAPIKey != "" {
		sel.XAI = s.SelectXAI(cfg.XAIModelPolicy, cfg.XAIModelPin)
	}
	return sel
}
