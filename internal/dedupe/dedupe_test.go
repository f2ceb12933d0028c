package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"last30days/internal/model"
)

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "hello world", NormalizeText("  Hello,   World!! "))
	assert.Equal(t, "go 1 24 released", NormalizeText("Go 1.24 / released"))
	assert.Equal(t, "fine", NormalizeText("ﬁne"), "compatibility ligatures fold")
	assert.Equal(t, "snake_case ok", NormalizeText("snake_case: ok"))
}

func TestNGrams(t *testing.T) {
	assert.Equal(t, map[string]struct{}{"abc": {}, "bcd": {}}, NGrams("ABCD", 3))
	assert.Equal(t, map[string]struct{}{"ab": {}}, NGrams("ab", 3))
	assert.Equal(t, map[string]struct{}{"": {}}, NGrams("!!!", 3))
	assert.Len(t, NGrams("héllo", 3), 3)
}

func TestJaccard(t *testing.T) {
	a := NGrams("abcd", 3)
	assert.Equal(t, 1.0, Jaccard(a, NGrams("ABCD", 3)))
	assert.Equal(t, 0.0, Jaccard(a, map[string]struct{}{}))
	assert.Equal(t, 0.0, Jaccard(nil, a))
	assert.InDelta(t, 1.0/3.0, Jaccard(a, NGrams("bcde", 3)), 1e-9)
}

func x(id, text string, score int) model.XItem {
	return model.XItem{Base: model.Base{ID: id, Score: score}, Text: text}
}

func TestItemsKeepsHigherScore(t *testing.T) {
	items := []model.XItem{
		x("low", "Go 1.24 released with generic type aliases", 40),
		x("other", "Completely unrelated post about gardening", 70),
		x("high", "Go 1.24 released with generic type aliases!", 80),
	}
	got := Items(items, DefaultThreshold)
	require.Len(t, got, 2)
	assert.Equal(t, "other", got[0].ID)
	assert.Equal(t, "high", got[1].ID)
}

func TestItemsTieDropsSecond(t *testing.T) {
	items := []model.RedditItem{
		{Base: model.Base{ID: "first", Score: 50}, Title: "Same title"},
		{Base: model.Base{ID: "second", Score: 50}, Title: "same title."},
	}
	got := Items(items, DefaultThreshold)
	require.Len(t, got, 1)
	assert.Equal(t, "first", got[0].ID)
}

func TestPunctuationOnlyTextsAreDuplicates(t *testing.T) {
	assert.Equal(t, map[string]struct{}{"": {}}, NGrams("!!", 3))

	items := []model.XItem{x("a", "!!", 10), x("b", "??", 20), x("c", "real words here", 5)}
	got := Items(items, DefaultThreshold)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
}

func TestFindDuplicatesAndScorables(t *testing.T) {
	a := &model.WebSearchItem{Base: model.Base{ID: "a", Score: 10}, Title: "rust async runtime benchmarks"}
	b := &model.RedditItem{Base: model.Base{ID: "b", Score: 30}, Title: "Rust async runtime benchmarks"}
	c := &model.XItem{Base: model.Base{ID: "c", Score: 20}, Text: "something else"}
	items := []model.Scorable{a, b, c}

	assert.Equal(t, [][2]int{{0, 1}}, FindDuplicates(items, DefaultThreshold))

	got := Scorables(items, DefaultThreshold)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Core().ID)
	assert.Equal(t, "c", got[1].Core().ID)
}

func TestItemsSmallInputs(t *testing.T) {
	assert.Empty(t, Items([]model.XItem(nil), DefaultThreshold))
	assert.Len(t, Items([]model.XItem{x("only", "x", 1)}, DefaultThreshold), 1)
}
