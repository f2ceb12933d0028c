// Package dedupe collapses near-duplicate items by character trigram
// similarity, keeping the higher-scored member of each pair.
package dedupe

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"last30days/internal/model"
)

const (
	DefaultThreshold = 0.7
	DefaultN         = 3
)

var (
	nonWord = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	spaces  = regexp.MustCompile(`\s+`)
)

// NormalizeText lowercases, folds compatibility forms, turns punctuation
// into spaces and collapses whitespace.
func NormalizeText(s string) string {
	s = strings.ToLower(norm.NFKC.String(s))
	s = nonWord.ReplaceAllString(s, " ")
	s = spaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NGrams returns the set of n-rune substrings of the normalized text, or
// the whole text when it is shorter than n. Text that normalizes to empty
// yields {""}, so punctuation-only texts match each other.
func NGrams(text string, n int) map[string]struct{} {
	r := []rune(NormalizeText(text))
	set := make(map[string]struct{})
	if len(r) < n {
		set[string(r)] = struct{}{}
		return set
	}
	for i := 0; i+n <= len(r); i++ {
		set[string(r[i:i+n])] = struct{}{}
	}
	return set
}

// Jaccard is |a∩b| / |a∪b|, or 0 if either set is empty.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// FindDuplicates returns every index pair (i<j) whose display texts are at
// least threshold similar.
func FindDuplicates(items []model.Scorable, threshold float64) [][2]int {
	grams := make([]map[string]struct{}, len(items))
	for i, it := range items {
		grams[i] = NGrams(it.DisplayText(), DefaultN)
	}
	var pairs [][2]int
	for i := range items {
		for j := i + 1; j < len(items); j++ {
			if Jaccard(grams[i], grams[j]) >= threshold {
				pairs = append(pairs, [2]int{i, j})
			}
		}
	}
	return pairs
}

// Scorables drops the lower-scored member of every near-duplicate pair.
// On equal scores the later item goes.
func Scorables(items []model.Scorable, threshold float64) []model.Scorable {
	keep := survivors(items, threshold)
	out := make([]model.Scorable, 0, len(items))
	for i, it := range items {
		if keep[i] {
			out = append(out, it)
		}
	}
	return out
}

// Items is Scorables for a slice of concrete items.
func Items[T any, P interface {
	*T
	model.Scorable
}](items []T, threshold float64) []T {
	view := make([]model.Scorable, len(items))
	for i := range items {
		view[i] = P(&items[i])
	}
	keep := survivors(view, threshold)
	out := make([]T, 0, len(items))
	for i := range items {
		if keep[i] {
			out = append(out, items[i])
		}
	}
	return out
}

func survivors(items []model.Scorable, threshold float64) []bool {
	keep := make([]bool, len(items))
	for i := range keep {
		keep[i] = true
	}
	if len(items) < 2 {
		return keep
	}
	for _, p := range FindDuplicates(items, threshold) {
		i, j := p[0], p[1]
		if items[i].Core().Score >= items[j].Core().Score {
			keep[j] = false
		} else {
			keep[i] = false
		}
	}
	return keep
}
