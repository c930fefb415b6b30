// Package search implements the debounced folder/link search and the
// ranked fuzzy matching used for quick-open.
package search

import (
	"github.com/sahilm/fuzzy"

	"github.com/nikbrunner/linkkoy/internal/model"
)

// FuzzyResult represents a fuzzy search match.
type FuzzyResult struct {
	Link           model.Link
	MatchedIndexes []int
	Score          int
}

// linkTitles implements fuzzy.Source for a link slice.
type linkTitles []model.Link

func (lt linkTitles) String(i int) string {
	return lt[i].Title
}

func (lt linkTitles) Len() int {
	return len(lt)
}

// FuzzyLinks searches links by title using fuzzy matching.
// Returns results sorted by match score (best first).
func FuzzyLinks(links []model.Link, query string) []FuzzyResult {
	if query == "" {
		return nil
	}

	matches := fuzzy.FindFrom(query, linkTitles(links))

	results := make([]FuzzyResult, len(matches))
	for i, m := range matches {
		results[i] = FuzzyResult{
			Link:           links[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return results
}
