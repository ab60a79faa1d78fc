// Package fuzzy filters and highlights lists of named items against a user
// query. Matching is case-insensitive and unicode-normalized.
package fuzzy

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

var highlightStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))

// Filter returns the subset of items matching query, preserving the input
// order. An empty query returns all items unchanged.
func Filter(query string, items []string) []string {
	if query == "" {
		return items
	}

	matched := make([]string, 0, len(items))
	for _, item := range items {
		if fuzzy.MatchNormalizedFold(query, item) {
			matched = append(matched, item)
		}
	}
	return matched
}

// Highlight returns item with the first case-insensitive occurrence of query
// emphasized. When query is not a contiguous substring the item is returned
// unchanged; fuzzy (non-contiguous) matches are still listed, just not
// highlighted.
func Highlight(query, item string) string {
	if query == "" {
		return item
	}

	idx := strings.Index(strings.ToLower(item), strings.ToLower(query))
	if idx < 0 {
		return item
	}

	return item[:idx] + highlightStyle.Render(item[idx:idx+len(query)]) + item[idx+len(query):]
}
