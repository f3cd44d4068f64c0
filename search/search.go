// Package search maps free-text queries onto catalog listing URLs.
package search

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultQuery is used when a request carries no query.
const DefaultQuery = "laptop"

// SortKey selects the catalog ordering.
type SortKey string

// Supported catalog orderings.
const (
	SortRelevance    SortKey = "relevance"
	SortPopularity   SortKey = "popularity"
	SortNewest       SortKey = "newest"
	SortPriceAsc     SortKey = "lowest-price"
	SortPriceDesc    SortKey = "highest-price"
	SortCustomerRank SortKey = "rating"
)

var sortKeys = []SortKey{SortRelevance, SortPopularity, SortNewest, SortPriceAsc, SortPriceDesc, SortCustomerRank}

// ParseSortKey validates s. An empty string selects SortRelevance.
func ParseSortKey(s string) (SortKey, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SortRelevance, nil
	}
	for _, k := range sortKeys {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// BuildURL returns the catalog listing URL for query on origin.
// Words are trimmed and joined with "+"; relevance omits the sort parameter.
func BuildURL(origin, query string, sort SortKey) string {
	words := strings.Fields(query)
	escaped := make([]string, len(words))
	for i, w := range words {
		escaped[i] = url.QueryEscape(w)
	}
	q := strings.Join(escaped, "+")
	base := strings.TrimSuffix(origin, "/") + "/catalog/?q=" + q

	if sort == "" || sort == SortRelevance {
		return base
	}
	return base + "&sort=" + url.QueryEscape(string(sort)) + "#catalog-listing"
}

// Slug joins the query words with hyphens for use in file names.
func Slug(query string) string {
	words := strings.Fields(strings.ToLower(query))
	for i, w := range words {
		words[i] = strings.Map(func(r rune) rune {
			if r == '/' || r == '\\' || r == '.' {
				return -1
			}
			return r
		}, w)
	}
	return strings.Join(words, "-")
}
