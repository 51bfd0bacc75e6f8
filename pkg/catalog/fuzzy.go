package catalog

import (
	"context"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/smartsales-io/report-engine/pkg/textutil"
)

// MatchThreshold is the minimum similarity (on a 0-100 scale) for a raw
// prompt value to be replaced by the closest catalog entry.
const MatchThreshold = 83.0

// Scorer returns a similarity score in [0, 1] for two strings.
type Scorer func(a, b string) float64

// defaultScorer compares normalized text so that casing and accents do
// not count against the similarity.
func defaultScorer(a, b string) float64 {
	return strutil.Similarity(textutil.Normalize(a), textutil.Normalize(b), metrics.NewJaroWinkler())
}

// Matcher normalizes raw text against a catalog via fuzzy similarity.
type Matcher struct {
	cache  *Cache
	scorer Scorer
}

// NewMatcher creates a matcher over the given cache using Jaro-Winkler
// similarity.
func NewMatcher(cache *Cache) *Matcher {
	return &Matcher{cache: cache, scorer: defaultScorer}
}

// NewMatcherWithScorer creates a matcher with a custom similarity
// function. Used by tests to pin the threshold boundary.
func NewMatcherWithScorer(cache *Cache, scorer Scorer) *Matcher {
	return &Matcher{cache: cache, scorer: scorer}
}

// BestMatch returns the catalog entry closest to text when its score
// reaches MatchThreshold, or "" when no entry is close enough. A lookup
// failure also returns "" - fuzzy normalization is best-effort.
func (m *Matcher) BestMatch(ctx context.Context, kind Kind, text string) string {
	if text == "" {
		return ""
	}
	choices, err := m.cache.Get(ctx, kind)
	if err != nil {
		return ""
	}

	best := ""
	bestScore := 0.0
	for _, choice := range choices {
		score := m.scorer(text, choice) * 100
		if score > bestScore {
			best, bestScore = choice, score
		}
	}
	if bestScore >= MatchThreshold {
		return best
	}
	return ""
}

// Normalize replaces text with its closest catalog entry when one
// clears the threshold, otherwise keeps the raw text.
func (m *Matcher) Normalize(ctx context.Context, kind Kind, text string) string {
	if match := m.BestMatch(ctx, kind, text); match != "" {
		return match
	}
	return text
}
