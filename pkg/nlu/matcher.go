package nlu

import (
	"context"
	"strings"
	"unicode"

	"github.com/smartsales-io/report-engine/pkg/catalog"
	"github.com/smartsales-io/report-engine/pkg/models"
	"github.com/smartsales-io/report-engine/pkg/textutil"
)

var kindToFilterKey = map[catalog.Kind]models.FilterKey{
	catalog.KindBrand:    models.FilterBrand,
	catalog.KindCategory: models.FilterCategory,
	catalog.KindProduct:  models.FilterProduct,
	catalog.KindCustomer: models.FilterCustomer,
}

// EntityMatcher tags catalog names appearing literally in the prompt,
// case- and accent-insensitive. The longest matching name per catalog
// wins, so "Refrigerador XL" beats "Refrigerador".
type EntityMatcher struct {
	cache *catalog.Cache
}

// NewEntityMatcher creates a matcher over the catalog cache.
func NewEntityMatcher(cache *catalog.Cache) *EntityMatcher {
	return &EntityMatcher{cache: cache}
}

// Extract returns the catalog entities found in the text, keyed by
// filter key. Values are the canonical catalog names. A catalog that
// cannot be loaded contributes nothing; extraction is best-effort.
func (m *EntityMatcher) Extract(ctx context.Context, text string) map[models.FilterKey]string {
	normText := textutil.Normalize(text)
	out := make(map[models.FilterKey]string)

	for _, kind := range catalog.Kinds {
		names, err := m.cache.Get(ctx, kind)
		if err != nil {
			continue
		}
		best := ""
		for _, name := range names {
			needle := textutil.Normalize(name)
			if len(needle) < 3 {
				continue
			}
			if containsPhrase(normText, needle) && len(needle) > len(textutil.Normalize(best)) {
				best = name
			}
		}
		if best != "" {
			out[kindToFilterKey[kind]] = best
		}
	}
	return out
}

// containsPhrase reports whether needle occurs in text on word
// boundaries.
func containsPhrase(text, needle string) bool {
	for from := 0; from < len(text); {
		idx := strings.Index(text[from:], needle)
		if idx < 0 {
			return false
		}
		start := from + idx
		end := start + len(needle)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		from = start + 1
	}
	return false
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r := rune(text[i-1])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r := rune(text[i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
