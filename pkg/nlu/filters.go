package nlu

import (
	"context"
	"regexp"
	"strings"

	"github.com/smartsales-io/report-engine/pkg/catalog"
	"github.com/smartsales-io/report-engine/pkg/models"
	"github.com/smartsales-io/report-engine/pkg/textutil"
)

var quotedRe = regexp.MustCompile(`["']([^"']+)["']`)

// grabPattern captures the phrase after a connector + label word, up to
// a boundary (connector word, comma, period or " en ").
func grabPattern(labels string) *regexp.Regexp {
	return regexp.MustCompile(
		`(?:\bde la\b|\bde\b|\bdel\b|\bpor\b|\bpara\b)\s+(?:` + labels + `)\s+(.+?)(?:$|\s+(?:y|e|o|u)\s+|,|\.|\s+en\s+)`)
}

var (
	brandGrabRe    = grabPattern(`marcas?\b`)
	categoryGrabRe = grabPattern(`categor[ií]a\b|tipo\b`)
	productGrabRe  = grabPattern(`productos?\b|modelo\b`)
	customerGrabRe = grabPattern(`clientes?\b|usuario\b`)
	addressGrabRe  = grabPattern(`direcci[oó]n\b|domicilio\b|zona\b`)
)

// FilterExtractor resolves optional entity filters from quoted text,
// catalog entity matching and regex fallbacks, normalizing values
// against the catalogs via fuzzy matching.
type FilterExtractor struct {
	entities *EntityMatcher
	matcher  *catalog.Matcher
}

// NewFilterExtractor creates an extractor over the catalog cache.
func NewFilterExtractor(cache *catalog.Cache, matcher *catalog.Matcher) *FilterExtractor {
	return &FilterExtractor{
		entities: NewEntityMatcher(cache),
		matcher:  matcher,
	}
}

var filterKeyToKind = map[models.FilterKey]catalog.Kind{
	models.FilterBrand:    catalog.KindBrand,
	models.FilterCategory: catalog.KindCategory,
	models.FilterProduct:  catalog.KindProduct,
	models.FilterCustomer: catalog.KindCustomer,
}

// Extract resolves the filter set from text. Each stage only fills keys
// that are still empty: quoted substring, catalog entities, then the
// preposition-anchored regex fallbacks.
func (e *FilterExtractor) Extract(ctx context.Context, text string) models.FilterSet {
	filters := models.FilterSet{}

	// 1) first quoted substring names the product verbatim
	if m := quotedRe.FindStringSubmatch(text); m != nil {
		filters[models.FilterProduct] = strings.TrimSpace(m[1])
	}

	// 2) catalog entities
	for key, value := range e.entities.Extract(ctx, text) {
		if _, ok := filters[key]; !ok {
			filters[key] = value
		}
	}

	// 3) fuzzy-normalize whatever is filled so far
	for key, value := range filters {
		if kind, ok := filterKeyToKind[key]; ok {
			filters[key] = e.matcher.Normalize(ctx, kind, value)
		}
	}

	// 4) regex fallbacks for keys still unfilled
	lower := strings.ToLower(text)
	grab := func(re *regexp.Regexp) string {
		loc := re.FindStringSubmatchIndex(lower)
		if loc == nil {
			return ""
		}
		// capture from the original text to preserve casing
		return textutil.TrimPunct(text[loc[2]:loc[3]])
	}

	fallbacks := []struct {
		key models.FilterKey
		re  *regexp.Regexp
	}{
		{models.FilterBrand, brandGrabRe},
		{models.FilterCategory, categoryGrabRe},
		{models.FilterProduct, productGrabRe},
		{models.FilterCustomer, customerGrabRe},
		{models.FilterAddress, addressGrabRe},
	}
	for _, fb := range fallbacks {
		if _, ok := filters[fb.key]; ok {
			continue
		}
		value := grab(fb.re)
		if value == "" {
			continue
		}
		if kind, ok := filterKeyToKind[fb.key]; ok {
			value = e.matcher.Normalize(ctx, kind, value)
		}
		filters[fb.key] = value
	}

	return filters
}
