package nlu

import (
	"regexp"

	"github.com/smartsales-io/report-engine/pkg/models"
	"github.com/smartsales-io/report-engine/pkg/textutil"
)

// MinClassifierConfidence is the confidence below which the statistical
// classifier's label is ignored.
const MinClassifierConfidence = 0.65

// IntentPattern pairs an intent with the synonym patterns that select
// it. The pattern list is ordered; the first matching intent wins.
type IntentPattern struct {
	Intent   models.Intent
	Patterns []*regexp.Regexp
}

func compileAll(exprs ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		res[i] = regexp.MustCompile(e)
	}
	return res
}

// defaultIntentPatterns is the ordered synonym cascade for the seven
// fixed report shapes, matched against normalized (accent-stripped,
// lowercase) text.
var defaultIntentPatterns = []IntentPattern{
	{models.IntentSalesByMonth, compileAll(`ventas? por mes`, `\bpor mes\b`, `\bmensual\b`)},
	{models.IntentSalesByBrand, compileAll(`\bpor marca\b`, `\bmarcas?\b`)},
	{models.IntentSalesByCategory, compileAll(`\bpor categoria\b`, `\bcategorias?\b`, `\btipo\b`)},
	{models.IntentTopProducts, compileAll(`\btop\b`, `mas vendidos?`, `productos mas vendidos`)},
	{models.IntentSalesByCustomer, compileAll(`\bpor cliente\b`, `\bclientes?\b`)},
	{models.IntentAverageTicket, compileAll(`ticket promedio`, `ticket medio`, `\bpromedio\b`)},
	{models.IntentWarrantyByStatus, compileAll(`\bgarantias?\b`, `\brma\b`, `devoluciones?`)},
}

var (
	// Explicit line-level vocabulary always forces the detail shape.
	detailWordRe = regexp.MustCompile(`\bdetalle\b|\bdetallad\w*|\blistados?\b|\blista\b|\blineas?\b`)
	// An entity noun combined with a quantity/price word also signals
	// that the user wants line-level data.
	entityNounRe  = regexp.MustCompile(`\bproductos?\b|\bmarcas?\b|\bcategor\w*|\bclientes?\b|\bgarantias?\b`)
	measureWordRe = regexp.MustCompile(`\bcantidad(?:es)?\b|\bprecios?\b|\bunidades\b|\bmontos?\b`)
)

// IntentResolver picks one of the eight report intents by combining the
// statistical classifier with the synonym cascade and the override
// rules for detail-shaped requests.
type IntentResolver struct {
	classifier IntentClassifier
	patterns   []IntentPattern
}

// NewIntentResolver creates a resolver with the default synonym
// cascade. classifier may be nil.
func NewIntentResolver(classifier IntentClassifier) *IntentResolver {
	return &IntentResolver{classifier: classifier, patterns: defaultIntentPatterns}
}

// NewIntentResolverWithPatterns substitutes the synonym cascade; used
// by tests with smaller tables.
func NewIntentResolverWithPatterns(classifier IntentClassifier, patterns []IntentPattern) *IntentResolver {
	return &IntentResolver{classifier: classifier, patterns: patterns}
}

// Resolve picks the intent for the prompt. hasGroup reports whether a
// group directive (explicit or inferred) was parsed; filters is the
// resolved filter set. Both force the detail shape: a group directive
// unconditionally, a filter on product/brand/category/customer likewise
// (filtered data needs the richer line-level query).
func (r *IntentResolver) Resolve(text string, hasGroup bool, filters models.FilterSet) models.Intent {
	norm := textutil.Normalize(text)

	intent := models.IntentSalesByMonth
	if r.classifier != nil {
		if p, ok := r.classifier.PredictProba(text); ok && p.Confidence >= MinClassifierConfidence {
			intent = p.Label
		}
	}

	if isDetailTrigger(norm) {
		intent = models.IntentSalesDetail
	} else {
	scan:
		for _, ip := range r.patterns {
			for _, re := range ip.Patterns {
				if re.MatchString(norm) {
					intent = ip.Intent
					break scan
				}
			}
		}
	}

	if hasGroup {
		return models.IntentSalesDetail
	}

	if intent != models.IntentSalesDetail {
		for _, key := range []models.FilterKey{models.FilterProduct, models.FilterBrand, models.FilterCategory, models.FilterCustomer} {
			if filters[key] != "" {
				return models.IntentSalesDetail
			}
		}
	}
	return intent
}

func isDetailTrigger(norm string) bool {
	if detailWordRe.MatchString(norm) {
		return true
	}
	return entityNounRe.MatchString(norm) && measureWordRe.MatchString(norm)
}
