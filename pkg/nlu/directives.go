package nlu

import (
	"regexp"
	"strings"

	"github.com/smartsales-io/report-engine/pkg/models"
	"github.com/smartsales-io/report-engine/pkg/textutil"
)

// Canonical column tokens produced by the synonym tables.
const (
	ColCustomer      = "customer"
	ColProduct       = "product"
	ColBrand         = "brand"
	ColCategory      = "category"
	ColMonth         = "month"
	ColDate          = "date"
	ColDateRange     = "date_range"
	ColQuantity      = "quantity"
	ColUnitPrice     = "unit_price"
	ColPurchaseCount = "purchase_count"
	ColTotalAmount   = "total_amount"
	ColDateMin       = "date_min"
	ColDateMax       = "date_max"
)

// columnPhraseRes announce a list of requested output columns. They run
// on normalized text; the first match wins.
var columnPhraseRes = []*regexp.Regexp{
	regexp.MustCompile(`debe(?:n)? mostrar(?:se)?\s+(.+?)(?:\.|;|$)`),
	regexp.MustCompile(`que muestre(?:n)?\s+(.+?)(?:\.|;|$)`),
	regexp.MustCompile(`mostrar\s+(.+?)(?:\.|;|$)`),
	regexp.MustCompile(`columnas?\s+(.+?)(?:\.|;|$)`),
	regexp.MustCompile(`campos?\s+(.+?)(?:\.|;|$)`),
	regexp.MustCompile(`debe incluir\s+(.+?)(?:\.|;|$)`),
}

// stripPhraseRes are the same announcements, case/accent tolerant, used
// to remove directive phrases from the text before filter extraction.
var stripPhraseRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)debe(?:n)? mostrar(?:se)?\s+(?:.+?)(?:\.|;|$)`),
	regexp.MustCompile(`(?i)que muestre(?:n)?\s+(?:.+?)(?:\.|;|$)`),
	regexp.MustCompile(`(?i)mostrar\s+(?:.+?)(?:\.|;|$)`),
	regexp.MustCompile(`(?i)columnas?\s+(?:.+?)(?:\.|;|$)`),
	regexp.MustCompile(`(?i)campos?\s+(?:.+?)(?:\.|;|$)`),
	regexp.MustCompile(`(?i)debe incluir\s+(?:.+?)(?:\.|;|$)`),
}

var (
	clipConnectorRe = regexp.MustCompile(`\s+(?:en|por|con|para|agrupado|ordenado|filtrado)\b`)
	columnSplitRe   = regexp.MustCompile(`,|\s+y\s+|\s+e\s+`)
	determinerRe    = regexp.MustCompile(`\b(?:el|la|los|las|de|del|un|una|unos|unas|al|por|para)\b`)

	customerNameRe  = regexp.MustCompile(`\bnombre\s+(?:de\s+|del\s+)?cliente\b`)
	dateRangeRe     = regexp.MustCompile(`\brango\s+(?:de\s+)?fechas\b|\bperiodo\b`)
	purchaseCntRe   = regexp.MustCompile(`\b(?:cantidad|numero)\s+(?:de\s+)?compras(?:\s+que\s+(?:realizo|hizo))?\b`)
	totalAmountRe   = regexp.MustCompile(`\bmonto\s+total(?:\s+que\s+pago)?\b|\btotal\s+pagado\b|\bimporte\s+total\b`)
	monthTokenRe    = regexp.MustCompile(`\bmes(?:es)?\b`)
	groupExplicitRe = regexp.MustCompile(`agrupad[oa]\s+por\s+(producto|marca|categor[ií]a|cliente|mes)\b`)
	groupLooseRe    = regexp.MustCompile(`agrupad[oa].+?por\s+(producto|marca|categor[ií]a|cliente|mes)\b`)
	groupStripRe    = regexp.MustCompile(`(?i)agrupad[oa]\s+por\s+[^.,;]+`)
	groupMarkerRe   = regexp.MustCompile(`agrupad[oa]`)

	pdfFormatRe  = regexp.MustCompile(`\bpdf\b`)
	xlsxFormatRe = regexp.MustCompile(`\bexcel\b|\bxlsx\b`)
	csvFormatRe  = regexp.MustCompile(`\bcsv\b`)
)

// singleTokenAliases map fully-cleaned Spanish tokens onto canonical
// column tokens. Anything absent from the table is kept raw.
var singleTokenAliases = map[string]string{
	"cliente":         ColCustomer,
	"clientes":        ColCustomer,
	"usuario":         ColCustomer,
	"producto":        ColProduct,
	"productos":       ColProduct,
	"modelo":          ColProduct,
	"marca":           ColBrand,
	"marcas":          ColBrand,
	"categoria":       ColCategory,
	"categorias":      ColCategory,
	"tipo":            ColCategory,
	"fecha":           ColDate,
	"fechas":          ColDate,
	"cantidad":        ColQuantity,
	"unidades":        ColQuantity,
	"precio":          ColUnitPrice,
	"precio unitario": ColUnitPrice,
	"compras":         ColPurchaseCount,
	"primera compra":  ColDateMin,
	"ultima compra":   ColDateMax,
}

var groupKeyAliases = map[string]string{
	"producto":  ColProduct,
	"marca":     ColBrand,
	"categoria": ColCategory,
	"categoría": ColCategory,
	"cliente":   ColCustomer,
	"mes":       ColMonth,
}

// aggregateTokens are the canonical aggregates a group directive can
// request.
var aggregateTokens = map[string]bool{
	ColPurchaseCount: true,
	ColTotalAmount:   true,
	ColQuantity:      true,
	ColUnitPrice:     true,
	ColDateMin:       true,
	ColDateMax:       true,
}

// aggregateLike are the tokens whose presence alongside a groupable key
// makes us infer a group directive.
var aggregateLike = map[string]bool{
	ColPurchaseCount: true,
	ColTotalAmount:   true,
	"monto":          true,
	"total":          true,
}

// groupInferenceOrder is the key preference when inferring a group key
// from requested columns.
var groupInferenceOrder = []string{ColCustomer, ColProduct, ColBrand, ColCategory, ColMonth}

// DirectiveParser extracts explicit output-shaping directives from the
// prompt: requested columns, export format and group-by key.
type DirectiveParser struct{}

// NewDirectiveParser creates a parser with the default synonym tables.
func NewDirectiveParser() *DirectiveParser {
	return &DirectiveParser{}
}

// Parse extracts the column, format and group directives.
func (p *DirectiveParser) Parse(text string) models.Directives {
	norm := textutil.Normalize(text)

	columns := p.parseColumns(norm)
	format := parseFormat(norm)
	group := parseExplicitGroup(norm)
	if group == "" {
		group = inferGroup(columns)
	}

	d := models.Directives{Columns: columns, Format: format}
	if group != "" {
		d.Group = &models.GroupDirective{Key: group, Aggs: aggregates(columns, group)}
	}
	return d
}

// Strip removes column and group-by phrases so that words like
// "cliente" appearing only as a directive do not register as filters.
func (p *DirectiveParser) Strip(text string) string {
	for _, re := range stripPhraseRes {
		text = re.ReplaceAllString(text, " ")
	}
	return groupStripRe.ReplaceAllString(text, " ")
}

func (p *DirectiveParser) parseColumns(norm string) []string {
	for _, re := range columnPhraseRes {
		m := re.FindStringSubmatch(norm)
		if m == nil {
			continue
		}
		return parseColumnList(m[1], false)
	}
	// No announcement phrase: a bare leading list before "agrupado por"
	// still counts, but only tokens the synonym table recognizes.
	if loc := groupMarkerRe.FindStringIndex(norm); loc != nil && loc[0] > 0 {
		return parseColumnList(norm[:loc[0]], true)
	}
	return nil
}

// parseColumnList clips the phrase at a trailing connector, splits it
// and canonicalizes each token. knownOnly drops unrecognized tokens.
func parseColumnList(raw string, knownOnly bool) []string {
	if loc := clipConnectorRe.FindStringIndex(raw); loc != nil {
		raw = raw[:loc[0]]
	}

	var out []string
	seen := make(map[string]bool)
	for _, part := range columnSplitRe.Split(raw, -1) {
		token, known := normalizeColumnToken(part)
		if token == "" || (knownOnly && !known) {
			continue
		}
		if !seen[token] {
			seen[token] = true
			out = append(out, token)
		}
	}
	return out
}

// normalizeColumnToken maps one requested column phrase onto its
// canonical token. The second result reports whether the synonym
// tables recognized it.
func normalizeColumnToken(raw string) (string, bool) {
	x := textutil.Normalize(raw)
	x = determinerRe.ReplaceAllString(x, " ")
	x = customerNameRe.ReplaceAllString(x, "cliente")
	x = dateRangeRe.ReplaceAllString(x, ColDateRange)
	x = purchaseCntRe.ReplaceAllString(x, ColPurchaseCount)
	x = totalAmountRe.ReplaceAllString(x, ColTotalAmount)
	x = monthTokenRe.ReplaceAllString(x, ColMonth)
	x = textutil.CollapseSpaces(x)
	if x == "" {
		return "", false
	}

	if alias, ok := singleTokenAliases[x]; ok {
		return alias, true
	}
	switch x {
	case ColCustomer, ColProduct, ColBrand, ColCategory, ColMonth,
		ColDate, ColDateRange, ColQuantity, ColUnitPrice,
		ColPurchaseCount, ColTotalAmount, ColDateMin, ColDateMax:
		return x, true
	}
	return x, false
}

// parseFormat returns the first explicitly mentioned export format,
// checked in priority order pdf, xlsx, csv.
func parseFormat(norm string) string {
	switch {
	case pdfFormatRe.MatchString(norm):
		return "pdf"
	case xlsxFormatRe.MatchString(norm):
		return "xlsx"
	case csvFormatRe.MatchString(norm):
		return "csv"
	}
	return ""
}

func parseExplicitGroup(norm string) string {
	m := groupExplicitRe.FindStringSubmatch(norm)
	if m == nil {
		m = groupLooseRe.FindStringSubmatch(norm)
	}
	if m == nil {
		return ""
	}
	key := m[1]
	if strings.HasPrefix(key, "categor") {
		key = "categoria"
	}
	return groupKeyAliases[key]
}

// inferGroup picks a group key when the user did not say "agrupado por"
// but asked for aggregate-like columns next to a groupable key.
func inferGroup(columns []string) string {
	if len(columns) == 0 {
		return ""
	}
	set := make(map[string]bool, len(columns))
	hasAgg := false
	for _, c := range columns {
		set[c] = true
		if aggregateLike[c] {
			hasAgg = true
		}
	}
	if !hasAgg {
		return ""
	}
	for _, key := range groupInferenceOrder {
		if set[key] {
			return key
		}
	}
	return ""
}

// aggregates picks the canonical aggregate tokens out of the requested
// columns, excluding the group key itself.
func aggregates(columns []string, key string) []string {
	var out []string
	for _, c := range columns {
		if c != key && aggregateTokens[c] {
			out = append(out, c)
		}
	}
	return out
}
