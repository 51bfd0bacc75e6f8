package models

import "time"

// Intent discriminates which report shape the compiler produces.
// Exactly one intent is selected per prompt.
type Intent string

const (
	IntentSalesByMonth     Intent = "sales_by_month"
	IntentSalesByBrand     Intent = "sales_by_brand"
	IntentSalesByCategory  Intent = "sales_by_category"
	IntentTopProducts      Intent = "top_products"
	IntentSalesByCustomer  Intent = "sales_by_customer"
	IntentAverageTicket    Intent = "average_ticket"
	IntentWarrantyByStatus Intent = "warranty_by_status"
	IntentSalesDetail      Intent = "sales_detail"
)

// FilterKey identifies an optional "contains" constraint extracted from
// the prompt. Keys are independent; absence means no constraint.
type FilterKey string

const (
	FilterProduct  FilterKey = "product"
	FilterBrand    FilterKey = "brand"
	FilterCategory FilterKey = "category"
	FilterCustomer FilterKey = "customer"
	FilterAddress  FilterKey = "address"
)

// FilterSet maps filter keys to free-text pattern values, later applied
// as ILIKE %value% predicates.
type FilterSet map[FilterKey]string

// TimeRange is a half-open date interval [Start, End).
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Normalized returns the range with bounds swapped if reversed, so that
// Start <= End always holds.
func (r TimeRange) Normalized() TimeRange {
	if r.Start.After(r.End) {
		return TimeRange{Start: r.End, End: r.Start}
	}
	return r
}

// GroupDirective is an explicit or inferred request to aggregate detail
// rows by a key column. Aggs holds canonical aggregate tokens; the group
// key itself is never listed there.
type GroupDirective struct {
	Key  string   `json:"key"`
	Aggs []string `json:"aggs"`
}

// Directives are the output-shaping instructions parsed from the prompt:
// requested columns (canonical tokens, deduplicated, order preserved),
// an optional export format and an optional group directive.
type Directives struct {
	Columns []string        `json:"columns"`
	Format  string          `json:"format,omitempty"`
	Group   *GroupDirective `json:"group,omitempty"`
}

// ResolvedQuery is the full output of the NLU pipeline for one prompt.
type ResolvedQuery struct {
	Intent     Intent
	Range      TimeRange
	Filters    FilterSet
	Directives Directives
}

// CompiledQuery is an immutable parameterized SQL statement. The first
// two parameters are always the time range bounds, in that order,
// followed by the filter pattern values.
type CompiledQuery struct {
	SQL    string
	Params []any
}

// ReportResult is the structured payload returned to the caller.
// Rendering to CSV/XLSX is the presentation layer's job; Format simply
// echoes the format the prompt asked for.
type ReportResult struct {
	Intent  Intent            `json:"intent"`
	Start   string            `json:"start"`
	End     string            `json:"end"`
	Filters map[string]string `json:"filters"`
	Columns []string          `json:"columns"`
	Rows    []map[string]any  `json:"rows"`
	Format  string            `json:"format,omitempty"`
}
