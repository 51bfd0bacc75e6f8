// Package sqlgen compiles a resolved report request into parameterized
// Postgres SQL. It is the only package that knows the physical sales
// schema.
package sqlgen

import (
	"fmt"
	"strings"

	"github.com/smartsales-io/report-engine/pkg/models"
)

const baseJoins = `FROM sale_line d
JOIN sale s ON s.id = d.sale_id
JOIN product p ON p.id = d.product_id
LEFT JOIN brand b ON b.id = p.brand_id
LEFT JOIN category c ON c.id = p.category_id
LEFT JOIN customer u ON u.id = s.customer_id`

const warrantyJoins = `FROM warranty w
JOIN warranty_status ws ON ws.id = w.status_id
JOIN sale_line d ON d.sale_id = w.sale_id AND d.product_id = w.product_id
JOIN sale s ON s.id = w.sale_id
JOIN product p ON p.id = d.product_id
LEFT JOIN brand b ON b.id = p.brand_id
LEFT JOIN category c ON c.id = p.category_id
LEFT JOIN customer u ON u.id = s.customer_id`

// fixedShape is the SELECT and trailing clause for one pre-aggregated
// report intent.
type fixedShape struct {
	selectClause string
	tailClause   string
}

var fixedShapes = map[models.Intent]fixedShape{
	models.IntentSalesByBrand: {
		"SELECT b.name AS brand, SUM(d.quantity * p.price) AS amount, SUM(d.quantity) AS units",
		"GROUP BY b.name ORDER BY amount DESC",
	},
	models.IntentSalesByCategory: {
		"SELECT c.name AS category, SUM(d.quantity * p.price) AS amount, SUM(d.quantity) AS units",
		"GROUP BY c.name ORDER BY amount DESC",
	},
	models.IntentTopProducts: {
		"SELECT p.name AS product, SUM(d.quantity) AS units, SUM(d.quantity * p.price) AS amount",
		"GROUP BY p.name ORDER BY units DESC LIMIT 10",
	},
	models.IntentSalesByCustomer: {
		"SELECT u.name AS customer, COUNT(DISTINCT s.id) AS purchase_count, SUM(s.total) AS amount",
		"GROUP BY u.name ORDER BY amount DESC",
	},
	models.IntentAverageTicket: {
		"SELECT AVG(s.total) AS average_ticket, COUNT(DISTINCT s.id) AS sale_count",
		"",
	},
	models.IntentWarrantyByStatus: {
		"SELECT ws.name AS status, COUNT(*) AS case_count",
		"GROUP BY ws.name ORDER BY case_count DESC",
	},
}

// groupKeyExprs map a canonical group key to its SQL expression.
var groupKeyExprs = map[string]string{
	"customer": "u.name",
	"product":  "p.name",
	"brand":    "b.name",
	"category": "c.name",
	"month":    "date_trunc('month', s.sold_at)",
}

// aggregateExprs map a canonical aggregate token to its SQL expression.
var aggregateExprs = map[string]string{
	"purchase_count": "COUNT(DISTINCT s.id)",
	"total_amount":   "SUM(d.quantity * p.price)",
	"quantity":       "SUM(d.quantity)",
	"unit_price":     "AVG(p.price)",
	"date_min":       "MIN(s.sold_at)",
	"date_max":       "MAX(s.sold_at)",
}

// detailColumnExprs map a canonical column token to its detail-row
// expression and alias.
var detailColumnExprs = map[string]string{
	"sale_id":      "s.id AS sale_id",
	"date":         "s.sold_at AS sold_at",
	"date_range":   "s.sold_at AS sold_at",
	"month":        "date_trunc('month', s.sold_at) AS month",
	"customer":     "u.name AS customer",
	"product":      "p.name AS product",
	"brand":        "b.name AS brand",
	"category":     "c.name AS category",
	"quantity":     "d.quantity AS quantity",
	"unit_price":   "p.price AS unit_price",
	"total_amount": "d.quantity * p.price AS total_amount",
}

// fullDetailColumns is the default detail row shape, used when the
// prompt requested no recognizable columns.
var fullDetailColumns = []string{
	"s.id AS sale_id",
	"s.sold_at AS sold_at",
	"u.name AS customer",
	"p.name AS product",
	"b.name AS brand",
	"c.name AS category",
	"d.quantity AS quantity",
	"p.price AS unit_price",
	"d.quantity * p.price AS total_amount",
}

// filterPredicates is the fixed application order of the optional
// "contains" predicates; parameters accumulate in this same order.
var filterPredicates = []struct {
	key  models.FilterKey
	expr string
}{
	{models.FilterProduct, "p.name"},
	{models.FilterBrand, "b.name"},
	{models.FilterCategory, "c.name"},
	{models.FilterCustomer, "u.name"},
	{models.FilterAddress, "u.address"},
}

// Compile builds the SQL text and ordered parameter list for a resolved
// request. The first two parameters are always the time range bounds.
// An unknown intent is a programming-invariant violation and panics.
func Compile(
	intent models.Intent,
	timeRange models.TimeRange,
	filters models.FilterSet,
	columns []string,
	group *models.GroupDirective,
) models.CompiledQuery {
	timeRange = timeRange.Normalized()

	dateCol := "s.sold_at"
	if intent == models.IntentWarrantyByStatus {
		dateCol = "w.opened_at"
	}

	where := []string{fmt.Sprintf("%s >= $1 AND %s < $2", dateCol, dateCol)}
	params := []any{timeRange.Start, timeRange.End}

	hasItemFilter := false
	for _, fp := range filterPredicates {
		value, ok := filters[fp.key]
		if !ok || value == "" {
			continue
		}
		params = append(params, "%"+value+"%")
		where = append(where, fmt.Sprintf("%s ILIKE $%d", fp.expr, len(params)))
		switch fp.key {
		case models.FilterProduct, models.FilterBrand, models.FilterCategory:
			hasItemFilter = true
		}
	}
	whereClause := "WHERE " + strings.Join(where, " AND ")

	var sql string
	switch intent {
	case models.IntentSalesByMonth:
		// With an item filter only the matching lines count toward the
		// monthly sum; otherwise the stored per-sale total is used.
		selectClause := "SELECT date_trunc('month', s.sold_at) AS month, SUM(s.total) AS amount"
		if hasItemFilter {
			selectClause = "SELECT date_trunc('month', s.sold_at) AS month, SUM(d.quantity * p.price) AS amount"
		}
		sql = assemble(selectClause, baseJoins, whereClause, "GROUP BY 1 ORDER BY 1")

	case models.IntentSalesDetail:
		sql = compileDetail(whereClause, columns, group)

	case models.IntentWarrantyByStatus:
		shape := fixedShapes[intent]
		sql = assemble(shape.selectClause, warrantyJoins, whereClause, shape.tailClause)

	case models.IntentSalesByBrand, models.IntentSalesByCategory,
		models.IntentTopProducts, models.IntentSalesByCustomer,
		models.IntentAverageTicket:
		shape := fixedShapes[intent]
		sql = assemble(shape.selectClause, baseJoins, whereClause, shape.tailClause)

	default:
		panic(fmt.Sprintf("sqlgen: unknown intent %q", intent))
	}

	return models.CompiledQuery{SQL: sql, Params: params}
}

func assemble(parts ...string) string {
	nonEmpty := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, "\n")
}

// compileDetail builds the dynamic detail query: grouped aggregates
// when a group directive is present, a restricted column selection when
// only columns were requested, and the full detail shape otherwise.
func compileDetail(whereClause string, columns []string, group *models.GroupDirective) string {
	if group != nil {
		return compileGroupedDetail(whereClause, group)
	}

	selected := make([]string, 0, len(columns))
	seen := make(map[string]bool)
	for _, col := range columns {
		expr, ok := detailColumnExprs[col]
		if ok && !seen[expr] {
			seen[expr] = true
			selected = append(selected, expr)
		}
	}
	if len(selected) == 0 {
		selected = fullDetailColumns
	}

	return assemble(
		"SELECT "+strings.Join(selected, ", "),
		baseJoins,
		whereClause,
		"ORDER BY s.sold_at, s.id, p.name",
	)
}

func compileGroupedDetail(whereClause string, group *models.GroupDirective) string {
	keyExpr, ok := groupKeyExprs[group.Key]
	if !ok {
		panic(fmt.Sprintf("sqlgen: unknown group key %q", group.Key))
	}

	aggs := group.Aggs
	if len(aggs) == 0 {
		aggs = []string{"purchase_count", "total_amount"}
	}

	selected := []string{fmt.Sprintf("%s AS %s", keyExpr, group.Key)}
	present := make(map[string]bool)
	for _, agg := range aggs {
		expr, ok := aggregateExprs[agg]
		if !ok || present[agg] {
			continue
		}
		present[agg] = true
		selected = append(selected, fmt.Sprintf("%s AS %s", expr, agg))
	}

	orderBy := group.Key
	for _, candidate := range []string{"total_amount", "purchase_count", "quantity"} {
		if present[candidate] {
			orderBy = candidate + " DESC"
			break
		}
	}

	return assemble(
		"SELECT "+strings.Join(selected, ", "),
		baseJoins,
		whereClause,
		fmt.Sprintf("GROUP BY %s", keyExpr),
		fmt.Sprintf("ORDER BY %s", orderBy),
	)
}
