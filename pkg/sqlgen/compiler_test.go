package sqlgen

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartsales-io/report-engine/pkg/models"
)

var testRange = models.TimeRange{
	Start: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
}

func TestCompileRangeBoundsAreFirstParams(t *testing.T) {
	q := Compile(models.IntentSalesByMonth, testRange, nil, nil, nil)

	require.Len(t, q.Params, 2)
	assert.Equal(t, testRange.Start, q.Params[0])
	assert.Equal(t, testRange.End, q.Params[1])
	assert.Contains(t, q.SQL, "s.sold_at >= $1 AND s.sold_at < $2")
}

func TestCompileNormalizesReversedRange(t *testing.T) {
	reversed := models.TimeRange{Start: testRange.End, End: testRange.Start}

	q := Compile(models.IntentSalesByMonth, reversed, nil, nil, nil)

	assert.Equal(t, testRange.Start, q.Params[0])
	assert.Equal(t, testRange.End, q.Params[1])
}

func TestCompileFilterParamOrder(t *testing.T) {
	filters := models.FilterSet{
		models.FilterAddress:  "Norte",
		models.FilterCustomer: "Juan",
		models.FilterBrand:    "Samsung",
	}

	q := Compile(models.IntentSalesDetail, testRange, filters, nil, nil)

	// fixed predicate order: product, brand, category, customer, address
	require.Len(t, q.Params, 5)
	assert.Equal(t, "%Samsung%", q.Params[2])
	assert.Equal(t, "%Juan%", q.Params[3])
	assert.Equal(t, "%Norte%", q.Params[4])
	assert.Contains(t, q.SQL, "b.name ILIKE $3")
	assert.Contains(t, q.SQL, "u.name ILIKE $4")
	assert.Contains(t, q.SQL, "u.address ILIKE $5")
}

func TestCompileMonthlyUsesSaleTotal(t *testing.T) {
	q := Compile(models.IntentSalesByMonth, testRange, nil, nil, nil)

	assert.Contains(t, q.SQL, "SUM(s.total) AS amount")
	assert.Contains(t, q.SQL, "GROUP BY 1 ORDER BY 1")
}

func TestCompileMonthlyItemFilterSwitchesToLineAmount(t *testing.T) {
	filters := models.FilterSet{models.FilterBrand: "Samsung"}

	q := Compile(models.IntentSalesByMonth, testRange, filters, nil, nil)

	assert.Contains(t, q.SQL, "SUM(d.quantity * p.price) AS amount")
	assert.NotContains(t, q.SQL, "SUM(s.total)")
}

func TestCompileMonthlyAddressFilterKeepsSaleTotal(t *testing.T) {
	filters := models.FilterSet{models.FilterAddress: "Norte"}

	q := Compile(models.IntentSalesByMonth, testRange, filters, nil, nil)

	assert.Contains(t, q.SQL, "SUM(s.total) AS amount")
}

func TestCompileFixedShapes(t *testing.T) {
	tests := []struct {
		intent models.Intent
		want   []string
	}{
		{models.IntentSalesByBrand, []string{"b.name AS brand", "GROUP BY b.name ORDER BY amount DESC"}},
		{models.IntentSalesByCategory, []string{"c.name AS category", "GROUP BY c.name ORDER BY amount DESC"}},
		{models.IntentTopProducts, []string{"SUM(d.quantity) AS units", "ORDER BY units DESC LIMIT 10"}},
		{models.IntentSalesByCustomer, []string{"COUNT(DISTINCT s.id) AS purchase_count", "GROUP BY u.name"}},
		{models.IntentAverageTicket, []string{"AVG(s.total) AS average_ticket", "COUNT(DISTINCT s.id) AS sale_count"}},
	}
	for _, tt := range tests {
		q := Compile(tt.intent, testRange, nil, nil, nil)
		for _, want := range tt.want {
			assert.Contains(t, q.SQL, want, "intent %q", tt.intent)
		}
	}
}

func TestCompileWarrantyUsesOpenedAt(t *testing.T) {
	q := Compile(models.IntentWarrantyByStatus, testRange, nil, nil, nil)

	assert.Contains(t, q.SQL, "w.opened_at >= $1 AND w.opened_at < $2")
	assert.Contains(t, q.SQL, "FROM warranty w")
	assert.Contains(t, q.SQL, "GROUP BY ws.name")
	assert.NotContains(t, q.SQL, "s.sold_at >= $1")
}

func TestCompileDetailDefaultShape(t *testing.T) {
	q := Compile(models.IntentSalesDetail, testRange, nil, nil, nil)

	assert.Contains(t, q.SQL, "s.id AS sale_id")
	assert.Contains(t, q.SQL, "d.quantity * p.price AS total_amount")
	assert.Contains(t, q.SQL, "ORDER BY s.sold_at, s.id, p.name")
}

func TestCompileDetailColumnSelection(t *testing.T) {
	columns := []string{"customer", "product", "quantity", "unknown_token", "customer"}

	q := Compile(models.IntentSalesDetail, testRange, nil, columns, nil)

	selectLine := strings.SplitN(q.SQL, "\n", 2)[0]
	assert.Equal(t, "SELECT u.name AS customer, p.name AS product, d.quantity AS quantity", selectLine)
}

func TestCompileGroupedDetail(t *testing.T) {
	group := &models.GroupDirective{Key: "customer", Aggs: []string{"purchase_count", "total_amount"}}

	q := Compile(models.IntentSalesDetail, testRange, nil, nil, group)

	assert.Contains(t, q.SQL, "SELECT u.name AS customer, COUNT(DISTINCT s.id) AS purchase_count, SUM(d.quantity * p.price) AS total_amount")
	assert.Contains(t, q.SQL, "GROUP BY u.name")
	assert.Contains(t, q.SQL, "ORDER BY total_amount DESC")
}

func TestCompileGroupedDetailDefaultAggregates(t *testing.T) {
	group := &models.GroupDirective{Key: "brand"}

	q := Compile(models.IntentSalesDetail, testRange, nil, nil, group)

	assert.Contains(t, q.SQL, "COUNT(DISTINCT s.id) AS purchase_count")
	assert.Contains(t, q.SQL, "SUM(d.quantity * p.price) AS total_amount")
	assert.Contains(t, q.SQL, "GROUP BY b.name")
}

func TestCompileGroupedDetailMonthKey(t *testing.T) {
	group := &models.GroupDirective{Key: "month", Aggs: []string{"quantity"}}

	q := Compile(models.IntentSalesDetail, testRange, nil, nil, group)

	assert.Contains(t, q.SQL, "date_trunc('month', s.sold_at) AS month")
	assert.Contains(t, q.SQL, "GROUP BY date_trunc('month', s.sold_at)")
	assert.Contains(t, q.SQL, "ORDER BY quantity DESC")
}

func TestCompileUnknownIntentPanics(t *testing.T) {
	assert.Panics(t, func() {
		Compile(models.Intent("nonsense"), testRange, nil, nil, nil)
	})
}

func TestCompileIdempotent(t *testing.T) {
	filters := models.FilterSet{models.FilterBrand: "Samsung"}

	first := Compile(models.IntentSalesDetail, testRange, filters, nil, nil)
	second := Compile(models.IntentSalesDetail, testRange, filters, nil, nil)

	assert.Equal(t, first, second)
}
