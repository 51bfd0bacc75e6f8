package nlu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColumnAnnouncement(t *testing.T) {
	p := NewDirectiveParser()

	d := p.Parse("el reporte debe mostrar el nombre del cliente, la cantidad de compras que realizó y el monto total que pagó")

	assert.Equal(t, []string{ColCustomer, ColPurchaseCount, ColTotalAmount}, d.Columns)
	require.NotNil(t, d.Group)
	assert.Equal(t, ColCustomer, d.Group.Key)
	assert.Equal(t, []string{ColPurchaseCount, ColTotalAmount}, d.Group.Aggs)
}

func TestParseBareListBeforeGroupMarker(t *testing.T) {
	p := NewDirectiveParser()

	d := p.Parse("cliente, compras y monto total agrupado por cliente")

	assert.Equal(t, []string{ColCustomer, ColPurchaseCount, ColTotalAmount}, d.Columns)
	require.NotNil(t, d.Group)
	assert.Equal(t, ColCustomer, d.Group.Key)
	assert.Equal(t, []string{ColPurchaseCount, ColTotalAmount}, d.Group.Aggs)
}

func TestParseExplicitGroupWithoutColumns(t *testing.T) {
	p := NewDirectiveParser()

	d := p.Parse("ventas agrupado por marca")

	assert.Empty(t, d.Columns)
	require.NotNil(t, d.Group)
	assert.Equal(t, ColBrand, d.Group.Key)
	assert.Empty(t, d.Group.Aggs)
}

func TestParseGroupKeyAccentVariant(t *testing.T) {
	p := NewDirectiveParser()

	d := p.Parse("ventas agrupadas por categoría")

	require.NotNil(t, d.Group)
	assert.Equal(t, ColCategory, d.Group.Key)
}

func TestParseColumnsWithoutAggregatesHasNoGroup(t *testing.T) {
	p := NewDirectiveParser()

	d := p.Parse("mostrar producto y fecha")

	assert.Equal(t, []string{ColProduct, ColDate}, d.Columns)
	assert.Nil(t, d.Group)
}

func TestParsePeriodoMapsToDateRange(t *testing.T) {
	p := NewDirectiveParser()

	d := p.Parse("mostrar cliente, periodo y monto total")

	assert.Equal(t, []string{ColCustomer, ColDateRange, ColTotalAmount}, d.Columns)
}

func TestParseFormat(t *testing.T) {
	p := NewDirectiveParser()

	tests := []struct {
		text string
		want string
	}{
		{"exportar a excel", "xlsx"},
		{"reporte en pdf", "pdf"},
		{"descargar como csv", "csv"},
		{"en pdf o csv", "pdf"},
		{"reporte de ventas", ""},
	}
	for _, tt := range tests {
		d := p.Parse(tt.text)
		assert.Equal(t, tt.want, d.Format, "text %q", tt.text)
	}
}

func TestParseNoDirectives(t *testing.T) {
	p := NewDirectiveParser()

	d := p.Parse("ventas de enero")

	assert.Empty(t, d.Columns)
	assert.Empty(t, d.Format)
	assert.Nil(t, d.Group)
}

func TestStripRemovesColumnPhrase(t *testing.T) {
	p := NewDirectiveParser()

	got := p.Strip("mostrar cliente y monto total. ventas de enero")

	assert.NotContains(t, got, "cliente")
	assert.Contains(t, got, "ventas de enero")
}

func TestStripRemovesGroupPhrase(t *testing.T) {
	p := NewDirectiveParser()

	got := p.Strip("ventas de enero agrupado por cliente")

	assert.NotContains(t, got, "cliente")
	assert.Contains(t, got, "ventas de enero")
}
