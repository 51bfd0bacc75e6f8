package nlu

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Date(2024, time.June, 15, 10, 30, 0, 0, time.UTC)
}

func testResolver() *TemporalResolver {
	return NewTemporalResolverAt(fixedNow)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolveLocalizedRange(t *testing.T) {
	tr, residual := testResolver().Resolve("ventas de la marca Samsung entre 01/01/2024 y 31/01/2024")

	assert.Equal(t, day(2024, time.January, 1), tr.Start)
	assert.Equal(t, day(2024, time.February, 1), tr.End)
	assert.NotContains(t, residual, "01/01/2024")
	assert.Contains(t, residual, "marca Samsung")
}

func TestResolveLocalizedRangeReversed(t *testing.T) {
	tr, _ := testResolver().Resolve("del 31/01/2024 al 01/01/2024")

	assert.Equal(t, day(2024, time.January, 1), tr.Start)
	assert.Equal(t, day(2024, time.February, 1), tr.End)
	assert.True(t, !tr.Start.After(tr.End))
}

func TestResolveLocalizedSingleDate(t *testing.T) {
	tr, residual := testResolver().Resolve("ventas del 05/03/24")

	assert.Equal(t, day(2024, time.March, 5), tr.Start)
	assert.Equal(t, day(2024, time.March, 6), tr.End)
	assert.NotContains(t, residual, "05/03/24")
}

func TestTwoDigitYearMapping(t *testing.T) {
	got, ok := parseLocalizedDate("1", "1", "49")
	require.True(t, ok)
	assert.Equal(t, 2049, got.Year())

	got, ok = parseLocalizedDate("1", "1", "50")
	require.True(t, ok)
	assert.Equal(t, 1950, got.Year())
}

func TestParseLocalizedDateRejectsImpossible(t *testing.T) {
	_, ok := parseLocalizedDate("31", "2", "2024")
	assert.False(t, ok)
}

func TestResolveFreeTextRange(t *testing.T) {
	tr, residual := testResolver().Resolve("ventas desde el 5 de enero de 2024 hasta el 15 de marzo de 2024")

	assert.Equal(t, day(2024, time.January, 5), tr.Start)
	assert.Equal(t, day(2024, time.March, 16), tr.End)
	assert.NotContains(t, residual, "enero")
	assert.NotContains(t, residual, "marzo")
	assert.Contains(t, residual, "ventas")
}

func TestResolveRelativeMonthPhrase(t *testing.T) {
	tr, _ := testResolver().Resolve("este mes")

	assert.Equal(t, day(2024, time.June, 1), tr.Start)
	assert.Equal(t, day(2024, time.July, 1), tr.End)
}

func TestStageISORange(t *testing.T) {
	tr, residual, ok := stageISORange("entre 2024-01-01 y 2024-01-31", fixedNow())
	require.True(t, ok)

	assert.Equal(t, day(2024, time.January, 1), tr.Start)
	assert.Equal(t, day(2024, time.February, 1), tr.End)
	assert.False(t, strings.Contains(residual, "2024-01-01"))
}

func TestStageMonthNames(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"single month defaults to current year", "ventas de enero", day(2024, time.January, 1), day(2024, time.February, 1)},
		{"month with year", "ventas de marzo 2023", day(2023, time.March, 1), day(2023, time.April, 1)},
		{"month span", "de enero a marzo 2023", day(2023, time.January, 1), day(2023, time.April, 1)},
		{"setiembre variant", "setiembre 2023", day(2023, time.September, 1), day(2023, time.October, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, _, ok := stageMonthNames(tt.text, dateOnly(fixedNow()))
			require.True(t, ok)
			assert.Equal(t, tt.wantStart, tr.Start)
			assert.Equal(t, tt.wantEnd, tr.End)
		})
	}
}

func TestStagePeriodKeyword(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"q2 with year", "ventas q2 2024", day(2024, time.April, 1), day(2024, time.July, 1)},
		{"trimestre without index", "ventas del trimestre", day(2024, time.January, 1), day(2024, time.April, 1)},
		{"trimestre 4 rolls over", "trimestre 4 2023", day(2023, time.October, 1), day(2024, time.January, 1)},
		{"cuatrimestre 2", "cuatrimestre 2 2024", day(2024, time.May, 1), day(2024, time.September, 1)},
		{"semestre 2", "semestre 2 2023", day(2023, time.July, 1), day(2024, time.January, 1)},
		{"whole year", "ventas del año 2023", day(2023, time.January, 1), day(2024, time.January, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, _, ok := stagePeriodKeyword(tt.text, dateOnly(fixedNow()))
			require.True(t, ok)
			assert.Equal(t, tt.wantStart, tr.Start)
			assert.Equal(t, tt.wantEnd, tr.End)
		})
	}
}

func TestStagePeriodKeywordNoFalsePositives(t *testing.T) {
	// Words containing q/t must not register as period keywords.
	for _, text := range []string{"reporte general", "top productos", "quiero ventas"} {
		_, _, ok := stagePeriodKeyword(text, dateOnly(fixedNow()))
		assert.False(t, ok, "text %q", text)
	}
}

func TestResolveDefaultFallback(t *testing.T) {
	today := dateOnly(fixedNow())
	tr, residual := testResolver().Resolve("reporte general")

	assert.Equal(t, today.AddDate(0, 0, -DefaultWindowDays), tr.Start)
	assert.Equal(t, today.AddDate(0, 0, 1), tr.End)
	assert.Equal(t, "reporte general", residual)
}

func TestResolveRangeInvariant(t *testing.T) {
	// start <= end must hold for every resolved range
	prompts := []string{
		"del 31/01/2024 al 01/01/2024",
		"ventas del 05/03/24",
		"ventas de enero",
		"q3 2024",
		"reporte general",
	}
	for _, p := range prompts {
		tr, _ := testResolver().Resolve(p)
		assert.False(t, tr.Start.After(tr.End), "prompt %q", p)
	}
}
