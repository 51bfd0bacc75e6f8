package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smartsales-io/report-engine/pkg/adapters/datasource"
	"github.com/smartsales-io/report-engine/pkg/apperrors"
	"github.com/smartsales-io/report-engine/pkg/catalog"
	"github.com/smartsales-io/report-engine/pkg/models"
	"github.com/smartsales-io/report-engine/pkg/nlu"
)

type fakeCatalogStore struct {
	lists map[catalog.Kind][]string
}

func (s *fakeCatalogStore) ListNames(_ context.Context, kind catalog.Kind) ([]string, error) {
	return s.lists[kind], nil
}

type fakeExecutor struct {
	lastSQL    string
	lastParams []any
	result     *datasource.QueryResult
	err        error
}

func (e *fakeExecutor) QueryWithParams(_ context.Context, sqlQuery string, params []any) (*datasource.QueryResult, error) {
	e.lastSQL = sqlQuery
	e.lastParams = params
	if e.err != nil {
		return nil, e.err
	}
	if e.result != nil {
		return e.result, nil
	}
	return &datasource.QueryResult{Columns: []string{}, Rows: []map[string]any{}}, nil
}

func testClock() time.Time {
	return time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)
}

func newTestService(lists map[catalog.Kind][]string, executor *fakeExecutor) ReportService {
	cache := catalog.NewCache(&fakeCatalogStore{lists: lists})
	resolver := nlu.NewResolverWithStages(
		nlu.NewTemporalResolverAt(testClock),
		nlu.NewFilterExtractor(cache, catalog.NewMatcher(cache)),
		nlu.NewDirectiveParser(),
		nlu.NewIntentResolver(nil),
		zap.NewNop(),
	)
	return NewReportService(resolver, executor, zap.NewNop())
}

func TestRunEmptyPrompt(t *testing.T) {
	svc := newTestService(nil, &fakeExecutor{})

	_, err := svc.Run(context.Background(), "   ", "")

	assert.ErrorIs(t, err, apperrors.ErrEmptyPrompt)
}

func TestRunInvalidFormat(t *testing.T) {
	svc := newTestService(nil, &fakeExecutor{})

	_, err := svc.Run(context.Background(), "ventas de enero", "docx")

	assert.ErrorIs(t, err, apperrors.ErrInvalidFormat)
}

func TestRunFilteredBrandReport(t *testing.T) {
	executor := &fakeExecutor{result: &datasource.QueryResult{
		Columns:  []string{"sale_id", "total_amount"},
		Rows:     []map[string]any{{"sale_id": int64(1), "total_amount": 99.5}},
		RowCount: 1,
	}}
	svc := newTestService(map[catalog.Kind][]string{
		catalog.KindBrand: {"Samsung", "LG"},
	}, executor)

	result, err := svc.Run(context.Background(), "ventas de la marca Samsung entre 01/01/2024 y 31/01/2024", "json")
	require.NoError(t, err)

	// an entity filter promotes the request to the detail shape
	assert.Equal(t, models.IntentSalesDetail, result.Intent)
	assert.Equal(t, "2024-01-01", result.Start)
	assert.Equal(t, "2024-02-01", result.End)
	assert.Equal(t, map[string]string{"brand": "Samsung"}, result.Filters)
	assert.Equal(t, "json", result.Format)
	assert.Len(t, result.Rows, 1)

	require.Len(t, executor.lastParams, 3)
	assert.Equal(t, "%Samsung%", executor.lastParams[2])
	assert.Contains(t, executor.lastSQL, "b.name ILIKE $3")
}

func TestRunPromptFormatWinsOverRequested(t *testing.T) {
	svc := newTestService(nil, &fakeExecutor{})

	result, err := svc.Run(context.Background(), "reporte general en excel", "json")
	require.NoError(t, err)

	assert.Equal(t, "xlsx", result.Format)
}

func TestRunDefaultWindow(t *testing.T) {
	executor := &fakeExecutor{}
	svc := newTestService(nil, executor)

	result, err := svc.Run(context.Background(), "reporte general", "")
	require.NoError(t, err)

	assert.Equal(t, models.IntentSalesByMonth, result.Intent)
	assert.Equal(t, "2023-12-18", result.Start)
	assert.Equal(t, "2024-06-16", result.End)
	require.Len(t, executor.lastParams, 2)
}

func TestRunExecutorError(t *testing.T) {
	svc := newTestService(nil, &fakeExecutor{err: errors.New("connection refused")})

	_, err := svc.Run(context.Background(), "ventas del 01/01/2024 al 31/01/2024", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to execute report query")
}

func TestRunEqualPromptsCompileIdentically(t *testing.T) {
	executor := &fakeExecutor{}
	svc := newTestService(map[catalog.Kind][]string{
		catalog.KindBrand: {"Samsung"},
	}, executor)
	prompt := "ventas de la marca Samsung entre 01/01/2024 y 31/01/2024"

	_, err := svc.Run(context.Background(), prompt, "")
	require.NoError(t, err)
	firstSQL, firstParams := executor.lastSQL, executor.lastParams

	_, err = svc.Run(context.Background(), prompt, "")
	require.NoError(t, err)

	assert.Equal(t, firstSQL, executor.lastSQL)
	assert.Equal(t, firstParams, executor.lastParams)
}
