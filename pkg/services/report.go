package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/smartsales-io/report-engine/pkg/adapters/datasource"
	"github.com/smartsales-io/report-engine/pkg/apperrors"
	"github.com/smartsales-io/report-engine/pkg/models"
	"github.com/smartsales-io/report-engine/pkg/nlu"
	"github.com/smartsales-io/report-engine/pkg/sqlgen"
)

// ValidFormats are the export formats the caller may request
// explicitly. Rendering is the presentation layer's job.
var ValidFormats = map[string]bool{"": true, "json": true, "csv": true, "xlsx": true}

// ReportService turns a free-text prompt into an executed report.
type ReportService interface {
	Run(ctx context.Context, prompt, format string) (*models.ReportResult, error)
}

type reportService struct {
	resolver *nlu.Resolver
	executor datasource.Executor
	logger   *zap.Logger
}

// NewReportService creates a report service with dependencies.
func NewReportService(resolver *nlu.Resolver, executor datasource.Executor, logger *zap.Logger) ReportService {
	return &reportService{
		resolver: resolver,
		executor: executor,
		logger:   logger,
	}
}

// Run resolves the prompt, compiles the query, executes it and shapes
// the report payload. The format extracted from the prompt itself wins
// over the explicitly requested one, matching the rest of the prompt
// directives.
func (s *reportService) Run(ctx context.Context, prompt, format string) (*models.ReportResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, apperrors.ErrEmptyPrompt
	}
	if !ValidFormats[format] {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidFormat, format)
	}

	resolved := s.resolver.Resolve(ctx, prompt)
	compiled := sqlgen.Compile(resolved.Intent, resolved.Range, resolved.Filters,
		resolved.Directives.Columns, resolved.Directives.Group)

	s.logger.Info("Compiled report query",
		zap.String("intent", string(resolved.Intent)),
		zap.Int("params", len(compiled.Params)),
	)

	result, err := s.executor.QueryWithParams(ctx, compiled.SQL, compiled.Params)
	if err != nil {
		return nil, fmt.Errorf("failed to execute report query: %w", err)
	}

	outFormat := resolved.Directives.Format
	if outFormat == "" {
		outFormat = format
	}

	filters := make(map[string]string, len(resolved.Filters))
	for k, v := range resolved.Filters {
		filters[string(k)] = v
	}

	return &models.ReportResult{
		Intent:  resolved.Intent,
		Start:   resolved.Range.Start.Format(time.DateOnly),
		End:     resolved.Range.End.Format(time.DateOnly),
		Filters: filters,
		Columns: result.Columns,
		Rows:    result.Rows,
		Format:  outFormat,
	}, nil
}
