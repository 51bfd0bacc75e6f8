// Package nlu turns a free-form Spanish sales-report request into a
// resolved intent, time range, filter set and output directives. Every
// stage degrades to a deterministic default, so resolution never fails.
package nlu

import (
	"context"

	"go.uber.org/zap"

	"github.com/smartsales-io/report-engine/pkg/catalog"
	"github.com/smartsales-io/report-engine/pkg/models"
)

// Resolver chains the four prompt resolvers with the precedence the
// pipeline requires: directives are parsed first and stripped from the
// text, the temporal stage consumes its date substring, and only the
// residual text reaches the filter extractor.
type Resolver struct {
	temporal   *TemporalResolver
	filters    *FilterExtractor
	directives *DirectiveParser
	intents    *IntentResolver
	logger     *zap.Logger
}

// NewResolver wires the default pipeline over the catalog cache.
// classifier may be nil when no model artifact is available.
func NewResolver(cache *catalog.Cache, classifier IntentClassifier, logger *zap.Logger) *Resolver {
	return &Resolver{
		temporal:   NewTemporalResolver(),
		filters:    NewFilterExtractor(cache, catalog.NewMatcher(cache)),
		directives: NewDirectiveParser(),
		intents:    NewIntentResolver(classifier),
		logger:     logger,
	}
}

// NewResolverWithStages wires an explicitly constructed pipeline; used
// by tests to pin the clock and the catalogs.
func NewResolverWithStages(
	temporal *TemporalResolver,
	filters *FilterExtractor,
	directives *DirectiveParser,
	intents *IntentResolver,
	logger *zap.Logger,
) *Resolver {
	return &Resolver{
		temporal:   temporal,
		filters:    filters,
		directives: directives,
		intents:    intents,
		logger:     logger,
	}
}

// Resolve runs the full pipeline for one prompt. It is a pure function
// of the prompt plus the cached catalog and classifier state, so equal
// prompts resolve identically.
func (r *Resolver) Resolve(ctx context.Context, prompt string) models.ResolvedQuery {
	directives := r.directives.Parse(prompt)
	stripped := r.directives.Strip(prompt)

	timeRange, residual := r.temporal.Resolve(stripped)
	filters := r.filters.Extract(ctx, residual)
	intent := r.intents.Resolve(prompt, directives.Group != nil, filters)

	r.logger.Debug("Resolved prompt",
		zap.String("intent", string(intent)),
		zap.Time("start", timeRange.Start),
		zap.Time("end", timeRange.End),
		zap.Int("filters", len(filters)),
		zap.Strings("columns", directives.Columns),
	)

	return models.ResolvedQuery{
		Intent:     intent,
		Range:      timeRange,
		Filters:    filters,
		Directives: directives,
	}
}
