// Package datasource runs compiled queries against the relational
// store and returns rows as generic column-to-value maps.
package datasource

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// QueryResult holds the results from executing a compiled query.
type QueryResult struct {
	Columns  []string         `json:"columns"`
	Rows     []map[string]any `json:"rows"`
	RowCount int              `json:"row_count"`
}

// Executor runs a parameterized SELECT. The SQL uses $1, $2, ... for
// placeholders; params provides values in order. Database errors are
// passed through unchanged.
type Executor interface {
	QueryWithParams(ctx context.Context, sqlQuery string, params []any) (*QueryResult, error)
}

type postgresExecutor struct {
	pool *pgxpool.Pool
}

// NewPostgresExecutor creates an executor over the given pool.
func NewPostgresExecutor(pool *pgxpool.Pool) Executor {
	return &postgresExecutor{pool: pool}
}

func (e *postgresExecutor) QueryWithParams(ctx context.Context, sqlQuery string, params []any) (*QueryResult, error) {
	rows, err := e.pool.Query(ctx, sqlQuery, params...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	result := &QueryResult{Columns: columns, Rows: []map[string]any{}}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	result.RowCount = len(result.Rows)
	return result, nil
}
