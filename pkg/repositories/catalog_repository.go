package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartsales-io/report-engine/pkg/catalog"
)

// catalogQueries maps each catalog kind to the statement that lists its
// canonical names.
var catalogQueries = map[catalog.Kind]string{
	catalog.KindBrand:    "SELECT name FROM brand ORDER BY name",
	catalog.KindCategory: "SELECT name FROM category ORDER BY name",
	catalog.KindProduct:  "SELECT name FROM product ORDER BY name",
	catalog.KindCustomer: "SELECT name FROM customer ORDER BY name",
}

// CatalogRepository reads the reference name lists from Postgres.
type CatalogRepository struct {
	db *pgxpool.Pool
}

// NewCatalogRepository creates a repository over the given pool.
func NewCatalogRepository(db *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListNames returns every name in the catalog for the given kind.
func (r *CatalogRepository) ListNames(ctx context.Context, kind catalog.Kind) ([]string, error) {
	query, ok := catalogQueries[kind]
	if !ok {
		return nil, fmt.Errorf("no catalog query for kind %q", kind)
	}

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s names: %w", kind, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan %s name: %w", kind, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s names: %w", kind, err)
	}
	return names, nil
}
