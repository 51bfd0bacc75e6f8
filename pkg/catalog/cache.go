// Package catalog holds the process-wide reference name lists (brand,
// category, product, customer) and the fuzzy matching used to normalize
// noisy prompt text onto canonical catalog entries.
package catalog

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/smartsales-io/report-engine/pkg/apperrors"
)

// Kind identifies one of the four reference name lists.
type Kind string

const (
	KindBrand    Kind = "brand"
	KindCategory Kind = "category"
	KindProduct  Kind = "product"
	KindCustomer Kind = "customer"
)

// Kinds lists all catalog kinds in a fixed order.
var Kinds = []Kind{KindBrand, KindCategory, KindProduct, KindCustomer}

// Store fetches the full name list for a catalog kind from the
// reference store.
type Store interface {
	ListNames(ctx context.Context, kind Kind) ([]string, error)
}

// Cache lazily loads each name list once per process and memoizes it
// indefinitely. Concurrent first use is collapsed to a single fetch.
// A restart is required to pick up catalog changes.
type Cache struct {
	store Store

	group singleflight.Group
	mu    sync.RWMutex
	lists map[Kind][]string
}

// NewCache creates a catalog cache backed by the given store.
func NewCache(store Store) *Cache {
	return &Cache{
		store: store,
		lists: make(map[Kind][]string),
	}
}

// Get returns the full name list for the kind, fetching it on first use.
func (c *Cache) Get(ctx context.Context, kind Kind) ([]string, error) {
	switch kind {
	case KindBrand, KindCategory, KindProduct, KindCustomer:
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownCatalog, kind)
	}

	c.mu.RLock()
	names, ok := c.lists[kind]
	c.mu.RUnlock()
	if ok {
		return names, nil
	}

	v, err, _ := c.group.Do(string(kind), func() (any, error) {
		c.mu.RLock()
		cached, ok := c.lists[kind]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}

		fetched, err := c.store.ListNames(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrCatalogFetch, kind, err)
		}

		c.mu.Lock()
		c.lists[kind] = fetched
		c.mu.Unlock()
		return fetched, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}
