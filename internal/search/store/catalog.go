// Package store holds the product catalog and the search query trackers.
package store

import (
	"context"
	"sync"

	"storefront/internal/search/models"
	id "storefront/pkg/domain"
)

// Catalog is an in-memory product index.
type Catalog struct {
	mu       sync.RWMutex
	products map[id.ObjectID]models.Product
}

func NewCatalog() *Catalog {
	return &Catalog{products: make(map[id.ObjectID]models.Product)}
}

func (c *Catalog) All(_ context.Context) ([]models.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, p.Clone())
	}
	return out, nil
}

func (c *Catalog) Put(_ context.Context, product models.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[product.ID] = product.Clone()
	return nil
}
