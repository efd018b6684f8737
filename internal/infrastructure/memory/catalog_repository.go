package memory

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/quilang/hardpos/internal/domain/catalog"
)

// CatalogRepository keeps products in memory. Insertion order is
// preserved so List matches the catalog's natural order.
type CatalogRepository struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
	order    []string
}

func NewCatalogRepository() *CatalogRepository {
	return &CatalogRepository{
		products: make(map[string]*domain.Product),
	}
}

func (r *CatalogRepository) List(ctx context.Context) ([]*domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Product, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, cloneProduct(r.products[id]))
	}
	return out, nil
}

func (r *CatalogRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneProduct(p), nil
}

func (r *CatalogRepository) Upsert(ctx context.Context, product *domain.Product) error {
	_ = ctx
	if product == nil || product.ID == "" {
		return fmt.Errorf("catalog repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[product.ID]; !exists {
		r.order = append(r.order, product.ID)
	}
	r.products[product.ID] = cloneProduct(product)
	return nil
}

func (r *CatalogRepository) AdjustStock(ctx context.Context, id string, delta int) (int, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	p.AdjustStock(delta)
	return p.Stock, nil
}

func cloneProduct(p *domain.Product) *domain.Product {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}
