package memory

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/quilang/hardpos/internal/domain/sale"
)

// SaleRepository keeps finalized sales in memory, most recent first.
type SaleRepository struct {
	mu    sync.RWMutex
	byID  map[string]*domain.Sale
	sales []*domain.Sale
}

func NewSaleRepository() *SaleRepository {
	return &SaleRepository{
		byID: make(map[string]*domain.Sale),
	}
}

func (r *SaleRepository) List(ctx context.Context) ([]*domain.Sale, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Sale, 0, len(r.sales))
	for _, s := range r.sales {
		out = append(out, cloneSale(s))
	}
	return out, nil
}

func (r *SaleRepository) FindByID(ctx context.Context, id string) (*domain.Sale, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneSale(s), nil
}

func (r *SaleRepository) Create(ctx context.Context, sale *domain.Sale) error {
	_ = ctx
	if sale == nil || sale.ID == "" {
		return fmt.Errorf("sale repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[sale.ID]; exists {
		return domain.ErrConflict
	}

	clone := cloneSale(sale)
	r.byID[sale.ID] = clone
	r.sales = append([]*domain.Sale{clone}, r.sales...)
	return nil
}

func cloneSale(s *domain.Sale) *domain.Sale {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Lines = make([]domain.Line, len(s.Lines))
	copy(clone.Lines, s.Lines)
	return &clone
}
