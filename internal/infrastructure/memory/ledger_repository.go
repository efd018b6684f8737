package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	domain "github.com/quilang/hardpos/internal/domain/ledger"
)

// LedgerRepository keeps customers and their append-only transaction
// log in memory.
type LedgerRepository struct {
	mu        sync.RWMutex
	customers map[string]*domain.Customer
	order     []string
	txs       map[string][]*domain.Transaction
}

func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{
		customers: make(map[string]*domain.Customer),
		txs:       make(map[string][]*domain.Transaction),
	}
}

func (r *LedgerRepository) CreateCustomer(ctx context.Context, c *domain.Customer) error {
	_ = ctx
	if c == nil || c.ID == "" {
		return fmt.Errorf("ledger repository: customer id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.customers[c.ID]; exists {
		return domain.ErrCustomerExists
	}
	r.customers[c.ID] = cloneCustomer(c)
	r.order = append(r.order, c.ID)
	return nil
}

func (r *LedgerRepository) FindCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.customers[id]
	if !ok {
		return nil, domain.ErrCustomerNotFound
	}
	return cloneCustomer(c), nil
}

func (r *LedgerRepository) ListCustomers(ctx context.Context) ([]*domain.Customer, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Customer, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, cloneCustomer(r.customers[id]))
	}
	return out, nil
}

func (r *LedgerRepository) Append(ctx context.Context, tx *domain.Transaction) error {
	_ = ctx
	if tx == nil || tx.ID == "" {
		return fmt.Errorf("ledger repository: transaction id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.customers[tx.CustomerID]; !ok {
		return domain.ErrCustomerNotFound
	}
	r.txs[tx.CustomerID] = append(r.txs[tx.CustomerID], cloneTransaction(tx))
	return nil
}

func (r *LedgerRepository) ListByCustomer(ctx context.Context, customerID string) ([]*domain.Transaction, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.customers[customerID]; !ok {
		return nil, domain.ErrCustomerNotFound
	}

	src := r.txs[customerID]
	out := make([]*domain.Transaction, 0, len(src))
	for _, tx := range src {
		out = append(out, cloneTransaction(tx))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func cloneCustomer(c *domain.Customer) *domain.Customer {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

func cloneTransaction(tx *domain.Transaction) *domain.Transaction {
	if tx == nil {
		return nil
	}
	clone := *tx
	return &clone
}
