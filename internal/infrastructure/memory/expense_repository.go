package memory

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/quilang/hardpos/internal/domain/expense"
)

// ExpenseRepository keeps expense entries in memory, most recent first.
type ExpenseRepository struct {
	mu       sync.RWMutex
	expenses []*domain.Expense
}

func NewExpenseRepository() *ExpenseRepository {
	return &ExpenseRepository{}
}

func (r *ExpenseRepository) List(ctx context.Context) ([]*domain.Expense, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Expense, 0, len(r.expenses))
	for _, e := range r.expenses {
		out = append(out, cloneExpense(e))
	}
	return out, nil
}

func (r *ExpenseRepository) Create(ctx context.Context, e *domain.Expense) error {
	_ = ctx
	if e == nil || e.ID == "" {
		return fmt.Errorf("expense repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.expenses = append([]*domain.Expense{cloneExpense(e)}, r.expenses...)
	return nil
}

func cloneExpense(e *domain.Expense) *domain.Expense {
	if e == nil {
		return nil
	}
	clone := *e
	return &clone
}
