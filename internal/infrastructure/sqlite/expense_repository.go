package sqlite

import (
	"context"
	"fmt"

	domain "github.com/quilang/hardpos/internal/domain/expense"
)

// ExpenseRepository stores expense entries, most recent first on read.
type ExpenseRepository struct {
	store *Store
}

func NewExpenseRepository(store *Store) *ExpenseRepository {
	return &ExpenseRepository{store: store}
}

func (r *ExpenseRepository) List(ctx context.Context) ([]*domain.Expense, error) {
	rows, err := r.store.db.QueryContext(ctx,
		`SELECT id, date, description, amount, category
		 FROM expenses ORDER BY date DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []*domain.Expense
	for rows.Next() {
		var e domain.Expense
		var date string
		if err := rows.Scan(&e.ID, &date, &e.Description, &e.Amount, &e.Category); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		t, err := parseTime(date)
		if err != nil {
			return nil, err
		}
		e.Date = t
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (r *ExpenseRepository) Create(ctx context.Context, e *domain.Expense) error {
	if e == nil || e.ID == "" {
		return fmt.Errorf("expense repository: id is required")
	}

	_, err := r.store.db.ExecContext(ctx,
		`INSERT INTO expenses (id, date, description, amount, category)
		 VALUES (?, ?, ?, ?, ?)`,
		e.ID, formatTime(e.Date), e.Description, e.Amount, e.Category)
	if err != nil {
		return fmt.Errorf("create expense: %w", err)
	}
	return nil
}
