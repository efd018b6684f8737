package expense

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidAmount      = errors.New("expense: amount must be greater than zero")
	ErrInvalidDescription = errors.New("expense: description is required")
)

// Expense is a store outgoing recorded by manual entry. Entries are
// append-only.
type Expense struct {
	ID          string
	Date        time.Time
	Description string
	Amount      int64
	Category    string
}

func New(id string, date time.Time, description string, amount int64, category string) (*Expense, error) {
	if description == "" {
		return nil, ErrInvalidDescription
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return &Expense{
		ID:          id,
		Date:        date,
		Description: description,
		Amount:      amount,
		Category:    category,
	}, nil
}

// Repository is the persistence contract for expenses. List returns
// entries most recent first.
type Repository interface {
	List(ctx context.Context) ([]*Expense, error)
	Create(ctx context.Context, e *Expense) error
}
