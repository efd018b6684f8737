package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domain "github.com/quilang/hardpos/internal/domain/ledger"
)

// LedgerRepository stores customers and their append-only transaction
// log. Transactions reference an existing customer through a foreign
// key, so an append for an unknown customer fails at the database too.
type LedgerRepository struct {
	store *Store
}

func NewLedgerRepository(store *Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

func (r *LedgerRepository) CreateCustomer(ctx context.Context, c *domain.Customer) error {
	if c == nil || c.ID == "" {
		return fmt.Errorf("ledger repository: customer id is required")
	}

	_, err := r.store.db.ExecContext(ctx,
		`INSERT INTO customers (id, name, contact, address, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Contact, c.Address, formatTime(c.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrCustomerExists
		}
		return fmt.Errorf("create customer: %w", err)
	}
	return nil
}

func (r *LedgerRepository) FindCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	row := r.store.db.QueryRowContext(ctx,
		`SELECT id, name, contact, address, created_at FROM customers WHERE id = ?`, id)

	c, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCustomerNotFound
	}
	return c, err
}

func (r *LedgerRepository) ListCustomers(ctx context.Context) ([]*domain.Customer, error) {
	rows, err := r.store.db.QueryContext(ctx,
		`SELECT id, name, contact, address, created_at FROM customers ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var out []*domain.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *LedgerRepository) Append(ctx context.Context, tx *domain.Transaction) error {
	if tx == nil || tx.ID == "" {
		return fmt.Errorf("ledger repository: transaction id is required")
	}

	var exists int
	err := r.store.db.QueryRowContext(ctx,
		`SELECT 1 FROM customers WHERE id = ?`, tx.CustomerID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrCustomerNotFound
	}
	if err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}

	_, err = r.store.db.ExecContext(ctx,
		`INSERT INTO ledger_transactions (id, customer_id, type, amount, description, date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.CustomerID, string(tx.Type), tx.Amount, tx.Description, formatTime(tx.Date))
	if err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}
	return nil
}

func (r *LedgerRepository) ListByCustomer(ctx context.Context, customerID string) ([]*domain.Transaction, error) {
	if _, err := r.FindCustomer(ctx, customerID); err != nil {
		return nil, err
	}

	rows, err := r.store.db.QueryContext(ctx,
		`SELECT id, customer_id, type, amount, description, date
		 FROM ledger_transactions WHERE customer_id = ? ORDER BY date DESC, rowid DESC`,
		customerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []*domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		var typ, date string
		if err := rows.Scan(&tx.ID, &tx.CustomerID, &typ, &tx.Amount, &tx.Description, &date); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Type = domain.Type(typ)
		t, err := parseTime(date)
		if err != nil {
			return nil, err
		}
		tx.Date = t
		out = append(out, &tx)
	}
	return out, rows.Err()
}

func scanCustomer(row rowScanner) (*domain.Customer, error) {
	var c domain.Customer
	var createdAt string
	if err := row.Scan(&c.ID, &c.Name, &c.Contact, &c.Address, &createdAt); err != nil {
		return nil, err
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	c.CreatedAt = t
	return &c, nil
}
