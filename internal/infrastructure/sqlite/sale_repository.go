package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domain "github.com/quilang/hardpos/internal/domain/sale"
)

// SaleRepository stores finalized sales together with their line
// snapshots. The header and its lines are written in one transaction.
type SaleRepository struct {
	store *Store
}

func NewSaleRepository(store *Store) *SaleRepository {
	return &SaleRepository{store: store}
}

func (r *SaleRepository) Create(ctx context.Context, s *domain.Sale) error {
	if s == nil || s.ID == "" {
		return fmt.Errorf("sale repository: id is required")
	}

	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create sale: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sales (id, date, total) VALUES (?, ?, ?)`,
		s.ID, formatTime(s.Date), s.Total); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("create sale: %w", err)
	}

	for i, line := range s.Lines {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sale_lines (sale_id, line_no, product_id, name, unit, unit_price, quantity)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			s.ID, i, line.ProductID, line.Name, line.Unit, line.UnitPrice, line.Quantity); err != nil {
			return fmt.Errorf("create sale line %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create sale: commit: %w", err)
	}
	return nil
}

func (r *SaleRepository) List(ctx context.Context) ([]*domain.Sale, error) {
	rows, err := r.store.db.QueryContext(ctx,
		`SELECT id, date, total FROM sales ORDER BY date DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	var out []*domain.Sale
	for rows.Next() {
		s, err := scanSaleHeader(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, s := range out {
		if err := r.loadLines(ctx, s); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *SaleRepository) FindByID(ctx context.Context, id string) (*domain.Sale, error) {
	row := r.store.db.QueryRowContext(ctx,
		`SELECT id, date, total FROM sales WHERE id = ?`, id)

	s, err := scanSaleHeader(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SaleRepository) loadLines(ctx context.Context, s *domain.Sale) error {
	rows, err := r.store.db.QueryContext(ctx,
		`SELECT product_id, name, unit, unit_price, quantity
		 FROM sale_lines WHERE sale_id = ? ORDER BY line_no`, s.ID)
	if err != nil {
		return fmt.Errorf("load sale lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.Line
		if err := rows.Scan(&line.ProductID, &line.Name, &line.Unit, &line.UnitPrice, &line.Quantity); err != nil {
			return fmt.Errorf("scan sale line: %w", err)
		}
		s.Lines = append(s.Lines, line)
	}
	return rows.Err()
}

func scanSaleHeader(row rowScanner) (*domain.Sale, error) {
	var s domain.Sale
	var date string
	if err := row.Scan(&s.ID, &date, &s.Total); err != nil {
		return nil, err
	}
	t, err := parseTime(date)
	if err != nil {
		return nil, err
	}
	s.Date = t
	return &s, nil
}
