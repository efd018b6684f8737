package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domain "github.com/quilang/hardpos/internal/domain/catalog"
)

// CatalogRepository stores products in the products table. Listing
// orders by rowid, which matches insertion order because upserts keep
// the original row.
type CatalogRepository struct {
	store *Store
}

func NewCatalogRepository(store *Store) *CatalogRepository {
	return &CatalogRepository{store: store}
}

func (r *CatalogRepository) List(ctx context.Context) ([]*domain.Product, error) {
	rows, err := r.store.db.QueryContext(ctx,
		`SELECT id, name, category, price, stock, unit, updated_at
		 FROM products ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *CatalogRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	row := r.store.db.QueryRowContext(ctx,
		`SELECT id, name, category, price, stock, unit, updated_at
		 FROM products WHERE id = ?`, id)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return p, err
}

func (r *CatalogRepository) Upsert(ctx context.Context, product *domain.Product) error {
	if product == nil || product.ID == "" {
		return fmt.Errorf("catalog repository: id is required")
	}

	_, err := r.store.db.ExecContext(ctx,
		`INSERT INTO products (id, name, category, price, stock, unit, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   category = excluded.category,
		   price = excluded.price,
		   stock = excluded.stock,
		   unit = excluded.unit,
		   updated_at = excluded.updated_at`,
		product.ID, product.Name, product.Category, product.Price,
		product.Stock, product.Unit, formatTime(product.UpdatedAt))
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}

func (r *CatalogRepository) AdjustStock(ctx context.Context, id string, delta int) (int, error) {
	res, err := r.store.db.ExecContext(ctx,
		`UPDATE products SET stock = MAX(0, stock + ?) WHERE id = ?`, delta, id)
	if err != nil {
		return 0, fmt.Errorf("adjust stock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("adjust stock: %w", err)
	}
	if affected == 0 {
		return 0, domain.ErrNotFound
	}

	var stock int
	if err := r.store.db.QueryRowContext(ctx,
		`SELECT stock FROM products WHERE id = ?`, id).Scan(&stock); err != nil {
		return 0, fmt.Errorf("adjust stock: read back: %w", err)
	}
	return stock, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var p domain.Product
	var updatedAt string
	if err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.Stock, &p.Unit, &updatedAt); err != nil {
		return nil, err
	}
	t, err := parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	p.UpdatedAt = t
	return &p, nil
}
