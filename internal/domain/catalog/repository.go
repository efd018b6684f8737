package catalog

import "context"

// Repository is the persistence contract for products. List returns
// products in insertion order.
type Repository interface {
	List(ctx context.Context) ([]*Product, error)
	FindByID(ctx context.Context, id string) (*Product, error)
	Upsert(ctx context.Context, product *Product) error
	// AdjustStock applies delta with a floor of zero and returns the
	// resulting stock. Fails with ErrNotFound for an unknown id.
	AdjustStock(ctx context.Context, id string, delta int) (int, error)
}
