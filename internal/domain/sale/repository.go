package sale

import "context"

// Repository is the persistence contract for finalized sales. List
// returns sales most recent first.
type Repository interface {
	List(ctx context.Context) ([]*Sale, error)
	FindByID(ctx context.Context, id string) (*Sale, error)
	Create(ctx context.Context, sale *Sale) error
}
