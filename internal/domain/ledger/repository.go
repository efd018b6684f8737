package ledger

import "context"

// Repository is the persistence contract for the customer credit
// ledger. The transaction log is append-only; there is no update or
// delete operation.
type Repository interface {
	CreateCustomer(ctx context.Context, c *Customer) error
	FindCustomer(ctx context.Context, id string) (*Customer, error)
	// ListCustomers returns customers in insertion order.
	ListCustomers(ctx context.Context) ([]*Customer, error)
	Append(ctx context.Context, tx *Transaction) error
	// ListByCustomer returns the customer's transactions ordered by
	// date descending, most recent first.
	ListByCustomer(ctx context.Context, customerID string) ([]*Transaction, error)
}
