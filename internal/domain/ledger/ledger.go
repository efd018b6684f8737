package ledger

import (
	"errors"
	"time"
)

var (
	ErrCustomerNotFound = errors.New("ledger: customer not found")
	ErrCustomerExists   = errors.New("ledger: customer already exists")
	ErrInvalidName      = errors.New("ledger: customer name is required")
	ErrInvalidAmount    = errors.New("ledger: amount must be greater than zero")
	ErrInvalidType      = errors.New("ledger: transaction type must be CHARGE or DEPOSIT")
)

// Type distinguishes the two ledger entry kinds. A charge increases the
// customer's debt toward the store, a deposit pays it down.
type Type string

const (
	TypeCharge  Type = "CHARGE"
	TypeDeposit Type = "DEPOSIT"
)

// Customer is a credit-ledger account holder. There is deliberately no
// balance field here: balance is always derived from the transaction
// log, never stored where it could drift.
type Customer struct {
	ID        string
	Name      string
	Contact   string
	Address   string
	CreatedAt time.Time
}

func NewCustomer(id, name, contact, address string) (*Customer, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	return &Customer{
		ID:        id,
		Name:      name,
		Contact:   contact,
		Address:   address,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Transaction is one append-only ledger entry. Entries are never
// mutated or deleted once written.
type Transaction struct {
	ID          string
	CustomerID  string
	Type        Type
	Amount      int64
	Description string
	Date        time.Time
}

func NewTransaction(id, customerID string, typ Type, amount int64, description string, date time.Time) (*Transaction, error) {
	if typ != TypeCharge && typ != TypeDeposit {
		return nil, ErrInvalidType
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return &Transaction{
		ID:          id,
		CustomerID:  customerID,
		Type:        typ,
		Amount:      amount,
		Description: description,
		Date:        date,
	}, nil
}

// Signed returns the amount with the sign it contributes to the running
// balance: positive for charges, negative for deposits.
func (t *Transaction) Signed() int64 {
	if t.Type == TypeDeposit {
		return -t.Amount
	}
	return t.Amount
}

// Balance folds a transaction slice into the owed balance. A positive
// result means the customer owes the store.
func Balance(txs []*Transaction) int64 {
	var balance int64
	for _, t := range txs {
		balance += t.Signed()
	}
	return balance
}
