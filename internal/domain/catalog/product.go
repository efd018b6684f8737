package catalog

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("catalog: product not found")
	ErrInvalidName  = errors.New("catalog: name is required")
	ErrInvalidPrice = errors.New("catalog: price must be zero or greater")
	ErrInvalidStock = errors.New("catalog: stock must be zero or greater")
)

// Product is a stocked item in the store catalog. Price is in centavos.
type Product struct {
	ID        string
	Name      string
	Category  string
	Price     int64
	Stock     int
	Unit      string
	UpdatedAt time.Time
}

func New(id, name, category string, price int64, stock int, unit string) (*Product, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	if price < 0 {
		return nil, ErrInvalidPrice
	}
	if stock < 0 {
		return nil, ErrInvalidStock
	}
	return &Product{
		ID:        id,
		Name:      name,
		Category:  category,
		Price:     price,
		Stock:     stock,
		Unit:      unit,
		UpdatedAt: time.Now().UTC(),
	}, nil
}

// AdjustStock applies delta to the stock level, flooring at zero.
// It returns the stock actually removed or added after clamping.
func (p *Product) AdjustStock(delta int) int {
	before := p.Stock
	next := p.Stock + delta
	if next < 0 {
		next = 0
	}
	p.Stock = next
	p.touch()
	return next - before
}

func (p *Product) touch() {
	p.UpdatedAt = time.Now().UTC()
}
