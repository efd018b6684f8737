package cart

import (
	"errors"
	"sync"

	"github.com/quilang/hardpos/internal/domain/catalog"
)

var ErrEmpty = errors.New("cart: no items in cart")

// Line is a single basket row. Price and the descriptive fields are
// snapshotted from the catalog when the line is added; later catalog
// edits do not reach into an open basket.
type Line struct {
	ProductID string
	Name      string
	Category  string
	Unit      string
	Price     int64
	Quantity  int
}

func (l Line) Subtotal() int64 {
	return l.Price * int64(l.Quantity)
}

// Cart is the uncommitted sale basket for one session. It holds no
// reference to persistence and never touches catalog stock; stock is
// enforced at checkout only, so adding more than is in stock is allowed
// here and callers may warn using the snapshotted product.
type Cart struct {
	mu    sync.Mutex
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

// Add puts one unit of the product in the basket. An existing line for
// the same product is incremented by one.
func (c *Cart) Add(p *catalog.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ProductID == p.ID {
			c.lines[i].Quantity++
			return
		}
	}
	c.lines = append(c.lines, Line{
		ProductID: p.ID,
		Name:      p.Name,
		Category:  p.Category,
		Unit:      p.Unit,
		Price:     p.Price,
		Quantity:  1,
	})
}

// SetQuantity sets a line to exactly qty. A quantity of zero or below
// removes the line; a zero or negative row is never kept.
func (c *Cart) SetQuantity(productID string, qty int) {
	if qty <= 0 {
		c.Remove(productID)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines[i].Quantity = qty
			return
		}
	}
}

// Remove deletes the line for productID. Removing an absent line is a no-op.
func (c *Cart) Remove(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// Clear empties the basket unconditionally.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

// Total recomputes the basket total on every call; it is never cached
// because quantities can change between calls.
func (c *Cart) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total int64
	for _, l := range c.lines {
		total += l.Subtotal()
	}
	return total
}

// Lines returns a copy of the basket rows in insertion order.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}
