package sale

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("sale: not found")
	ErrConflict = errors.New("sale: already exists")
	ErrNoLines  = errors.New("sale: at least one line is required")
)

// Line is an immutable snapshot of a basket row at the moment of
// checkout. UnitPrice is the price that was charged, not the current
// catalog price.
type Line struct {
	ProductID string
	Name      string
	Unit      string
	UnitPrice int64
	Quantity  int
}

func (l Line) Subtotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// Sale is a finalized purchase. It is created exactly once per checkout
// and never mutated; Total is fixed at creation from the line snapshot.
type Sale struct {
	ID    string
	Date  time.Time
	Lines []Line
	Total int64
}

func New(id string, date time.Time, lines []Line) (*Sale, error) {
	if len(lines) == 0 {
		return nil, ErrNoLines
	}

	snapshot := make([]Line, len(lines))
	copy(snapshot, lines)

	var total int64
	for _, l := range snapshot {
		total += l.Subtotal()
	}

	return &Sale{
		ID:    id,
		Date:  date,
		Lines: snapshot,
		Total: total,
	}, nil
}
