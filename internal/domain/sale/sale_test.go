package sale

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewComputesTotalFromLines(t *testing.T) {
	s, err := New("s1", time.Now().UTC(), []Line{
		{ProductID: "p1", Name: "Portland Cement (40kg)", Unit: "bag", UnitPrice: 23000, Quantity: 2},
		{ProductID: "p2", Name: "Paint Roller 7\"", Unit: "pc", UnitPrice: 8500, Quantity: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2*23000+8500), s.Total)
}

func TestNewRejectsEmptyLines(t *testing.T) {
	_, err := New("s1", time.Now().UTC(), nil)
	assert.ErrorIs(t, err, ErrNoLines)
}

func TestNewSnapshotsLines(t *testing.T) {
	lines := []Line{{ProductID: "p1", Name: "Portland Cement (40kg)", UnitPrice: 23000, Quantity: 2}}
	s, err := New("s1", time.Now().UTC(), lines)
	require.NoError(t, err)

	// Mutating the caller's slice must not reach the stored snapshot.
	lines[0].UnitPrice = 30000
	assert.Equal(t, int64(23000), s.Lines[0].UnitPrice)
	assert.Equal(t, int64(46000), s.Total)
}
