package receipt

import (
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quilang/hardpos/internal/domain/sale"
)

func testHeader() Header {
	return Header{
		StoreName: "Engr Quilang Hardware",
		Address:   "Cabbo, Penablanca, Cagayan",
		Phone:     "+63 995 559 7560",
	}
}

func TestRenderSlip(t *testing.T) {
	s, err := sale.New("sale-0001", time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC), []sale.Line{
		{ProductID: "1", Name: "Portland Cement (40kg)", Unit: "bag", UnitPrice: 23000, Quantity: 2},
		{ProductID: "2", Name: "Deformed Steel Bar 10mm", Unit: "pc", UnitPrice: 18500, Quantity: 3},
	})
	require.NoError(t, err)

	out := Render(testHeader(), s)

	g := goldie.New(t)
	g.Assert(t, "slip", []byte(out))
}

func TestRenderLineWidth(t *testing.T) {
	s, err := sale.New("sale-0002", time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC), []sale.Line{
		{ProductID: "3", Name: "Hollow Blocks #4", Unit: "pc", UnitPrice: 1800, Quantity: 100},
	})
	require.NoError(t, err)

	out := Render(testHeader(), s)

	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		assert.LessOrEqual(t, len(line), 40, "line overflows the printer: %q", line)
	}
	assert.True(t, strings.HasSuffix(out, strings.Repeat("=", 40)+"\n"))
}

func TestRenderGroupsThousands(t *testing.T) {
	s, err := sale.New("sale-0003", time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC), []sale.Line{
		{ProductID: "1", Name: "Portland Cement (40kg)", Unit: "bag", UnitPrice: 23000, Quantity: 10},
	})
	require.NoError(t, err)

	out := Render(testHeader(), s)
	assert.Contains(t, out, "2,300.00")
}
