package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/quilang/hardpos/internal/domain/catalog"
	"github.com/quilang/hardpos/internal/infrastructure/memory"
)

type seqIDs struct{ n int }

func (g *seqIDs) NewID() string {
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

func newTestService() *Service {
	return NewService(memory.NewCatalogRepository(), &seqIDs{})
}

func seed(t *testing.T, svc *Service, id, name, category string, price int64, stock int, unit string) *domain.Product {
	t.Helper()
	p, err := svc.Upsert(context.Background(), UpsertInput{
		ID: id, Name: name, Category: category, Price: price, Stock: stock, Unit: unit,
	})
	require.NoError(t, err)
	return p
}

func TestUpsertGeneratesIDWhenMissing(t *testing.T) {
	svc := newTestService()

	p, err := svc.Upsert(context.Background(), UpsertInput{
		Name: "Portland Cement (40kg)", Category: "Masonry", Price: 23000, Stock: 150, Unit: "bag",
	})
	require.NoError(t, err)
	assert.Equal(t, "id-1", p.ID)
}

func TestUpsertFullyReplacesExisting(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	seed(t, svc, "1", "Portland Cement (40kg)", "Masonry", 23000, 150, "bag")

	// A second upsert with the same ID replaces every field, it is not a
	// partial patch.
	_, err := svc.Upsert(ctx, UpsertInput{
		ID: "1", Name: "Portland Cement (50kg)", Category: "Masonry", Price: 28000, Stock: 90, Unit: "bag",
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Portland Cement (50kg)", got.Name)
	assert.Equal(t, int64(28000), got.Price)
	assert.Equal(t, 90, got.Stock)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestUpsertValidation(t *testing.T) {
	svc := newTestService()

	_, err := svc.Upsert(context.Background(), UpsertInput{Name: "", Price: 100, Stock: 1, Unit: "pc"})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Upsert(context.Background(), UpsertInput{Name: "Nails", Price: -1, Stock: 1, Unit: "kg"})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)
}

func TestGetUnknownProduct(t *testing.T) {
	svc := newTestService()

	_, err := svc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdjustStockFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	seed(t, svc, "1", "Hollow Blocks #4", "Masonry", 1800, 10, "pc")

	stock, err := svc.AdjustStock(ctx, "1", -1000)
	require.NoError(t, err)
	assert.Equal(t, 0, stock)

	stock, err = svc.AdjustStock(ctx, "1", 25)
	require.NoError(t, err)
	assert.Equal(t, 25, stock)

	_, err = svc.AdjustStock(ctx, "ghost", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	seed(t, svc, "1", "Portland Cement (40kg)", "Masonry", 23000, 150, "bag")
	seed(t, svc, "2", "Deformed Steel Bar 10mm", "Steel", 18500, 200, "pc")
	seed(t, svc, "3", "Hollow Blocks #4", "Masonry", 1800, 500, "pc")

	tests := []struct {
		name    string
		query   string
		wantIDs []string
	}{
		{name: "empty query returns all in insertion order", query: "", wantIDs: []string{"1", "2", "3"}},
		{name: "matches name case-insensitively", query: "cement", wantIDs: []string{"1"}},
		{name: "matches category", query: "masonry", wantIDs: []string{"1", "3"}},
		{name: "substring match", query: "STEEL", wantIDs: []string{"2"}},
		{name: "no hits", query: "plywood", wantIDs: []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.Search(ctx, tc.query)
			require.NoError(t, err)
			ids := make([]string, 0, len(got))
			for _, p := range got {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tc.wantIDs, ids)
		})
	}
}
