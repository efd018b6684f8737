package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domaincatalog "github.com/quilang/hardpos/internal/domain/catalog"
	domainexpense "github.com/quilang/hardpos/internal/domain/expense"
	domainledger "github.com/quilang/hardpos/internal/domain/ledger"
	domainsale "github.com/quilang/hardpos/internal/domain/sale"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "hardpos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func mustProduct(t *testing.T, id, name string, price int64, stock int) *domaincatalog.Product {
	t.Helper()
	p, err := domaincatalog.New(id, name, "Masonry", price, stock, "bag")
	require.NoError(t, err)
	return p
}

func TestCatalogRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewCatalogRepository(openTestStore(t))

	require.NoError(t, repo.Upsert(ctx, mustProduct(t, "1", "Portland Cement (40kg)", 23000, 150)))
	require.NoError(t, repo.Upsert(ctx, mustProduct(t, "2", "Hollow Blocks #4", 1800, 500)))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "1", list[0].ID)
	assert.Equal(t, "2", list[1].ID)

	// Replacing a product keeps its position in the listing order.
	require.NoError(t, repo.Upsert(ctx, mustProduct(t, "1", "Portland Cement (50kg)", 28000, 90)))
	list, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "1", list[0].ID)
	assert.Equal(t, "Portland Cement (50kg)", list[0].Name)

	got, err := repo.FindByID(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, int64(1800), got.Price)

	_, err = repo.FindByID(ctx, "ghost")
	assert.ErrorIs(t, err, domaincatalog.ErrNotFound)
}

func TestCatalogAdjustStockFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	repo := NewCatalogRepository(openTestStore(t))
	require.NoError(t, repo.Upsert(ctx, mustProduct(t, "1", "Portland Cement (40kg)", 23000, 10)))

	stock, err := repo.AdjustStock(ctx, "1", -3)
	require.NoError(t, err)
	assert.Equal(t, 7, stock)

	stock, err = repo.AdjustStock(ctx, "1", -1000)
	require.NoError(t, err)
	assert.Equal(t, 0, stock)

	stock, err = repo.AdjustStock(ctx, "1", 25)
	require.NoError(t, err)
	assert.Equal(t, 25, stock)

	_, err = repo.AdjustStock(ctx, "ghost", 1)
	assert.ErrorIs(t, err, domaincatalog.ErrNotFound)
}

func TestSaleRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSaleRepository(openTestStore(t))

	first, err := domainsale.New("s1", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), []domainsale.Line{
		{ProductID: "1", Name: "Portland Cement (40kg)", Unit: "bag", UnitPrice: 23000, Quantity: 2},
		{ProductID: "2", Name: "Hollow Blocks #4", Unit: "pc", UnitPrice: 1800, Quantity: 10},
	})
	require.NoError(t, err)
	second, err := domainsale.New("s2", time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC), []domainsale.Line{
		{ProductID: "1", Name: "Portland Cement (40kg)", Unit: "bag", UnitPrice: 23000, Quantity: 1},
	})
	require.NoError(t, err)

	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	assert.ErrorIs(t, repo.Create(ctx, first), domainsale.ErrConflict)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "s2", list[0].ID, "most recent sale first")

	got, err := repo.FindByID(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got.Lines, 2)
	assert.Equal(t, first.Total, got.Total)
	assert.Equal(t, "Portland Cement (40kg)", got.Lines[0].Name)
	assert.True(t, got.Date.Equal(first.Date))

	_, err = repo.FindByID(ctx, "ghost")
	assert.ErrorIs(t, err, domainsale.ErrNotFound)
}

func TestLedgerRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewLedgerRepository(openTestStore(t))

	customer, err := domainledger.NewCustomer("c1", "Arch. Mike Santos", "09171234567", "Tuguegarao City")
	require.NoError(t, err)
	require.NoError(t, repo.CreateCustomer(ctx, customer))
	assert.ErrorIs(t, repo.CreateCustomer(ctx, customer), domainledger.ErrCustomerExists)

	got, err := repo.FindCustomer(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Arch. Mike Santos", got.Name)

	_, err = repo.FindCustomer(ctx, "ghost")
	assert.ErrorIs(t, err, domainledger.ErrCustomerNotFound)

	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	amounts := []int64{500, 200, 100}
	types := []domainledger.Type{domainledger.TypeCharge, domainledger.TypeDeposit, domainledger.TypeCharge}
	for i := range amounts {
		tx, err := domainledger.NewTransaction(
			fmt.Sprintf("t%d", i+1), "c1", types[i], amounts[i], "", base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
		require.NoError(t, repo.Append(ctx, tx))
	}

	txs, err := repo.ListByCustomer(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, "t3", txs[0].ID, "most recent first")
	assert.Equal(t, int64(400), domainledger.Balance(txs))

	orphan, err := domainledger.NewTransaction("tx", "ghost", domainledger.TypeCharge, 10, "", base)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Append(ctx, orphan), domainledger.ErrCustomerNotFound)
}

func TestExpenseRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewExpenseRepository(openTestStore(t))

	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	older, err := domainexpense.New("e1", base, "Delivery fuel", 150000, "Logistics")
	require.NoError(t, err)
	newer, err := domainexpense.New("e2", base.Add(time.Hour), "Store electricity", 320000, "Utilities")
	require.NoError(t, err)

	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "e2", list[0].ID, "most recent first")
	assert.Equal(t, int64(150000), list[1].Amount)
}

func TestStoreReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "hardpos.db")

	store, err := Open(path)
	require.NoError(t, err)
	repo := NewCatalogRepository(store)
	require.NoError(t, repo.Upsert(ctx, mustProduct(t, "1", "Portland Cement (40kg)", 23000, 150)))
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()

	got, err := NewCatalogRepository(store).FindByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 150, got.Stock)
}
