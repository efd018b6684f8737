package checkout

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domaincart "github.com/quilang/hardpos/internal/domain/cart"
	domaincatalog "github.com/quilang/hardpos/internal/domain/catalog"
	"github.com/quilang/hardpos/internal/domain/event"
	domainsale "github.com/quilang/hardpos/internal/domain/sale"
	"github.com/quilang/hardpos/internal/infrastructure/memory"
)

type seqIDs struct{ n int }

func (g *seqIDs) NewID() string {
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

type failingSaleRepo struct {
	err error
}

func (r *failingSaleRepo) List(context.Context) ([]*domainsale.Sale, error) {
	return nil, r.err
}

func (r *failingSaleRepo) FindByID(context.Context, string) (*domainsale.Sale, error) {
	return nil, r.err
}

func (r *failingSaleRepo) Create(context.Context, *domainsale.Sale) error {
	return r.err
}

type capturingPublisher struct {
	events []event.Event
}

func (p *capturingPublisher) Publish(_ context.Context, e event.Event) error {
	p.events = append(p.events, e)
	return nil
}

func seedProduct(t *testing.T, repo domaincatalog.Repository, id, name string, price int64, stock int) *domaincatalog.Product {
	t.Helper()
	p, err := domaincatalog.New(id, name, "Masonry", price, stock, "bag")
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(context.Background(), p))
	return p
}

func TestProcessScenario(t *testing.T) {
	ctx := context.Background()
	catalogRepo := memory.NewCatalogRepository()
	saleRepo := memory.NewSaleRepository()
	svc := NewService(catalogRepo, saleRepo, nil, &seqIDs{}, nil, nil)

	p1 := seedProduct(t, catalogRepo, "p1", "Portland Cement (40kg)", 100, 5)

	c := domaincart.New()
	c.Add(p1)
	c.Add(p1)

	s, err := svc.Process(ctx, c)
	require.NoError(t, err)

	assert.Equal(t, int64(200), s.Total)
	assert.Equal(t, 0, c.Len(), "cart must be empty after checkout")

	stored, err := catalogRepo.FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Stock)

	sales, err := saleRepo.List(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, s.ID, sales[0].ID)
}

func TestProcessEmptyCart(t *testing.T) {
	svc := NewService(memory.NewCatalogRepository(), memory.NewSaleRepository(), nil, &seqIDs{}, nil, nil)

	_, err := svc.Process(context.Background(), domaincart.New())
	assert.ErrorIs(t, err, domaincart.ErrEmpty)
}

func TestProcessTotalSnapshotsCartPrices(t *testing.T) {
	ctx := context.Background()
	catalogRepo := memory.NewCatalogRepository()
	saleRepo := memory.NewSaleRepository()
	svc := NewService(catalogRepo, saleRepo, nil, &seqIDs{}, nil, nil)

	p1 := seedProduct(t, catalogRepo, "p1", "Portland Cement (40kg)", 230, 150)

	c := domaincart.New()
	c.Add(p1)
	c.Add(p1)

	// Reprice after the lines were added; the sale must keep the price
	// that was in the cart.
	repriced, err := domaincatalog.New("p1", "Portland Cement (40kg)", "Masonry", 300, 150, "bag")
	require.NoError(t, err)
	require.NoError(t, catalogRepo.Upsert(ctx, repriced))

	s, err := svc.Process(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, int64(460), s.Total)
}

func TestProcessOversellFloorsStockAtZero(t *testing.T) {
	ctx := context.Background()
	catalogRepo := memory.NewCatalogRepository()
	svc := NewService(catalogRepo, memory.NewSaleRepository(), nil, &seqIDs{}, nil, nil)

	p1 := seedProduct(t, catalogRepo, "p1", "Poco Sand", 120000, 3)

	c := domaincart.New()
	c.Add(p1)
	c.SetQuantity("p1", 5)

	s, err := svc.Process(ctx, c)
	require.NoError(t, err, "oversell records the sale instead of failing")
	assert.Equal(t, int64(5*120000), s.Total)

	stored, err := catalogRepo.FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Stock)
}

func TestProcessSaleCreateFailureKeepsCartAndRestoresStock(t *testing.T) {
	ctx := context.Background()
	catalogRepo := memory.NewCatalogRepository()
	saleRepo := &failingSaleRepo{err: errors.New("disk full")}
	svc := NewService(catalogRepo, saleRepo, nil, &seqIDs{}, nil, nil)

	p1 := seedProduct(t, catalogRepo, "p1", "Portland Cement (40kg)", 100, 5)

	c := domaincart.New()
	c.Add(p1)
	c.Add(p1)

	_, err := svc.Process(ctx, c)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersistence)

	// Documented behavior: the cart survives and the decrements already
	// applied are compensated, leaving stock untouched.
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, int64(200), c.Total())

	stored, err := catalogRepo.FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Stock)
}

func TestProcessPublishesCompletedEvent(t *testing.T) {
	ctx := context.Background()
	catalogRepo := memory.NewCatalogRepository()
	pub := &capturingPublisher{}
	svc := NewService(catalogRepo, memory.NewSaleRepository(), pub, &seqIDs{}, nil, nil)

	p1 := seedProduct(t, catalogRepo, "p1", "Portland Cement (40kg)", 100, 5)

	c := domaincart.New()
	c.Add(p1)

	s, err := svc.Process(ctx, c)
	require.NoError(t, err)

	require.Len(t, pub.events, 1)
	evt, ok := pub.events[0].(domainsale.CompletedEvent)
	require.True(t, ok)
	assert.Equal(t, s.ID, evt.SaleID)
	assert.Equal(t, s.Total, evt.Total)
}
