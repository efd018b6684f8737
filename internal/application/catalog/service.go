package catalog

import (
	"context"
	"fmt"
	"strings"

	domain "github.com/quilang/hardpos/internal/domain/catalog"
	"github.com/quilang/hardpos/internal/pkg/logging"
	"go.uber.org/zap"
)

type IDGenerator interface {
	NewID() string
}

// Service owns the product catalog: full-replace upserts, the stock
// adjustment primitive used by checkout and restocking, and search.
type Service struct {
	repo  domain.Repository
	idGen IDGenerator
}

func NewService(repo domain.Repository, idGen IDGenerator) *Service {
	return &Service{repo: repo, idGen: idGen}
}

type UpsertInput struct {
	ID       string
	Name     string
	Category string
	Price    int64
	Stock    int
	Unit     string
}

// Upsert inserts a new product or fully replaces an existing one; there
// are no partial-field patch semantics. A missing ID gets a generated
// one.
func (s *Service) Upsert(ctx context.Context, input UpsertInput) (*domain.Product, error) {
	logger := logging.FromContext(ctx).With(zap.String("component", "catalog_service"))

	id := input.ID
	if id == "" {
		id = s.idGen.NewID()
	}

	product, err := domain.New(id, input.Name, input.Category, input.Price, input.Stock, input.Unit)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, product); err != nil {
		return nil, fmt.Errorf("catalog: upsert: %w", err)
	}

	logger.Info("product_upserted",
		zap.String("product_id", product.ID),
		zap.String("name", product.Name),
	)
	return product, nil
}

func (s *Service) List(ctx context.Context) ([]*domain.Product, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	if id == "" {
		return nil, domain.ErrNotFound
	}
	return s.repo.FindByID(ctx, id)
}

// AdjustStock applies delta with a floor of zero and returns the new
// stock level.
func (s *Service) AdjustStock(ctx context.Context, id string, delta int) (int, error) {
	logger := logging.FromContext(ctx).With(zap.String("component", "catalog_service"))

	stock, err := s.repo.AdjustStock(ctx, id, delta)
	if err != nil {
		return 0, err
	}

	logger.Info("stock_adjusted",
		zap.String("product_id", id),
		zap.Int("delta", delta),
		zap.Int("stock", stock),
	)
	return stock, nil
}

// Search matches the query case-insensitively against name or category
// as a substring, returning hits in the catalog's insertion order. The
// empty query matches everything.
func (s *Service) Search(ctx context.Context, query string) ([]*domain.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return products, nil
	}

	needle := strings.ToLower(query)
	out := products[:0]
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Category), needle) {
			out = append(out, p)
		}
	}
	return out, nil
}
