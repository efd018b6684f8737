package expense

import (
	"context"
	"fmt"
	"time"

	domain "github.com/quilang/hardpos/internal/domain/expense"
	"github.com/quilang/hardpos/internal/pkg/logging"
	"go.uber.org/zap"
)

type IDGenerator interface {
	NewID() string
}

// Service records and lists store expenses. Entries are append-only;
// there is no update or delete.
type Service struct {
	repo  domain.Repository
	idGen IDGenerator
}

func NewService(repo domain.Repository, idGen IDGenerator) *Service {
	return &Service{repo: repo, idGen: idGen}
}

func (s *Service) Add(ctx context.Context, description string, amount int64, category string) (*domain.Expense, error) {
	logger := logging.FromContext(ctx).With(zap.String("component", "expense_service"))

	e, err := domain.New(s.idGen.NewID(), time.Now().UTC(), description, amount, category)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("expense: create: %w", err)
	}

	logger.Info("expense_recorded",
		zap.String("expense_id", e.ID),
		zap.Int64("amount", e.Amount),
		zap.String("category", e.Category),
	)
	return e, nil
}

func (s *Service) List(ctx context.Context) ([]*domain.Expense, error) {
	return s.repo.List(ctx)
}
