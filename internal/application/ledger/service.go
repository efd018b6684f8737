package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	domain "github.com/quilang/hardpos/internal/domain/ledger"
	"github.com/quilang/hardpos/internal/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const useCaseRecord = "ledger.record"

type IDGenerator interface {
	NewID() string
}

// Account is a customer together with the balance derived from the
// transaction log. Positive balance means the customer owes the store.
type Account struct {
	Customer *domain.Customer
	Balance  int64
}

// Service is the customer credit ledger. Appends are serialized per
// customer, and the running balance is a cache of the transaction-log
// fold: primed from the full fold on first read, advanced by the signed
// amount on each append. Balance never lives anywhere else; callers
// must not do their own arithmetic on it.
type Service struct {
	repo  domain.Repository
	idGen IDGenerator

	requests  *prometheus.CounterVec   // {use_case, outcome}
	durations *prometheus.HistogramVec // {use_case}

	locks sync.Map // customerID -> *sync.Mutex

	cacheMu  sync.RWMutex
	balances map[string]int64
}

func NewService(
	repo domain.Repository,
	idGen IDGenerator,
	requests *prometheus.CounterVec,
	durations *prometheus.HistogramVec,
) *Service {
	return &Service{
		repo:      repo,
		idGen:     idGen,
		requests:  requests,
		durations: durations,
		balances:  make(map[string]int64),
	}
}

func (s *Service) customerLock(customerID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(customerID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// CreateCustomer initializes a profile with no transactions; its
// balance is zero by the fold of an empty log.
func (s *Service) CreateCustomer(ctx context.Context, name, contact, address string) (*domain.Customer, error) {
	logger := logging.FromContext(ctx).With(zap.String("component", "ledger_service"))

	customer, err := domain.NewCustomer(s.idGen.NewID(), name, contact, address)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateCustomer(ctx, customer); err != nil {
		return nil, fmt.Errorf("ledger: create customer: %w", err)
	}

	s.cacheMu.Lock()
	s.balances[customer.ID] = 0
	s.cacheMu.Unlock()

	logger.Info("customer_created",
		zap.String("customer_id", customer.ID),
		zap.String("name", customer.Name),
	)
	return customer, nil
}

// RecordTransaction appends one immutable ledger entry. The amount must
// be positive, and the customer must already exist; the ledger never
// creates customers implicitly.
func (s *Service) RecordTransaction(ctx context.Context, customerID string, typ domain.Type, amount int64, description string) (_ *domain.Transaction, err error) {
	logger := logging.FromContext(ctx).With(zap.String("component", "ledger_service"))

	ctx, span := otel.Tracer("hardpos.ledger").Start(ctx, "UC.RecordTransaction",
		trace.WithAttributes(
			attribute.String("use_case", useCaseRecord),
			attribute.String("ledger.customer_id", customerID),
			attribute.String("ledger.type", string(typ)),
		),
	)
	start := time.Now()
	outcome := "success"

	defer func() {
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "OK")
		}
		span.End()

		if s.requests != nil {
			s.requests.WithLabelValues(useCaseRecord, outcome).Inc()
		}
		if s.durations != nil {
			s.durations.WithLabelValues(useCaseRecord).Observe(time.Since(start).Seconds())
		}
	}()

	tx, err := domain.NewTransaction(s.idGen.NewID(), customerID, typ, amount, description, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	mu := s.customerLock(customerID)
	mu.Lock()
	defer mu.Unlock()

	if _, err := s.repo.FindCustomer(ctx, customerID); err != nil {
		return nil, err
	}

	// Prime the cache under the customer lock so the append below is
	// reflected exactly once.
	balance, err := s.primedBalance(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Append(ctx, tx); err != nil {
		return nil, fmt.Errorf("ledger: append: %w", err)
	}

	s.cacheMu.Lock()
	s.balances[customerID] = balance + tx.Signed()
	s.cacheMu.Unlock()

	logger.Info("transaction_recorded",
		zap.String("customer_id", customerID),
		zap.String("tx_id", tx.ID),
		zap.String("type", string(typ)),
		zap.Int64("amount", amount),
	)
	return tx, nil
}

// Balance returns the customer's owed balance. The cached value is
// provably equivalent to folding the full log: it starts as that fold
// and every append moves it by the same signed amount it appends.
func (s *Service) Balance(ctx context.Context, customerID string) (int64, error) {
	if _, err := s.repo.FindCustomer(ctx, customerID); err != nil {
		return 0, err
	}

	mu := s.customerLock(customerID)
	mu.Lock()
	defer mu.Unlock()

	return s.primedBalance(ctx, customerID)
}

// primedBalance returns the cached balance, folding the transaction log
// to seed the cache on first use. Callers must hold the customer lock.
func (s *Service) primedBalance(ctx context.Context, customerID string) (int64, error) {
	s.cacheMu.RLock()
	balance, ok := s.balances[customerID]
	s.cacheMu.RUnlock()
	if ok {
		return balance, nil
	}

	txs, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return 0, fmt.Errorf("ledger: derive balance: %w", err)
	}
	balance = domain.Balance(txs)

	s.cacheMu.Lock()
	s.balances[customerID] = balance
	s.cacheMu.Unlock()
	return balance, nil
}

// History returns the customer's transactions most recent first. It can
// be called repeatedly; each call re-reads the log.
func (s *Service) History(ctx context.Context, customerID string) ([]*domain.Transaction, error) {
	return s.repo.ListByCustomer(ctx, customerID)
}

// ListAccounts returns every customer with the balance pre-derived.
func (s *Service) ListAccounts(ctx context.Context) ([]Account, error) {
	customers, err := s.repo.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledger: list customers: %w", err)
	}

	out := make([]Account, 0, len(customers))
	for _, c := range customers {
		balance, err := s.Balance(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, Account{Customer: c, Balance: balance})
	}
	return out, nil
}
