package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/quilang/hardpos/internal/domain/cart"
	"github.com/quilang/hardpos/internal/domain/catalog"
	"github.com/quilang/hardpos/internal/domain/event"
	"github.com/quilang/hardpos/internal/domain/sale"
	"github.com/quilang/hardpos/internal/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	useCaseCheckout = "checkout.process"
	publishTimeout  = 300 * time.Millisecond
)

// ErrPersistence wraps storage failures during checkout. The processor
// never retries on its own: a blind retry of a non-idempotent create
// could record the sale twice.
var ErrPersistence = errors.New("checkout: persistence failure")

type IDGenerator interface {
	NewID() string
}

// Service converts a basket into a permanent sale and applies the
// stock effects. One checkout runs at a time: the mutex covers the
// decrement-and-create step so interleaved checkouts cannot race on
// stock.
type Service struct {
	catalog   catalog.Repository
	sales     sale.Repository
	publisher event.Publisher
	idGen     IDGenerator

	requests  *prometheus.CounterVec   // {use_case, outcome}
	durations *prometheus.HistogramVec // {use_case}

	mu sync.Mutex
}

func NewService(
	catalogRepo catalog.Repository,
	saleRepo sale.Repository,
	publisher event.Publisher,
	idGen IDGenerator,
	requests *prometheus.CounterVec,
	durations *prometheus.HistogramVec,
) *Service {
	return &Service{
		catalog:   catalogRepo,
		sales:     saleRepo,
		publisher: publisher,
		idGen:     idGen,
		requests:  requests,
		durations: durations,
	}
}

type appliedDecrement struct {
	productID string
	quantity  int
}

// Process finalizes the basket: it snapshots the cart lines, decrements
// stock with a floor of zero (oversell records the sale and truncates
// stock rather than failing), persists the sale, and clears the cart
// only after everything else succeeded.
//
// CONSISTENCY: stock decrement and sale creation are two separate
// storage calls. The storage contract offers no transaction spanning
// both, so a crash between them can leave stock decremented with no
// sale recorded. Within the process this is narrowed by compensation:
// if the sale create fails, every decrement already applied is restored
// before the error is returned, so either the sale exists with its
// decrements or neither does. A failure during compensation itself is
// logged and leaves the documented inconsistency. Best effort, not a
// transaction.
func (s *Service) Process(ctx context.Context, c *cart.Cart) (_ *sale.Sale, err error) {
	logger := logging.FromContext(ctx).With(zap.String("component", "checkout_service"))

	ctx, span := otel.Tracer("hardpos.checkout").Start(ctx, "UC.Checkout",
		trace.WithAttributes(attribute.String("use_case", useCaseCheckout)),
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
			s.requests.WithLabelValues(useCaseCheckout, outcome).Inc()
		}
		if s.durations != nil {
			s.durations.WithLabelValues(useCaseCheckout).Observe(time.Since(start).Seconds())
		}
	}()

	lines := c.Lines()
	if len(lines) == 0 {
		return nil, cart.ErrEmpty
	}

	logger.Info("checkout_start", zap.Int("lines", len(lines)))

	s.mu.Lock()
	newSale, err := s.commit(ctx, lines, logger)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	// The basket is cleared only once stock and sale are durable.
	c.Clear()

	s.publishCompleted(ctx, newSale, logger)

	span.SetAttributes(
		attribute.String("sale.id", newSale.ID),
		attribute.Int64("sale.total", newSale.Total),
	)
	logger.Info("checkout_success",
		zap.String("sale_id", newSale.ID),
		zap.Int64("total", newSale.Total),
	)
	return newSale, nil
}

// commit runs the decrement-and-create step under the checkout lock.
func (s *Service) commit(ctx context.Context, lines []cart.Line, logger *zap.Logger) (*sale.Sale, error) {
	applied := make([]appliedDecrement, 0, len(lines))

	for _, line := range lines {
		p, err := s.catalog.FindByID(ctx, line.ProductID)
		if err != nil {
			s.compensate(ctx, applied, logger)
			return nil, fmt.Errorf("checkout: product %s: %w", line.ProductID, err)
		}

		// Floor at zero: an oversold line truncates stock instead of
		// failing the sale. Remember how much really came off so a
		// later failure can put exactly that much back.
		take := line.Quantity
		if p.Stock < take {
			take = p.Stock
		}
		if take > 0 {
			if _, err := s.catalog.AdjustStock(ctx, line.ProductID, -line.Quantity); err != nil {
				s.compensate(ctx, applied, logger)
				return nil, fmt.Errorf("%w: adjust stock %s: %w", ErrPersistence, line.ProductID, err)
			}
			applied = append(applied, appliedDecrement{productID: line.ProductID, quantity: take})
		}
	}

	saleLines := make([]sale.Line, len(lines))
	for i, line := range lines {
		saleLines[i] = sale.Line{
			ProductID: line.ProductID,
			Name:      line.Name,
			Unit:      line.Unit,
			UnitPrice: line.Price,
			Quantity:  line.Quantity,
		}
	}

	newSale, err := sale.New(s.idGen.NewID(), time.Now().UTC(), saleLines)
	if err != nil {
		s.compensate(ctx, applied, logger)
		return nil, fmt.Errorf("checkout: construct sale: %w", err)
	}

	if err := s.sales.Create(ctx, newSale); err != nil {
		s.compensate(ctx, applied, logger)
		return nil, fmt.Errorf("%w: record sale: %w", ErrPersistence, err)
	}

	return newSale, nil
}

// compensate restores decrements already applied when a later step
// failed, so a rejected checkout leaves stock as it was.
func (s *Service) compensate(ctx context.Context, applied []appliedDecrement, logger *zap.Logger) {
	for i := len(applied) - 1; i >= 0; i-- {
		d := applied[i]
		if _, err := s.catalog.AdjustStock(ctx, d.productID, d.quantity); err != nil {
			// Stock is now short with no sale recorded and no way to
			// fix it from here; flag loudly for the operator.
			logger.Error("checkout_compensation_failed",
				zap.String("product_id", d.productID),
				zap.Int("quantity", d.quantity),
				zap.Error(err),
			)
		}
	}
}

// ListSales returns finalized sales, most recent first.
func (s *Service) ListSales(ctx context.Context) ([]*sale.Sale, error) {
	return s.sales.List(ctx)
}

func (s *Service) GetSale(ctx context.Context, id string) (*sale.Sale, error) {
	if id == "" {
		return nil, sale.ErrNotFound
	}
	return s.sales.FindByID(ctx, id)
}

func (s *Service) publishCompleted(ctx context.Context, newSale *sale.Sale, logger *zap.Logger) {
	if s.publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(pubCtx, sale.NewCompletedEvent(newSale)); err != nil {
		logger.Warn("sale_event_publish_failed",
			zap.String("sale_id", newSale.ID),
			zap.Error(err),
		)
	}
}
