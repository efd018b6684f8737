package stockwatch

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/quilang/hardpos/internal/domain/catalog"
	"github.com/quilang/hardpos/internal/domain/event"
	"github.com/quilang/hardpos/internal/domain/sale"
	"go.uber.org/zap"
)

// Watcher listens for completed sales and warns when a sold product has
// dropped to or below the reorder threshold. It has no write access to
// the catalog; it only observes.
type Watcher struct {
	subscriber event.Subscriber
	catalog    catalog.Repository
	threshold  int
	lowStock   *prometheus.CounterVec
	log        *zap.Logger
}

func New(subscriber event.Subscriber, repo catalog.Repository, threshold int, lowStock *prometheus.CounterVec, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		subscriber: subscriber,
		catalog:    repo,
		threshold:  threshold,
		lowStock:   lowStock,
		log:        logger.With(zap.String("component", "stock_watcher")),
	}
}

func (w *Watcher) Start() {
	w.subscriber.Subscribe(sale.CompletedEvent{}.EventName(), w.handleSaleCompleted)
}

func (w *Watcher) handleSaleCompleted(ctx context.Context, e event.Event) error {
	evt, ok := e.(sale.CompletedEvent)
	if !ok {
		return nil
	}

	for _, line := range evt.Lines {
		p, err := w.catalog.FindByID(ctx, line.ProductID)
		if err != nil {
			w.log.Warn("stock_check_failed",
				zap.String("sale_id", evt.SaleID),
				zap.String("product_id", line.ProductID),
				zap.Error(err),
			)
			continue
		}
		if p.Stock > w.threshold {
			continue
		}
		if w.lowStock != nil {
			w.lowStock.WithLabelValues(p.ID).Inc()
		}
		w.log.Warn("stock_low",
			zap.String("sale_id", evt.SaleID),
			zap.String("product_id", p.ID),
			zap.String("name", p.Name),
			zap.Int("stock", p.Stock),
			zap.Int("threshold", w.threshold),
		)
	}
	return nil
}
