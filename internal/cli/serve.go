package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	appcatalog "github.com/quilang/hardpos/internal/application/catalog"
	appcheckout "github.com/quilang/hardpos/internal/application/checkout"
	appexpense "github.com/quilang/hardpos/internal/application/expense"
	appledger "github.com/quilang/hardpos/internal/application/ledger"
	"github.com/quilang/hardpos/internal/config"
	domaincart "github.com/quilang/hardpos/internal/domain/cart"
	domaincatalog "github.com/quilang/hardpos/internal/domain/catalog"
	domainexpense "github.com/quilang/hardpos/internal/domain/expense"
	domainledger "github.com/quilang/hardpos/internal/domain/ledger"
	domainsale "github.com/quilang/hardpos/internal/domain/sale"
	"github.com/quilang/hardpos/internal/infrastructure/bus"
	"github.com/quilang/hardpos/internal/infrastructure/id"
	"github.com/quilang/hardpos/internal/infrastructure/memory"
	"github.com/quilang/hardpos/internal/infrastructure/sqlite"
	"github.com/quilang/hardpos/internal/infrastructure/stockwatch"
	"github.com/quilang/hardpos/internal/pkg/logging"
	"github.com/quilang/hardpos/internal/pkg/receipt"
	httppresentation "github.com/quilang/hardpos/internal/presentation/http"
)

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the POS HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(rootOpts)
		},
	}
}

type repositories struct {
	catalog domaincatalog.Repository
	sales   domainsale.Repository
	ledger  domainledger.Repository
	expense domainexpense.Repository
	close   func() error
}

func openRepositories(cfg config.Config) (*repositories, error) {
	switch cfg.StorageDriver {
	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return &repositories{
			catalog: sqlite.NewCatalogRepository(store),
			sales:   sqlite.NewSaleRepository(store),
			ledger:  sqlite.NewLedgerRepository(store),
			expense: sqlite.NewExpenseRepository(store),
			close:   store.Close,
		}, nil
	default:
		return &repositories{
			catalog: memory.NewCatalogRepository(),
			sales:   memory.NewSaleRepository(),
			ledger:  memory.NewLedgerRepository(),
			expense: memory.NewExpenseRepository(),
			close:   func() error { return nil },
		}, nil
	}
}

func runServe(rootOpts *RootOptions) error {
	cfg, err := config.Load(rootOpts.ConfigPath)
	if err != nil {
		return err
	}

	baseLogger := logging.MustNewLogger(cfg.Service, cfg.Env)
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	repos, err := openRepositories(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = repos.close() }()

	usecaseRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "usecase_requests_total",
			Help: "Total number of use case invocations.",
		},
		[]string{"use_case", "outcome"},
	)
	usecaseDurations := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "usecase_duration_seconds",
			Help:    "Duration of use case execution in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"use_case"},
	)
	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)
	httpDurations := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP request handling in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	stockLow := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_low_total",
			Help: "Count of low-stock observations after sales.",
		},
		[]string{"product"},
	)
	prometheus.MustRegister(usecaseRequests, usecaseDurations, httpRequests, httpDurations, stockLow)

	idGenerator := id.NewUUIDGenerator()

	eventBus := bus.New(baseLogger)
	eventBus.Start(context.Background())
	defer eventBus.Stop()

	watcher := stockwatch.New(eventBus, repos.catalog, cfg.LowStockThreshold, stockLow, baseLogger)
	watcher.Start()

	catalogService := appcatalog.NewService(repos.catalog, idGenerator)
	checkoutService := appcheckout.NewService(repos.catalog, repos.sales, eventBus, idGenerator, usecaseRequests, usecaseDurations)
	ledgerService := appledger.NewService(repos.ledger, idGenerator, usecaseRequests, usecaseDurations)
	expenseService := appexpense.NewService(repos.expense, idGenerator)

	sessionCart := domaincart.New()

	handler := httppresentation.NewHandler(
		catalogService,
		checkoutService,
		ledgerService,
		expenseService,
		sessionCart,
		receipt.Header{
			StoreName: cfg.StoreName,
			Address:   cfg.StoreAddress,
			Phone:     cfg.StorePhone,
		},
		baseLogger,
		&httppresentation.Metrics{Requests: httpRequests, Durations: httpDurations},
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", handler.Router())

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("http_server_start",
			zap.String("addr", server.Addr),
			zap.String("storage_driver", cfg.StorageDriver),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Error("http_server_error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("http_server_shutdown_error", zap.Error(err))
		return err
	}
	baseLogger.Info("http_server_stopped")
	return nil
}
