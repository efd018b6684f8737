package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quilang/hardpos/internal/config"
	domaincatalog "github.com/quilang/hardpos/internal/domain/catalog"
	domainledger "github.com/quilang/hardpos/internal/domain/ledger"
	"github.com/quilang/hardpos/internal/infrastructure/sqlite"
)

// seedProduct mirrors the store's opening inventory. Prices are in
// centavos.
type seedProduct struct {
	id       string
	name     string
	category string
	price    int64
	stock    int
	unit     string
}

var seedProducts = []seedProduct{
	{"1", "Portland Cement (40kg)", "Masonry", 23000, 150, "bag"},
	{"2", "Deformed Bar 10mm", "Steel", 18500, 300, "pc"},
	{"3", "Deformed Bar 12mm", "Steel", 28000, 200, "pc"},
	{"4", "G.I. Sheet Corrugated #26", "Roofing", 45000, 45, "pc"},
	{"5", "Marine Plywood 1/4\"", "Wood", 38000, 80, "pc"},
	{"6", "Good Lumber 2x2x12", "Wood", 18000, 120, "pc"},
	{"7", "Poco Sand", "Aggregates", 120000, 10, "cu.m"},
	{"8", "Boysen Permacoat White", "Paint", 245000, 12, "pail"},
	{"9", "Paint Roller 7\"", "Tools", 8500, 50, "pc"},
	{"10", "Claw Hammer (Stanley)", "Tools", 45000, 15, "pc"},
}

type seedCustomer struct {
	id      string
	name    string
	contact string
	address string
}

var seedCustomers = []seedCustomer{
	{"c1", "Arch. Mike Santos", "09171234567", "Tuguegarao City"},
	{"c2", "Engr. Jojo Garcia", "09187654321", "Solana, Cagayan"},
}

func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the initial catalog and customers into the SQLite store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, rootOpts)
		},
	}
}

func runSeed(cmd *cobra.Command, rootOpts *RootOptions) error {
	cfg, err := config.Load(rootOpts.ConfigPath)
	if err != nil {
		return err
	}
	if cfg.StorageDriver != config.DriverSQLite {
		return fmt.Errorf("seed requires the sqlite storage driver, got %q", cfg.StorageDriver)
	}

	store, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		return fmt.Errorf("open sqlite store: %w", err)
	}
	defer store.Close()

	ctx := context.Background()
	catalogRepo := sqlite.NewCatalogRepository(store)
	ledgerRepo := sqlite.NewLedgerRepository(store)

	for _, sp := range seedProducts {
		p, err := domaincatalog.New(sp.id, sp.name, sp.category, sp.price, sp.stock, sp.unit)
		if err != nil {
			return fmt.Errorf("seed product %s: %w", sp.id, err)
		}
		if err := catalogRepo.Upsert(ctx, p); err != nil {
			return fmt.Errorf("seed product %s: %w", sp.id, err)
		}
	}

	for _, sc := range seedCustomers {
		c, err := domainledger.NewCustomer(sc.id, sc.name, sc.contact, sc.address)
		if err != nil {
			return fmt.Errorf("seed customer %s: %w", sc.id, err)
		}
		err = ledgerRepo.CreateCustomer(ctx, c)
		if err != nil && !errors.Is(err, domainledger.ErrCustomerExists) {
			return fmt.Errorf("seed customer %s: %w", sc.id, err)
		}
	}

	cmd.Printf("seeded %d products and %d customers into %s\n",
		len(seedProducts), len(seedCustomers), cfg.SQLitePath)
	return nil
}
