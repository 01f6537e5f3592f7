package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/printmart/catalog-ingest/internal/application/ingest"
	"github.com/printmart/catalog-ingest/internal/infrastructure/cache"
	"github.com/printmart/catalog-ingest/internal/infrastructure/config"
	"github.com/printmart/catalog-ingest/internal/infrastructure/logger"
	"github.com/printmart/catalog-ingest/internal/infrastructure/migration"
	"github.com/printmart/catalog-ingest/internal/infrastructure/persistence"
	"github.com/printmart/catalog-ingest/internal/infrastructure/vendorapi"

	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		limit          int
		productID      string
		dryRun         bool
		storeCodes     []string
		workers        int
		logLevel       string
		migrationsPath string
	)

	pflag.IntVar(&limit, "limit", 0, "Cap discovered product count before processing (0 = no cap)")
	pflag.StringVar(&productID, "productId", "", "Process exactly one product, bypassing discovery")
	pflag.BoolVar(&dryRun, "dry-run", false, "Fetch and classify but skip all database writes")
	pflag.StringSliceVar(&storeCodes, "storeCodes", nil, "Override configured store codes (comma-separated)")
	pflag.IntVar(&workers, "workers", 0, "Override configured fetch concurrency")
	pflag.StringVar(&logLevel, "log-level", "", "Override configured log level")
	pflag.StringVar(&migrationsPath, "migrations", "migrations", "Path to migrations directory")
	pflag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	if err := cfg.Validate(); err != nil {
		log.Error("Invalid configuration", zap.Error(err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := vendorapi.NewClient(&vendorapi.Config{
		ClientID:     cfg.Vendor.ClientID,
		ClientSecret: cfg.Vendor.ClientSecret,
		Audience:     cfg.Vendor.Audience,
		APIBaseURL:   cfg.Vendor.APIBase,
		AuthURL:      cfg.Vendor.AuthURL,
		Locale:       cfg.Vendor.Locale,
		Timeout:      cfg.Vendor.Timeout,
		MaxAttempts:  cfg.Vendor.MaxAttempts,
		BackoffBase:  cfg.Vendor.BackoffBase,
		RequestDelay: cfg.Vendor.RequestDelay,
	}, log)
	if err != nil {
		log.Error("Failed to create vendor client", zap.Error(err))
		return 1
	}

	var repo *persistence.GormCatalogRepository
	if !dryRun {
		gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
		db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
		if err != nil {
			log.Error("Failed to connect to database", zap.Error(err))
			return 1
		}
		defer func() {
			_ = db.Close()
		}()

		if err := migrateUp(cfg, migrationsPath, log); err != nil {
			log.Error("Failed to apply migrations", zap.Error(err))
			return 1
		}
		repo = persistence.NewGormCatalogRepository(db.DB)
	}

	detailCache, err := openCache(cfg)
	if err != nil {
		log.Warn("Detail cache unavailable, continuing without it", zap.Error(err))
		detailCache = cache.NoopDetailCache{}
	}
	defer func() {
		_ = detailCache.Close()
	}()

	svc := ingest.NewService(client, repo, detailCache, log)
	report, err := svc.Run(ctx, ingest.Options{
		Limit:      limit,
		ProductID:  productID,
		DryRun:     dryRun,
		StoreCodes: pickStoreCodes(storeCodes, cfg.Ingest.StoreCodes),
		Workers:    pickWorkers(workers, cfg.Ingest.Workers),
	})
	if err != nil {
		log.Error("Ingest aborted", zap.Error(err))
		return 1
	}

	report.Log(log)
	return report.ExitCode()
}

// migrateUp brings the schema up to date before the first write.
func migrateUp(cfg *config.Config, migrationsPath string, log *zap.Logger) error {
	m, err := migration.NewFromURL(cfg.Database.DSN(), migrationsPath, log)
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up()
}

func openCache(cfg *config.Config) (cache.DetailCache, error) {
	if cfg.Redis.Addr == "" {
		return cache.NoopDetailCache{}, nil
	}
	return cache.NewRedisDetailCache(cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TTL:      cfg.Redis.TTL,
	})
}

func pickStoreCodes(flagCodes, cfgCodes []string) []string {
	if len(flagCodes) > 0 {
		return flagCodes
	}
	return cfgCodes
}

func pickWorkers(flagWorkers, cfgWorkers int) int {
	if flagWorkers > 0 {
		return flagWorkers
	}
	return cfgWorkers
}
