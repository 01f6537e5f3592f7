package ingest

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/printmart/catalog-ingest/internal/domain/catalog"
	"github.com/printmart/catalog-ingest/internal/infrastructure/cache"
)

// VendorClient is the slice of the vendor API the pipeline needs.
type VendorClient interface {
	Authenticate(ctx context.Context) (string, error)
	ListProducts(ctx context.Context) ([]catalog.ProductRef, error)
	FetchDetail(ctx context.Context, productID, storeCode string) (json.RawMessage, error)
}

// Options are the per-run knobs, populated from CLI flags and config.
type Options struct {
	// Limit caps the discovered product count before processing. Zero means
	// no cap.
	Limit int
	// ProductID processes exactly one product, bypassing discovery.
	ProductID string
	// DryRun performs discovery, fetch and classification but skips every
	// database write.
	DryRun bool
	// StoreCodes are the storefronts to ingest for each product.
	StoreCodes []string
	// Workers is the fetch concurrency. Values below 1 degrade to 1. Work is
	// partitioned by product so no two workers ever touch the same
	// (product, store) key.
	Workers int
}

// Service drives one catalog ingest run end to end.
type Service struct {
	client VendorClient
	repo   catalog.IngestRepository
	cache  cache.DetailCache
	logger *zap.Logger
}

// NewService creates an ingest service. A nil cache disables detail caching.
func NewService(client VendorClient, repo catalog.IngestRepository, detailCache cache.DetailCache, logger *zap.Logger) *Service {
	if detailCache == nil {
		detailCache = cache.NoopDetailCache{}
	}
	return &Service{
		client: client,
		repo:   repo,
		cache:  detailCache,
		logger: logger.Named("ingest"),
	}
}

// Run authenticates, discovers the catalog, and processes every
// (product, store) pair. Fatal preconditions (auth failure, empty catalog)
// return an error; per-pair problems are absorbed into the report.
func (s *Service) Run(ctx context.Context, opts Options) (*Report, error) {
	if len(opts.StoreCodes) == 0 {
		return nil, fmt.Errorf("ingest: no store codes configured")
	}

	if _, err := s.client.Authenticate(ctx); err != nil {
		return nil, err
	}

	refs, err := s.discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	if opts.Limit > 0 && len(refs) > opts.Limit {
		refs = refs[:opts.Limit]
	}

	s.logger.Info("starting ingest",
		zap.Int("products", len(refs)),
		zap.Strings("store_codes", opts.StoreCodes),
		zap.Bool("dry_run", opts.DryRun),
		zap.Int("workers", workerCount(opts.Workers)),
	)

	report := NewReport()
	s.process(ctx, refs, opts, report)
	return report, nil
}

func (s *Service) discover(ctx context.Context, opts Options) ([]catalog.ProductRef, error) {
	if opts.ProductID != "" {
		raw, _ := json.Marshal(map[string]string{"id": opts.ProductID})
		return []catalog.ProductRef{{ID: opts.ProductID, RawJSON: raw}}, nil
	}
	return s.client.ListProducts(ctx)
}

func workerCount(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// process fans products out to a bounded worker pool. Each product is owned
// by exactly one worker for its whole lifetime, so pair transactions for a
// given key never race.
func (s *Service) process(ctx context.Context, refs []catalog.ProductRef, opts Options, report *Report) {
	work := make(chan catalog.ProductRef)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < workerCount(opts.Workers); i++ {
		g.Go(func() error {
			for ref := range work {
				s.processProduct(ctx, ref, opts, report)
			}
			return nil
		})
	}

feed:
	for _, ref := range refs {
		select {
		case work <- ref:
		case <-ctx.Done():
			break feed
		}
	}
	close(work)
	_ = g.Wait()

	if ctx.Err() != nil {
		s.logger.Warn("run cancelled, remaining products not processed")
	}
}

// processProduct walks every configured store code for one product.
func (s *Service) processProduct(ctx context.Context, ref catalog.ProductRef, opts Options, report *Report) {
	for _, storeCode := range opts.StoreCodes {
		if ctx.Err() != nil {
			return
		}
		s.processPair(ctx, ref, storeCode, opts.DryRun, report)
	}
}

// processPair runs the fetch, classify, persist sequence for one pair. Every
// outcome lands in the report; nothing escapes to abort the run.
func (s *Service) processPair(ctx context.Context, ref catalog.ProductRef, storeCode string, dryRun bool, report *Report) {
	report.Attempt()
	log := s.logger.With(zap.String("product_id", ref.ID), zap.String("store_code", storeCode))

	payload, err := s.fetchPayload(ctx, ref.ID, storeCode)
	if err != nil {
		log.Error("detail fetch failed", zap.Error(err))
		report.Fail(ref.ID, storeCode, err)
		return
	}
	if payload == nil {
		log.Info("no detail for pair, skipping")
		report.Skip()
		return
	}

	detail := catalog.Classify(payload)
	if detail.Family == catalog.FamilyUnknown {
		log.Warn("unrecognized detail payload shape, skipping")
		report.Skip()
		return
	}

	if dryRun {
		log.Info("dry run, skipping persistence", zap.String("family", string(detail.Family)))
		report.Success(nil)
		return
	}

	counts, err := s.persist(ctx, ref, storeCode, detail)
	if err != nil {
		log.Error("persistence failed", zap.Error(err))
		report.Fail(ref.ID, storeCode, err)
		return
	}

	log.Info("pair persisted", zap.String("family", string(detail.Family)))
	report.Success(counts)
}

// fetchPayload consults the cache before going to the vendor. Cache problems
// are logged and ignored.
func (s *Service) fetchPayload(ctx context.Context, productID, storeCode string) (json.RawMessage, error) {
	if cached, found, err := s.cache.Get(ctx, productID, storeCode); err != nil {
		s.logger.Warn("detail cache read failed", zap.Error(err))
	} else if found {
		return cached, nil
	}

	payload, err := s.client.FetchDetail(ctx, productID, storeCode)
	if err != nil || payload == nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, productID, storeCode, payload); err != nil {
		s.logger.Warn("detail cache write failed", zap.Error(err))
	}
	return payload, nil
}

// persist writes the product row and then the pair's family rows.
func (s *Service) persist(ctx context.Context, ref catalog.ProductRef, storeCode string, detail catalog.Detail) (catalog.PersistResult, error) {
	counts, err := s.repo.UpsertProduct(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("upsert product %s: %w", ref.ID, err)
	}
	if counts == nil {
		counts = make(catalog.PersistResult)
	}

	var familyCounts catalog.PersistResult
	switch detail.Family {
	case catalog.FamilyRegular:
		familyCounts, err = s.repo.PersistRegular(ctx, ref.ID, storeCode, detail)
	case catalog.FamilyRollLabel:
		familyCounts, err = s.repo.PersistRollLabel(ctx, ref.ID, storeCode, detail)
	default:
		return nil, fmt.Errorf("unexpected family %q", detail.Family)
	}
	if err != nil {
		return nil, err
	}

	counts.Merge(familyCounts)
	return counts, nil
}
