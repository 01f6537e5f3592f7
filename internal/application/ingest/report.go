package ingest

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/printmart/catalog-ingest/internal/domain/catalog"
)

// Failure records why one (product, store) pair could not be ingested.
type Failure struct {
	ProductID string
	StoreCode string
	Message   string
}

// Report accumulates per-pair outcomes across all workers. Safe for
// concurrent use.
type Report struct {
	mu sync.Mutex

	Attempted int
	Succeeded int
	Skipped   int
	Failed    int
	Failures  []Failure
	Tables    catalog.PersistResult
	Started   time.Time
}

func NewReport() *Report {
	return &Report{
		Tables:  make(catalog.PersistResult),
		Started: time.Now(),
	}
}

// Attempt records that a pair entered the pipeline.
func (r *Report) Attempt() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Attempted++
}

// Success records a persisted pair and folds in its table counts. A nil
// counts map is allowed for dry runs.
func (r *Report) Success(counts catalog.PersistResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Succeeded++
	if counts != nil {
		r.Tables.Merge(counts)
	}
}

// Skip records a pair with no data or an unrecognized payload shape.
func (r *Report) Skip() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Skipped++
}

// Fail records a per-pair failure with its cause.
func (r *Report) Fail(productID, storeCode string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Failed++
	r.Failures = append(r.Failures, Failure{
		ProductID: productID,
		StoreCode: storeCode,
		Message:   err.Error(),
	})
}

// ExitCode is 1 when any pair failed. Skips alone keep the run green.
func (r *Report) ExitCode() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Failed > 0 {
		return 1
	}
	return 0
}

// Log emits the end-of-run summary.
func (r *Report) Log(logger *zap.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()

	logger.Info("ingest summary",
		zap.Int("attempted", r.Attempted),
		zap.Int("succeeded", r.Succeeded),
		zap.Int("skipped", r.Skipped),
		zap.Int("failed", r.Failed),
		zap.Duration("elapsed", time.Since(r.Started)),
	)
	for table, counts := range r.Tables {
		logger.Info("table counts",
			zap.String("table", table),
			zap.Int("inserted", counts.Inserted),
			zap.Int("updated", counts.Updated),
		)
	}
	for _, f := range r.Failures {
		logger.Error("pair failed",
			zap.String("product_id", f.ProductID),
			zap.String("store_code", f.StoreCode),
			zap.String("error", f.Message),
		)
	}
}
