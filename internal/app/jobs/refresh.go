// Package jobs hosts the background schedulers: the end-to-end refresh run
// and the ephemeral cache cleanup sweep. Each job is guarded by a run-flag so
// at most one execution is active; a skip never interrupts a running job.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/dealhound/dealhound/internal/models"
	"github.com/dealhound/dealhound/internal/scrape"
	"github.com/dealhound/dealhound/internal/services"
	"github.com/dealhound/dealhound/pkg/logger"
	"github.com/dealhound/dealhound/pkg/metrics"
)

// ErrNothingFetched reports a refresh run that produced zero items across all
// pages, or zero categorized items across all batches.
var ErrNothingFetched = errors.New("jobs: refresh produced no items")

const (
	defaultRefreshSpec    = "0 */6 * * *"
	defaultMaxPages       = 3
	defaultBatchSize      = 20
	defaultInterBatchWait = 2 * time.Second
)

// RefreshConfig tunes the refresh job.
type RefreshConfig struct {
	// Schedule is a cron expression driving periodic runs.
	Schedule string
	// MaxPages bounds the parallel page fetch.
	MaxPages int
	// BatchSize partitions the combined item set for sequential categorization.
	BatchSize int
	// InterBatchWait paces batches to avoid overloading the classifier/store.
	InterBatchWait time.Duration
	// UseClassifier enables the hosted classifier during refresh runs.
	UseClassifier bool
}

// RefreshStats aggregates counts across one run.
type RefreshStats struct {
	Skipped          bool `json:"skipped"`
	TotalFetched     int  `json:"totalFetched"`
	TotalCategorized int  `json:"totalCategorized"`
	FromCacheCount   int  `json:"fromCacheCount"`
	NewlyPersisted   int  `json:"newlyPersisted"`
	FailedPages      int  `json:"failedPages"`
}

// RefreshJob drives fetch → categorize → persist end-to-end.
type RefreshJob struct {
	fetcher     scrape.Fetcher
	categorizer *services.Categorizer
	cfg         RefreshConfig
	cron        *cron.Cron
	running     atomic.Bool
	sleep       func(ctx context.Context, d time.Duration)
	log         *zap.Logger
}

// RefreshOption customises the job.
type RefreshOption func(*RefreshJob)

// WithRefreshCron injects a preconfigured cron instance, primarily for testing.
func WithRefreshCron(c *cron.Cron) RefreshOption {
	return func(j *RefreshJob) {
		if c != nil {
			j.cron = c
		}
	}
}

// WithSleep overrides the inter-batch pause, primarily for testing.
func WithSleep(sleep func(ctx context.Context, d time.Duration)) RefreshOption {
	return func(j *RefreshJob) {
		if sleep != nil {
			j.sleep = sleep
		}
	}
}

// NewRefreshJob constructs the job with defaults filled in.
func NewRefreshJob(fetcher scrape.Fetcher, categorizer *services.Categorizer, cfg RefreshConfig, opts ...RefreshOption) *RefreshJob {
	if cfg.Schedule == "" {
		cfg.Schedule = defaultRefreshSpec
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = defaultMaxPages
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.InterBatchWait <= 0 {
		cfg.InterBatchWait = defaultInterBatchWait
	}

	job := &RefreshJob{
		fetcher:     fetcher,
		categorizer: categorizer,
		cfg:         cfg,
		sleep:       sleepWithContext,
		log:         logger.WithModule("refresh"),
	}
	for _, opt := range opts {
		opt(job)
	}
	if job.cron == nil {
		job.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return job
}

// Start registers the cron entry and launches the scheduler.
func (j *RefreshJob) Start() error {
	if _, err := j.cron.AddFunc(j.cfg.Schedule, func() {
		if _, err := j.Run(context.Background()); err != nil {
			j.log.Warn("scheduled refresh failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("jobs: schedule refresh: %w", err)
	}
	j.cron.Start()
	return nil
}

// Stop halts the scheduler, waiting for a running job to complete.
func (j *RefreshJob) Stop() context.Context {
	return j.cron.Stop()
}

// Run executes one refresh. A second invocation while one is active is a
// no-op reported via Skipped; the run-flag is restored on every exit path.
func (j *RefreshJob) Run(ctx context.Context) (RefreshStats, error) {
	if !j.running.CompareAndSwap(false, true) {
		j.log.Info("refresh already running; skipping")
		metrics.RefreshRuns.WithLabelValues("skipped").Inc()
		return RefreshStats{Skipped: true}, nil
	}
	defer j.running.Store(false)

	stats, err := j.run(ctx)
	if err != nil {
		metrics.RefreshRuns.WithLabelValues("failure").Inc()
		return stats, err
	}
	metrics.RefreshRuns.WithLabelValues("success").Inc()
	return stats, nil
}

func (j *RefreshJob) run(ctx context.Context) (RefreshStats, error) {
	var stats RefreshStats
	started := time.Now()

	items, failedPages := j.fetchPages(ctx)
	stats.TotalFetched = len(items)
	stats.FailedPages = failedPages
	metrics.ItemsFetched.Add(float64(len(items)))

	if len(items) == 0 {
		return stats, fmt.Errorf("%w: %d pages failed", ErrNothingFetched, failedPages)
	}

	batches := partition(items, j.cfg.BatchSize)
	for i, batch := range batches {
		result, err := j.categorizer.CategorizeItems(ctx, batch, services.CategorizeOptions{
			UseClassifier: j.cfg.UseClassifier,
			Persist:       true,
		})
		if err != nil {
			j.log.Warn("batch categorization failed",
				zap.Int("batch", i), zap.Int("size", len(batch)), zap.Error(err))
			continue
		}

		stats.TotalCategorized += result.CachedCount + result.ClassifiedCount
		stats.FromCacheCount += result.CachedCount
		stats.NewlyPersisted += result.NewlyPersisted

		if i < len(batches)-1 {
			j.sleep(ctx, j.cfg.InterBatchWait)
		}
	}

	if stats.TotalCategorized == 0 {
		return stats, fmt.Errorf("%w: no batch categorized", ErrNothingFetched)
	}

	j.log.Info("refresh complete",
		zap.Int("fetched", stats.TotalFetched),
		zap.Int("categorized", stats.TotalCategorized),
		zap.Int("from_cache", stats.FromCacheCount),
		zap.Int("persisted", stats.NewlyPersisted),
		zap.Int("failed_pages", stats.FailedPages),
		zap.Duration("took", time.Since(started)))
	return stats, nil
}

// fetchPages fetches all pages in parallel. A failing page contributes zero
// items rather than aborting the whole fetch; completion order is irrelevant.
func (j *RefreshJob) fetchPages(ctx context.Context) ([]models.RawItem, int) {
	var (
		mu     sync.Mutex
		items  []models.RawItem
		failed int
		wg     sync.WaitGroup
	)

	for page := 1; page <= j.cfg.MaxPages; page++ {
		wg.Add(1)
		go func(page int) {
			defer wg.Done()

			pageItems, err := j.fetcher.FetchPage(ctx, page)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				j.log.Warn("page fetch failed", zap.Int("page", page), zap.Error(err))
				return
			}
			items = append(items, pageItems...)
		}(page)
	}
	wg.Wait()

	return items, failed
}

func partition(items []models.RawItem, size int) [][]models.RawItem {
	if len(items) == 0 {
		return nil
	}
	batches := make([][]models.RawItem, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[start:end])
	}
	return batches
}

func sleepWithContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
