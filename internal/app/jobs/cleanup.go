package jobs

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/dealhound/dealhound/internal/cache"
	"github.com/dealhound/dealhound/pkg/logger"
	"github.com/dealhound/dealhound/pkg/metrics"
)

const (
	defaultCleanupSpec       = "@hourly"
	defaultCleanupExpiration = 24 * time.Hour
)

// CleanupConfig tunes the cleanup job.
type CleanupConfig struct {
	// Schedule is a cron expression driving periodic sweeps.
	Schedule string
	// Expiration is the age beyond which ephemeral entries are purged.
	Expiration time.Duration
}

// CleanupJob periodically purges expired ephemeral cache entries. It is
// guarded like the refresh job so overlapping sweeps cannot run, and it
// performs one sweep immediately at start.
type CleanupJob struct {
	store   cache.Store
	cfg     CleanupConfig
	cron    *cron.Cron
	running atomic.Bool
	log     *zap.Logger
}

// CleanupOption customises the job.
type CleanupOption func(*CleanupJob)

// WithCleanupCron injects a preconfigured cron instance, primarily for testing.
func WithCleanupCron(c *cron.Cron) CleanupOption {
	return func(j *CleanupJob) {
		if c != nil {
			j.cron = c
		}
	}
}

// NewCleanupJob constructs the job with defaults filled in.
func NewCleanupJob(store cache.Store, cfg CleanupConfig, opts ...CleanupOption) *CleanupJob {
	if cfg.Schedule == "" {
		cfg.Schedule = defaultCleanupSpec
	}
	if cfg.Expiration <= 0 {
		cfg.Expiration = defaultCleanupExpiration
	}

	job := &CleanupJob{
		store: store,
		cfg:   cfg,
		log:   logger.WithModule("cleanup"),
	}
	for _, opt := range opts {
		opt(job)
	}
	if job.cron == nil {
		job.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return job
}

// Start sweeps once immediately, registers the cron entry, and launches the
// scheduler.
func (j *CleanupJob) Start() error {
	if _, err := j.Run(context.Background()); err != nil {
		j.log.Warn("initial cleanup failed", zap.Error(err))
	}

	if _, err := j.cron.AddFunc(j.cfg.Schedule, func() {
		if _, err := j.Run(context.Background()); err != nil {
			j.log.Warn("scheduled cleanup failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("jobs: schedule cleanup: %w", err)
	}
	j.cron.Start()
	return nil
}

// Stop halts the scheduler, waiting for a running sweep to complete.
func (j *CleanupJob) Stop() context.Context {
	return j.cron.Stop()
}

// Run executes one sweep. An invocation that finds the run-flag held is a
// no-op; the flag is restored on every exit path.
func (j *CleanupJob) Run(ctx context.Context) (int64, error) {
	if !j.running.CompareAndSwap(false, true) {
		j.log.Info("cleanup already running; skipping")
		return 0, nil
	}
	defer j.running.Store(false)

	removed, err := j.store.Sweep(ctx, j.cfg.Expiration)
	if err != nil {
		return 0, fmt.Errorf("jobs: cleanup sweep: %w", err)
	}

	metrics.CleanupSweeps.Add(float64(removed))
	if removed > 0 {
		j.log.Info("cleanup sweep complete", zap.Int64("removed", removed))
	}
	return removed, nil
}
