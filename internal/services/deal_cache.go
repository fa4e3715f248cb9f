package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/dealhound/dealhound/internal/cache"
	"github.com/dealhound/dealhound/internal/fingerprint"
	"github.com/dealhound/dealhound/internal/models"
	apperrors "github.com/dealhound/dealhound/pkg/errors"
	"github.com/dealhound/dealhound/pkg/logger"
	"github.com/dealhound/dealhound/pkg/metrics"
)

// Result sources reported to callers.
const (
	SourceEphemeral = "ephemeral"
	SourceDurable   = "durable"
)

// DealCacheConfig bounds and tunes the orchestrator.
type DealCacheConfig struct {
	// MaxLimit is the hard row ceiling; requests above it are rejected before
	// any store access.
	MaxLimit int
	// DefaultDays and DefaultLimit fill unset request options.
	DefaultDays  int
	DefaultLimit int
	// TTL is the write-through lifetime of ephemeral entries.
	TTL time.Duration
}

// CachedItemsOptions shapes one lookup.
type CachedItemsOptions struct {
	Days          int
	Limit         int
	SkipEphemeral bool
	// MinRequired is evaluated by the caller: a result below it should
	// trigger a refresh-and-retry rather than returning sparse data.
	MinRequired int
}

// CachedItemsResult is a category-grouped read result tagged with its source.
type CachedItemsResult struct {
	Items  models.CategoryMap `json:"items"`
	Count  int                `json:"count"`
	Source string             `json:"source"`
}

// DealCache composes the ephemeral and durable lookups. It owns read/write
// sequencing against both cache layers.
type DealCache struct {
	ephemeral cache.Store
	durable   DurableStore
	cfg       DealCacheConfig
	log       *zap.Logger
}

// NewDealCache wires the orchestrator.
func NewDealCache(ephemeral cache.Store, store DurableStore, cfg DealCacheConfig) *DealCache {
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 1000
	}
	if cfg.DefaultDays <= 0 {
		cfg.DefaultDays = 7
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 100
	}
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}
	return &DealCache{
		ephemeral: ephemeral,
		durable:   store,
		cfg:       cfg,
		log:       logger.WithModule("dealcache"),
	}
}

// GetCachedItems serves classified items, fastest layer first. A missing
// durable store is fatal to the call; an ephemeral write-through failure only
// costs latency on the next request.
func (s *DealCache) GetCachedItems(ctx context.Context, opts CachedItemsOptions) (*CachedItemsResult, error) {
	if opts.Days <= 0 {
		opts.Days = s.cfg.DefaultDays
	}
	if opts.Limit <= 0 {
		opts.Limit = s.cfg.DefaultLimit
	}
	if opts.Limit > s.cfg.MaxLimit {
		return nil, apperrors.ErrLimitExceeded.WithInternal(
			fmt.Errorf("requested %d, ceiling %d", opts.Limit, s.cfg.MaxLimit))
	}

	key := fingerprint.ForParams(map[string]string{
		"days":  strconv.Itoa(opts.Days),
		"limit": strconv.Itoa(opts.Limit),
	})

	if !opts.SkipEphemeral {
		if result := s.readEphemeral(ctx, key); result != nil {
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			return result, nil
		}
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	records, err := s.durable.QueryRecent(ctx, opts.Days, opts.Limit)
	if err != nil {
		return nil, err
	}

	result := &CachedItemsResult{
		Items:  models.CategoryMap{},
		Count:  len(records),
		Source: SourceDurable,
	}
	for _, record := range records {
		item := record.Item()
		result.Items[item.Category] = append(result.Items[item.Category], item)
	}

	if result.Count > 0 && !opts.SkipEphemeral {
		s.writeThrough(ctx, key, result)
	}

	return result, nil
}

func (s *DealCache) readEphemeral(ctx context.Context, key string) *CachedItemsResult {
	payload, ok, err := s.ephemeral.Get(ctx, key)
	if err != nil {
		s.log.Warn("ephemeral read failed", zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}

	var result CachedItemsResult
	if err := json.Unmarshal(payload, &result); err != nil {
		s.log.Warn("ephemeral payload corrupt; ignoring", zap.Error(err))
		return nil
	}

	result.Source = SourceEphemeral
	return &result
}

func (s *DealCache) writeThrough(ctx context.Context, key string, result *CachedItemsResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		s.log.Warn("ephemeral write-through encode failed", zap.Error(err))
		return
	}
	if err := s.ephemeral.Set(ctx, key, payload, s.cfg.TTL); err != nil {
		s.log.Warn("ephemeral write-through failed", zap.Error(err))
	}
}
