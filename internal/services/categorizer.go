package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/dealhound/dealhound/internal/classify"
	"github.com/dealhound/dealhound/internal/durable"
	"github.com/dealhound/dealhound/internal/fingerprint"
	"github.com/dealhound/dealhound/internal/models"
	apperrors "github.com/dealhound/dealhound/pkg/errors"
	"github.com/dealhound/dealhound/pkg/logger"
	"github.com/dealhound/dealhound/pkg/metrics"
)

// CategorizeOptions controls one pipeline invocation.
type CategorizeOptions struct {
	// UseClassifier enables the hosted classifier; the keyword strategy is
	// always available as fallback.
	UseClassifier bool
	// Persist writes newly classified items to the durable store.
	Persist bool
}

// CategorizeResult is the merged outcome of one pipeline invocation.
type CategorizeResult struct {
	// Items maps categories to their listings; empty categories are dropped.
	Items models.CategoryMap
	// FromCache is true only when every input was already durable-cached.
	FromCache bool
	// CachedCount and ClassifiedCount partition the inputs.
	CachedCount     int
	ClassifiedCount int
	// NewlyPersisted counts records actually written this invocation.
	NewlyPersisted int
}

// Categorizer partitions an item set into cached and uncached, classifies the
// uncached ones, persists new classifications, and merges the results. It
// owns write sequencing into the durable store for newly classified items and
// never touches the ephemeral cache.
type Categorizer struct {
	store    DurableStore
	primary  classify.Strategy
	keywords classify.Strategy
	now      func() time.Time
	log      *zap.Logger
}

// NewCategorizer wires the pipeline. primary may be nil, in which case the
// keyword strategy serves every request regardless of options.
func NewCategorizer(store DurableStore, primary classify.Strategy) *Categorizer {
	keywords := classify.NewKeywordStrategy()
	if primary == nil {
		primary = keywords
	}
	return &Categorizer{
		store:    store,
		primary:  primary,
		keywords: keywords,
		now:      time.Now,
		log:      logger.WithModule("categorizer"),
	}
}

// WithClock overrides the write-timestamp clock, primarily for tests.
func (c *Categorizer) WithClock(now func() time.Time) *Categorizer {
	if now != nil {
		c.now = now
	}
	return c
}

// CategorizeItems runs the lookup → classify → persist pipeline over raws.
// Cache lookup always precedes classification, which always precedes
// persistence. Per-record persistence failures reduce the persisted count but
// never abort classification results already computed.
func (c *Categorizer) CategorizeItems(ctx context.Context, raws []models.RawItem, opts CategorizeOptions) (CategorizeResult, error) {
	result := CategorizeResult{Items: models.CategoryMap{}}
	if len(raws) == 0 {
		result.FromCache = true
		return result, nil
	}

	ids := make([]string, len(raws))
	for i, raw := range raws {
		ids[i] = fingerprint.ForLink(raw.Link)
	}

	cachedByID := c.lookupCached(ctx, ids)

	var uncached []models.RawItem
	for i, raw := range raws {
		if record, ok := cachedByID[ids[i]]; ok {
			item := record.Item()
			result.Items[item.Category] = append(result.Items[item.Category], item)
			result.CachedCount++
			continue
		}
		uncached = append(uncached, raw)
	}

	if len(uncached) == 0 {
		result.FromCache = true
		return result, nil
	}

	strategy := c.keywords
	if opts.UseClassifier {
		strategy = c.primary
	}

	newItems := make([]models.Item, 0, len(uncached))
	for _, raw := range uncached {
		category, err := strategy.Classify(ctx, raw)
		if err != nil || !category.Valid() {
			// The fallback chain is expected to be total; guard anyway.
			category = models.CategoryOther
		}
		newItems = append(newItems, models.Item{
			ID:            fingerprint.ForLink(raw.Link),
			Title:         raw.Title,
			Description:   raw.Description,
			Price:         raw.Price,
			ShippingPrice: raw.ShippingPrice,
			Image:         raw.Image,
			Link:          raw.Link,
			Category:      category,
			CreatedAt:     c.now().UTC(),
		})
		result.ClassifiedCount++
	}
	metrics.ItemsCategorized.Add(float64(len(newItems)))

	if opts.Persist {
		result.NewlyPersisted = c.persist(ctx, newItems)
	}

	for _, item := range newItems {
		result.Items[item.Category] = append(result.Items[item.Category], item)
	}

	return result, nil
}

// lookupCached queries the durable store for existing classifications. A
// store that is not configured, or whose sub-batches fail, simply contributes
// fewer cached records; the affected candidates are re-classified instead of
// being dropped.
func (c *Categorizer) lookupCached(ctx context.Context, ids []string) map[string]durable.Record {
	records, err := c.store.QueryByIDs(ctx, ids)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotConfigured) {
			c.log.Debug("durable store not configured; classifying everything")
		} else {
			c.log.Warn("durable lookup failed; classifying everything", zap.Error(err))
		}
		return nil
	}

	byID := make(map[string]durable.Record, len(records))
	for _, record := range records {
		byID[record.ArticleID] = record
	}
	return byID
}

func (c *Categorizer) persist(ctx context.Context, items []models.Item) int {
	if len(items) == 0 {
		return 0
	}

	records := make([]durable.Record, len(items))
	for i, item := range items {
		records[i] = durable.FromItem(item)
	}

	persisted, err := c.store.UpsertRecords(ctx, records)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotConfigured) {
			c.log.Debug("durable store not configured; skipping persistence")
		} else {
			c.log.Warn("persistence failed", zap.Error(err))
		}
		return 0
	}

	metrics.ItemsPersisted.Add(float64(persisted))
	return persisted
}
