// Package classify assigns categories to raw listings. Classification is a
// pluggable strategy; the hosted classifier is always backed by the keyword
// strategy so a category is produced for every input.
package classify

import (
	"context"

	"go.uber.org/zap"

	"github.com/dealhound/dealhound/internal/models"
	"github.com/dealhound/dealhound/pkg/logger"
	"github.com/dealhound/dealhound/pkg/metrics"
)

// Strategy resolves a raw listing to a category.
type Strategy interface {
	Classify(ctx context.Context, item models.RawItem) (models.Category, error)
}

// FallbackStrategy tries the primary strategy and falls back to the secondary
// on any error or out-of-enumeration label. The secondary is expected to be
// total (the keyword strategy never fails), so Classify never returns an
// error to the pipeline.
type FallbackStrategy struct {
	primary   Strategy
	secondary Strategy
	log       *zap.Logger
}

// NewFallback composes two strategies. A nil primary degrades to the
// secondary alone.
func NewFallback(primary, secondary Strategy) *FallbackStrategy {
	return &FallbackStrategy{
		primary:   primary,
		secondary: secondary,
		log:       logger.WithModule("classify"),
	}
}

// Classify resolves a category, preferring the primary strategy.
func (f *FallbackStrategy) Classify(ctx context.Context, item models.RawItem) (models.Category, error) {
	if f.primary != nil {
		category, err := f.primary.Classify(ctx, item)
		if err == nil && category.Valid() {
			return category, nil
		}
		if err != nil {
			f.log.Debug("primary strategy failed; using keyword fallback",
				zap.String("title", item.Title), zap.Error(err))
		}
		metrics.ClassifierFallbacks.Inc()
	}

	return f.secondary.Classify(ctx, item)
}
