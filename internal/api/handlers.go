package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dealhound/dealhound/internal/app/jobs"
	"github.com/dealhound/dealhound/internal/services"
	apperrors "github.com/dealhound/dealhound/pkg/errors"
	"github.com/dealhound/dealhound/pkg/logger"
	"github.com/dealhound/dealhound/pkg/response"
)

// DealsHandler serves classified listings and the manual refresh trigger.
type DealsHandler struct {
	deals   *services.DealCache
	refresh *jobs.RefreshJob
	log     *zap.Logger
}

// NewDealsHandler wires the handler.
func NewDealsHandler(deals *services.DealCache, refresh *jobs.RefreshJob) *DealsHandler {
	return &DealsHandler{
		deals:   deals,
		refresh: refresh,
		log:     logger.WithModule("api"),
	}
}

// dealsQuery binds the GET /api/deals query string.
type dealsQuery struct {
	Days      int  `form:"days"`
	Limit     int  `form:"limit"`
	SkipCache bool `form:"skip_cache"`
	Min       int  `form:"min"`
}

// GetDeals serves category-grouped listings. When the result falls below the
// requested minimum, a refresh runs and the lookup retries once against the
// durable layer.
func (h *DealsHandler) GetDeals(c *gin.Context) {
	var query dealsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, apperrors.NewBadRequest("invalid query parameters"))
		return
	}

	opts := services.CachedItemsOptions{
		Days:          query.Days,
		Limit:         query.Limit,
		SkipEphemeral: query.SkipCache,
		MinRequired:   query.Min,
	}

	result, err := h.deals.GetCachedItems(c.Request.Context(), opts)
	if err != nil {
		response.Error(c, err)
		return
	}

	if opts.MinRequired > 0 && result.Count < opts.MinRequired {
		h.log.Info("result below minimum; triggering refresh",
			zap.Int("count", result.Count), zap.Int("min", opts.MinRequired))

		if _, err := h.refresh.Run(c.Request.Context()); err != nil {
			h.log.Warn("refresh-and-retry run failed", zap.Error(err))
		}

		opts.SkipEphemeral = true
		retried, err := h.deals.GetCachedItems(c.Request.Context(), opts)
		if err != nil {
			response.Error(c, err)
			return
		}
		result = retried
	}

	response.SuccessWithMeta(c, http.StatusOK, result.Items, &response.Meta{
		Count:  result.Count,
		Source: result.Source,
	})
}

// TriggerRefresh runs the refresh job on demand. A run already in progress
// yields a skipped outcome, not an error.
func (h *DealsHandler) TriggerRefresh(c *gin.Context) {
	stats, err := h.refresh.Run(c.Request.Context())
	if err != nil {
		h.log.Warn("manual refresh failed", zap.Error(err))
		response.Error(c, apperrors.Wrap(err, "refresh run failed"))
		return
	}

	status := http.StatusOK
	if stats.Skipped {
		status = http.StatusAccepted
	}
	response.Success(c, status, stats)
}

// Health reports process liveness.
func Health(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"status": "ok"})
}
