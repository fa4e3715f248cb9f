// Package api wires the HTTP surface: deals lookup, manual refresh, health,
// and metrics.
package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dealhound/dealhound/internal/app/jobs"
	"github.com/dealhound/dealhound/internal/middleware"
	"github.com/dealhound/dealhound/internal/services"
)

// NewRouter builds the gin engine and registers routes.
func NewRouter(deals *services.DealCache, refresh *jobs.RefreshJob) (*gin.Engine, error) {
	if deals == nil {
		return nil, fmt.Errorf("deal cache service must be provided")
	}
	if refresh == nil {
		return nil, fmt.Errorf("refresh job must be provided")
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(), middleware.Metrics())

	r.GET("/healthz", Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler := NewDealsHandler(deals, refresh)

	api := r.Group("/api")
	{
		api.GET("/deals", handler.GetDeals)
		api.POST("/refresh", handler.TriggerRefresh)
	}

	return r, nil
}
