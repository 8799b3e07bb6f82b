// Package api exposes the aggregator over HTTP.
package api

import (
	"context"
	"net/http"

	"news_aggregator/internal/logger"
	"news_aggregator/internal/models"

	"github.com/gin-gonic/gin"
)

// ItemsService is the cache-fronted aggregation the handlers serve.
type ItemsService interface {
	GetCachedOrRefresh(ctx context.Context, forceRefresh bool, window *models.PageWindow) models.AggregationResult
	Invalidate(ctx context.Context) error
}

type ItemsHandler struct {
	svc          ItemsService
	defaultLimit int
	log          logger.Logger
}

// NewItemsHandler returns handlers that use defaultLimit when a request gives a
// list-page offset without a limit.
func NewItemsHandler(svc ItemsService, defaultLimit int, log logger.Logger) *ItemsHandler {
	return &ItemsHandler{svc: svc, defaultLimit: defaultLimit, log: log}
}

// GetItems handles GET /api/items. It serves the cached result when fresh.
func (h *ItemsHandler) GetItems(c *gin.Context) {
	window := ParseListPageParams(c.Request.URL.Query(), h.defaultLimit)
	c.JSON(http.StatusOK, h.svc.GetCachedOrRefresh(c.Request.Context(), false, window))
}

// Sync handles POST /api/sync: it drops cached results and re-scrapes.
func (h *ItemsHandler) Sync(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.svc.Invalidate(ctx); err != nil {
		h.log.Warn("Cache invalidation failed", logger.Error(err))
	}

	window := ParseListPageParams(c.Request.URL.Query(), h.defaultLimit)
	c.JSON(http.StatusOK, h.svc.GetCachedOrRefresh(ctx, true, window))
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
