package api

import (
	"strings"
	"time"

	"news_aggregator/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the gin engine with every route registered.
func NewRouter(svc ItemsService, defaultLimit int, log logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), loggerMiddleware(log))

	items := NewItemsHandler(svc, defaultLimit, log)

	router.GET("/healthz", health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.GET("/items", items.GetItems)
	api.POST("/sync", items.Sync)

	return router
}

func loggerMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		fields := []logger.Field{
			logger.String("method", c.Request.Method),
			logger.String("path", path),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("duration", time.Since(start)),
			logger.String("client_ip", c.ClientIP()),
		}
		if query != "" {
			fields = append(fields, logger.String("query", query))
		}

		// Probes and scrapes are noisy.
		if path == "/metrics" || strings.HasPrefix(path, "/health") {
			log.Debug("HTTP request", fields...)
			return
		}
		log.Info("HTTP request", fields...)
	}
}
