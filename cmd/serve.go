package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"news_aggregator/internal/api"
	"news_aggregator/internal/cache"
	"news_aggregator/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

func newServeCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve aggregated items over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.serve(cmd.Context())
		},
	}
}

func (c *cli) serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := buildDeps(ctx, c.cfg, c.log)
	if err != nil {
		return err
	}
	defer d.close()

	if !c.cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	server := &http.Server{
		Addr:         c.cfg.Server.Address,
		Handler:      api.NewRouter(d.service, c.cfg.Logic.DefaultListPageLimit, c.log),
		ReadTimeout:  c.cfg.Server.ReadTimeout,
		WriteTimeout: c.cfg.Server.WriteTimeout,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	scheduler, err := startScheduler(ctx, c.cfg.Schedule.Sync, d.service, c.log)
	if err != nil {
		return err
	}

	errChan := make(chan error, 1)
	go func() {
		c.log.Info("Starting HTTP server", logger.String("addr", server.Addr), logger.Int("sources", len(d.aggregator.Sources())))
		if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errChan <- serveErr
		}
	}()

	select {
	case serveErr := <-errChan:
		return fmt.Errorf("server error: %w", serveErr)
	case <-ctx.Done():
	}

	c.log.Info("Shutdown signal received")
	if scheduler != nil {
		<-scheduler.Stop().Done()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	c.log.Info("Server stopped")
	return nil
}

// startScheduler runs a forced windowless refresh on spec. An empty spec
// disables it.
func startScheduler(ctx context.Context, spec string, svc *cache.Service, log logger.Logger) (*cron.Cron, error) {
	if spec == "" {
		return nil, nil
	}

	scheduler := cron.New()
	_, err := scheduler.AddFunc(spec, func() {
		if err := svc.Invalidate(ctx); err != nil {
			log.Warn("Cache invalidation failed", logger.Error(err))
		}
		result := svc.GetCachedOrRefresh(ctx, true, nil)
		log.Info("Scheduled sync finished",
			logger.Int("items", len(result.Items)),
			logger.Int("errors", len(result.Errors)),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid sync schedule %q: %w", spec, err)
	}

	scheduler.Start()
	log.Info("Scheduled sync enabled", logger.String("schedule", spec))
	return scheduler, nil
}
