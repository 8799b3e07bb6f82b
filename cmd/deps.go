package main

import (
	"context"
	"fmt"

	"news_aggregator/internal/app"
	"news_aggregator/internal/cache"
	"news_aggregator/internal/config"
	"news_aggregator/internal/fetcher"
	"news_aggregator/internal/llm"
	"news_aggregator/internal/logger"
	"news_aggregator/internal/summarize"
)

type deps struct {
	aggregator *app.Aggregator
	service    *cache.Service
	close      func()
}

// buildDeps wires the pipeline. Cache refreshes run under ctx.
func buildDeps(ctx context.Context, cfg *config.Config, log logger.Logger) (*deps, error) {
	completer, err := llm.NewFromConfig(cfg.LLM, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	f := fetcher.New(log, cfg.Logic.UserAgent)
	summarizer := summarize.New(completer, cfg.Summarize, log)
	aggregator := app.NewAggregator(cfg.Sources, app.SpiderFactory(f, summarizer, cfg.Logic, log), log)

	window, err := cache.NewWindow(cfg.Cache.Size, cfg.Cache.TTL, nil)
	if err != nil {
		return nil, err
	}

	store, closeStore, err := buildStore(cfg, log)
	if err != nil {
		return nil, err
	}

	return &deps{
		aggregator: aggregator,
		service:    cache.NewService(aggregator, window, store, log, cache.WithBaseContext(ctx)),
		close:      closeStore,
	}, nil
}

func buildStore(cfg *config.Config, log logger.Logger) (cache.Store, func(), error) {
	if cfg.Redis.Addr == "" {
		return cache.NewMemoryStore(cfg.Cache.StoreTTL, nil), func() {}, nil
	}

	client, err := cache.NewRedisClient(cache.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, nil, err
	}
	log.Info("Using Redis result store", logger.String("addr", cfg.Redis.Addr))

	closeFn := func() {
		if err := client.Close(); err != nil {
			log.Warn("Failed to close Redis client", logger.Error(err))
		}
	}
	return cache.NewRedisStore(client, cfg.Redis.KeyPrefix, cfg.Cache.StoreTTL), closeFn, nil
}
