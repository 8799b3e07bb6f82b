package cache

import (
	"context"

	"news_aggregator/internal/logger"
	"news_aggregator/internal/metrics"
	"news_aggregator/internal/models"

	"golang.org/x/sync/singleflight"
)

// Runner performs one aggregation run.
type Runner interface {
	Run(ctx context.Context, forceRefresh bool, window *models.PageWindow) models.AggregationResult
}

// Service fronts a Runner with the window cache and, for windowless runs, the
// long-lived store. Refreshes run under the service context rather than the
// caller's, since every caller joining a flight shares the result.
type Service struct {
	runner Runner
	window *Window
	store  Store
	group  singleflight.Group
	base   context.Context
	log    logger.Logger
}

type ServiceOption func(*Service)

// WithBaseContext sets the context refreshes run under. Cancelling it stops
// in-flight runs and keeps their partial results out of the cache.
func WithBaseContext(ctx context.Context) ServiceOption {
	return func(s *Service) {
		s.base = ctx
	}
}

func NewService(runner Runner, window *Window, store Store, log logger.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		runner: runner,
		window: window,
		store:  store,
		base:   context.Background(),
		log:    log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetCachedOrRefresh serves a cached result unless forceRefresh is set or the
// entry is missing or expired, in which case it runs the aggregation and
// stores the fresh result. Identical concurrent misses share one run.
func (s *Service) GetCachedOrRefresh(ctx context.Context, forceRefresh bool, window *models.PageWindow) models.AggregationResult {
	key := Key(window)

	if forceRefresh {
		metrics.RecordCacheRequest(metrics.CacheForced)
	} else {
		if result, ok := s.window.Get(key); ok {
			metrics.RecordCacheRequest(metrics.CacheHit)
			return result
		}
		metrics.RecordCacheRequest(metrics.CacheMiss)
	}

	flightKey := key
	if forceRefresh {
		flightKey = "force:" + key
	}

	v, _, shared := s.group.Do(flightKey, func() (any, error) {
		return s.refresh(s.base, key, forceRefresh, window), nil
	})
	if shared {
		s.log.Debug("Joined in-flight aggregation", logger.String("key", key))
	}
	if ctx.Err() != nil {
		s.log.Debug("Caller left before the aggregation finished", logger.String("key", key), logger.Error(ctx.Err()))
	}
	return v.(models.AggregationResult)
}

func (s *Service) refresh(ctx context.Context, key string, forceRefresh bool, window *models.PageWindow) models.AggregationResult {
	if window == nil && !forceRefresh {
		result, ok, err := s.store.Get(ctx, key)
		if err != nil {
			s.log.Warn("Store lookup failed", logger.String("key", key), logger.Error(err))
		}
		if ok {
			s.window.Set(key, result)
			return result
		}
	}

	result := s.runner.Run(ctx, forceRefresh, window)
	if err := ctx.Err(); err != nil {
		s.log.Warn("Aggregation interrupted, result not cached", logger.String("key", key), logger.Error(err))
		return result
	}
	s.window.Set(key, result)

	if window == nil {
		if err := s.store.Set(ctx, key, result); err != nil {
			s.log.Warn("Store write failed", logger.String("key", key), logger.Error(err))
		}
	}
	return result
}

// Invalidate clears both cache layers.
func (s *Service) Invalidate(ctx context.Context) error {
	s.log.Info("Invalidating cached results", logger.Int("window_entries", s.window.Len()))
	s.window.Invalidate()
	return s.store.Invalidate(ctx)
}
