package cache_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"news_aggregator/internal/cache"
	"news_aggregator/internal/logger"
	"news_aggregator/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRunner struct {
	calls   atomic.Int32
	forced  atomic.Int32
	release chan struct{}
}

func (r *countingRunner) Run(_ context.Context, forceRefresh bool, window *models.PageWindow) models.AggregationResult {
	n := r.calls.Add(1)
	if forceRefresh {
		r.forced.Add(1)
	}
	if r.release != nil {
		<-r.release
	}
	return result(fmt.Sprintf("%s#%d", cache.Key(window), n))
}

// contextRunner fails the way real fetches do once its context is done.
type contextRunner struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (r *contextRunner) Run(ctx context.Context, _ bool, _ *models.PageWindow) models.AggregationResult {
	n := r.calls.Add(1)
	if r.started != nil {
		r.started <- struct{}{}
	}
	if r.release != nil {
		<-r.release
	}
	if err := ctx.Err(); err != nil {
		return models.AggregationResult{
			Items:  []models.Item{},
			Errors: []models.SourceError{{SourceID: "s", Message: "fetch https://example.com/: " + err.Error()}},
		}
	}
	return result(fmt.Sprintf("run#%d", n))
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (models.AggregationResult, bool, error) {
	return models.AggregationResult{}, false, errors.New("connection refused")
}

func (failingStore) Set(context.Context, string, models.AggregationResult) error {
	return errors.New("connection refused")
}

func (failingStore) Invalidate(context.Context) error {
	return errors.New("connection refused")
}

func newService(t *testing.T, runner cache.Runner, clock *fakeClock, store cache.Store, opts ...cache.ServiceOption) *cache.Service {
	t.Helper()

	w, err := cache.NewWindow(16, 5*time.Minute, clock.Now)
	require.NoError(t, err)
	if store == nil {
		store = cache.NewMemoryStore(time.Hour, clock.Now)
	}
	return cache.NewService(runner, w, store, logger.NewNop(), opts...)
}

func TestGetCachedOrRefresh_RunsAtMostOnceWithinTTL(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	runner := &countingRunner{}
	svc := newService(t, runner, newFakeClock(), nil)

	first := svc.GetCachedOrRefresh(ctx, false, nil)
	second := svc.GetCachedOrRefresh(ctx, false, nil)

	assert.Equal(t, int32(1), runner.calls.Load())
	assert.Equal(t, first, second)
}

func TestGetCachedOrRefresh_ForceBypassesCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	runner := &countingRunner{}
	svc := newService(t, runner, newFakeClock(), nil)

	svc.GetCachedOrRefresh(ctx, false, nil)
	forced := svc.GetCachedOrRefresh(ctx, true, nil)
	after := svc.GetCachedOrRefresh(ctx, false, nil)

	assert.Equal(t, int32(2), runner.calls.Load())
	assert.Equal(t, int32(1), runner.forced.Load())
	assert.Equal(t, forced, after, "forced result replaces the cached entry")
}

func TestGetCachedOrRefresh_ExpiredWindowFallsBackToStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := newFakeClock()
	runner := &countingRunner{}
	svc := newService(t, runner, clock, nil)

	first := svc.GetCachedOrRefresh(ctx, false, nil)
	clock.Advance(10 * time.Minute)
	second := svc.GetCachedOrRefresh(ctx, false, nil)

	assert.Equal(t, int32(1), runner.calls.Load(), "store still holds the windowless result")
	assert.Equal(t, first, second)

	clock.Advance(time.Hour)
	svc.GetCachedOrRefresh(ctx, false, nil)
	assert.Equal(t, int32(2), runner.calls.Load())
}

func TestGetCachedOrRefresh_WindowedRunsBypassStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := newFakeClock()
	runner := &countingRunner{}
	store := cache.NewMemoryStore(time.Hour, clock.Now)
	svc := newService(t, runner, clock, store)
	window := &models.PageWindow{Offset: 15, Limit: 15}

	got := svc.GetCachedOrRefresh(ctx, false, window)
	assert.Equal(t, "items:15:15#1", got.LastSync)

	_, ok, err := store.Get(ctx, "items:15:15")
	require.NoError(t, err)
	assert.False(t, ok)

	svc.GetCachedOrRefresh(ctx, false, window)
	assert.Equal(t, int32(1), runner.calls.Load())

	clock.Advance(5 * time.Minute)
	svc.GetCachedOrRefresh(ctx, false, window)
	assert.Equal(t, int32(2), runner.calls.Load())
}

func TestGetCachedOrRefresh_KeysAreIndependent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	runner := &countingRunner{}
	svc := newService(t, runner, newFakeClock(), nil)

	a := svc.GetCachedOrRefresh(ctx, false, nil)
	b := svc.GetCachedOrRefresh(ctx, false, &models.PageWindow{Offset: 0, Limit: 15})

	assert.Equal(t, int32(2), runner.calls.Load())
	assert.NotEqual(t, a.LastSync, b.LastSync)
}

func TestGetCachedOrRefresh_CollapsesConcurrentMisses(t *testing.T) {
	t.Parallel()

	runner := &countingRunner{release: make(chan struct{})}
	svc := newService(t, runner, newFakeClock(), nil)

	var wg sync.WaitGroup
	results := make([]models.AggregationResult, 5)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = svc.GetCachedOrRefresh(context.Background(), false, nil)
		}()
	}

	require.Eventually(t, func() bool { return runner.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(runner.release)
	wg.Wait()

	assert.Equal(t, int32(1), runner.calls.Load())
	for _, r := range results {
		assert.Equal(t, results[0], r)
	}
}

func TestGetCachedOrRefresh_StoreErrorsAreNotFatal(t *testing.T) {
	t.Parallel()

	runner := &countingRunner{}
	svc := newService(t, runner, newFakeClock(), failingStore{})

	got := svc.GetCachedOrRefresh(context.Background(), false, nil)

	assert.Equal(t, "items#1", got.LastSync)
	assert.Equal(t, int32(1), runner.calls.Load())
}

func TestInvalidate_ClearsBothLayers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	runner := &countingRunner{}
	svc := newService(t, runner, newFakeClock(), nil)

	svc.GetCachedOrRefresh(ctx, false, nil)
	require.NoError(t, svc.Invalidate(ctx))
	svc.GetCachedOrRefresh(ctx, false, nil)

	assert.Equal(t, int32(2), runner.calls.Load())
}

func TestInvalidate_ReportsStoreError(t *testing.T) {
	t.Parallel()

	svc := newService(t, &countingRunner{}, newFakeClock(), failingStore{})

	require.Error(t, svc.Invalidate(context.Background()))
}

func TestGetCachedOrRefresh_CallerCancellationDoesNotLeak(t *testing.T) {
	t.Parallel()

	runner := &contextRunner{started: make(chan struct{}, 1), release: make(chan struct{})}
	svc := newService(t, runner, newFakeClock(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan models.AggregationResult, 1)
	go func() {
		done <- svc.GetCachedOrRefresh(ctx, false, nil)
	}()

	<-runner.started
	cancel()
	close(runner.release)
	first := <-done

	assert.Empty(t, first.Errors, "the run does not inherit the caller's cancellation")
	assert.Equal(t, "run#1", first.LastSync)

	second := svc.GetCachedOrRefresh(context.Background(), false, nil)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), runner.calls.Load())
}

func TestGetCachedOrRefresh_InterruptedRunIsNotCached(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := newFakeClock()
	store := cache.NewMemoryStore(time.Hour, clock.Now)
	base, cancel := context.WithCancel(ctx)
	runner := &contextRunner{}
	svc := newService(t, runner, clock, store, cache.WithBaseContext(base))

	cancel()
	got := svc.GetCachedOrRefresh(ctx, false, nil)

	require.Len(t, got.Errors, 1)
	assert.Contains(t, got.Errors[0].Message, context.Canceled.Error())

	_, ok, err := store.Get(ctx, cache.KeyItems)
	require.NoError(t, err)
	assert.False(t, ok, "interrupted result stays out of the store")

	svc.GetCachedOrRefresh(ctx, false, nil)
	assert.Equal(t, int32(2), runner.calls.Load(), "interrupted result stays out of the window")
}
