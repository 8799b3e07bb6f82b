// Package cache keeps aggregation results around so paged reads do not
// re-scrape every source.
package cache

import (
	"fmt"
	"time"

	"news_aggregator/internal/models"

	lru "github.com/hashicorp/golang-lru/v2"
)

// KeyItems is the key of the default, windowless result.
const KeyItems = "items"

// Key returns the cache key for a page window.
func Key(window *models.PageWindow) string {
	if window == nil {
		return KeyItems
	}
	return fmt.Sprintf("%s:%d:%d", KeyItems, window.Offset, window.Limit)
}

type windowEntry struct {
	result    models.AggregationResult
	expiresAt time.Time
}

// Window is a bounded, short-lived cache of results keyed by page window.
// It is safe for concurrent use.
type Window struct {
	entries *lru.Cache[string, windowEntry]
	ttl     time.Duration
	now     func() time.Time
}

func NewWindow(size int, ttl time.Duration, now func() time.Time) (*Window, error) {
	entries, err := lru.New[string, windowEntry](size)
	if err != nil {
		return nil, fmt.Errorf("create window cache: %w", err)
	}
	if now == nil {
		now = time.Now
	}
	return &Window{entries: entries, ttl: ttl, now: now}, nil
}

// Get returns the entry stored under key unless it has expired.
func (w *Window) Get(key string) (models.AggregationResult, bool) {
	entry, ok := w.entries.Get(key)
	if !ok {
		return models.AggregationResult{}, false
	}
	if !w.now().Before(entry.expiresAt) {
		w.entries.Remove(key)
		return models.AggregationResult{}, false
	}
	return entry.result, true
}

// Set replaces the entry under key and restarts its TTL.
func (w *Window) Set(key string, result models.AggregationResult) {
	w.entries.Add(key, windowEntry{result: result, expiresAt: w.now().Add(w.ttl)})
}

func (w *Window) Invalidate() {
	w.entries.Purge()
}

func (w *Window) Len() int {
	return w.entries.Len()
}
