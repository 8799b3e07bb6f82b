// Package app runs the aggregation pipeline across all configured sources.
package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"news_aggregator/internal/config"
	"news_aggregator/internal/fetcher"
	"news_aggregator/internal/logger"
	"news_aggregator/internal/metrics"
	"news_aggregator/internal/models"
	"news_aggregator/internal/scrape"
)

const unknownSourceID = "unknown"

// Scraper produces the outcome of a single source.
type Scraper interface {
	Scrape(ctx context.Context, fetchedAt string, forceRefresh bool, window *models.PageWindow) models.SourceOutcome
}

// ScraperFactory builds the scraper for a source.
type ScraperFactory func(source models.Source) Scraper

// SpiderFactory returns a factory producing SourceSpiders that share f and s.
func SpiderFactory(f fetcher.Fetcher, s Summarizer, logic config.LogicConfig, log logger.Logger) ScraperFactory {
	return func(source models.Source) Scraper {
		return NewSourceSpider(source, f, s, logic, log)
	}
}

type sourceSpider struct {
	source  models.Source
	scraper Scraper
}

// Aggregator fans out to one scraper per unique source and merges the results.
type Aggregator struct {
	spiders []sourceSpider
	now     func() time.Time
	log     logger.Logger
}

type Option func(*Aggregator)

// WithClock overrides the clock used for fetch timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		a.now = now
	}
}

// NewAggregator deduplicates sources by URL; the first occurrence wins.
func NewAggregator(sources []models.Source, factory ScraperFactory, log logger.Logger, opts ...Option) *Aggregator {
	a := &Aggregator{
		now: time.Now,
		log: log,
	}
	for _, opt := range opts {
		opt(a)
	}

	seen := make(map[string]bool, len(sources))
	for _, source := range sources {
		if seen[source.URL] {
			a.log.Warn("Skipping duplicate source", logger.String("source_id", source.ID), logger.String("url", source.URL))
			continue
		}
		seen[source.URL] = true
		a.spiders = append(a.spiders, sourceSpider{source: source, scraper: factory(source)})
	}
	return a
}

// Sources returns the deduplicated sources in configuration order.
func (a *Aggregator) Sources() []models.Source {
	out := make([]models.Source, len(a.spiders))
	for i, s := range a.spiders {
		out[i] = s.source
	}
	return out
}

// Run scrapes every source concurrently. It always returns a result; failures
// are reported in its Errors.
func (a *Aggregator) Run(ctx context.Context, forceRefresh bool, window *models.PageWindow) models.AggregationResult {
	start := a.now()
	fetchedAt := scrape.FormatISO(start)

	a.log.Info("Aggregation started",
		logger.Int("sources", len(a.spiders)),
		logger.Bool("force_refresh", forceRefresh),
	)

	outcomes := make([]models.SourceOutcome, len(a.spiders))
	var wg sync.WaitGroup
	for i, spider := range a.spiders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes[i] = a.scrapeSource(ctx, spider, fetchedAt, forceRefresh, window)
		}()
	}
	wg.Wait()

	result := merge(outcomes)
	result.LastSync = fetchedAt

	elapsed := a.now().Sub(start)
	metrics.ObserveRun(elapsed)
	a.log.Info("Aggregation finished",
		logger.Int("items", len(result.Items)),
		logger.Int("errors", len(result.Errors)),
		logger.Duration("duration", elapsed),
	)
	return result
}

func (a *Aggregator) scrapeSource(
	ctx context.Context,
	spider sourceSpider,
	fetchedAt string,
	forceRefresh bool,
	window *models.PageWindow,
) (outcome models.SourceOutcome) {
	sourceID := spider.source.ID
	if sourceID == "" {
		sourceID = unknownSourceID
	}

	defer func() {
		if r := recover(); r != nil {
			a.log.Error("Source pipeline panicked", logger.String("source_id", sourceID), logger.String("panic", fmt.Sprint(r)))
			outcome = models.SourceOutcome{
				Items:  []models.Item{},
				Errors: []models.SourceError{{SourceID: sourceID, Message: fmt.Sprintf("source pipeline panicked: %v", r)}},
			}
		}
		metrics.RecordArticles(sourceID, len(outcome.Items))
		metrics.RecordSourceErrors(sourceID, len(outcome.Errors))
	}()

	return spider.scraper.Scrape(ctx, fetchedAt, forceRefresh, window)
}

// merge dedups items by URL and errors by (source, message), then sorts items
// by date, newest first. Ties keep source order.
func merge(outcomes []models.SourceOutcome) models.AggregationResult {
	items := []models.Item{}
	errs := []models.SourceError{}
	seenURLs := make(map[string]bool)
	seenErrs := make(map[models.SourceError]bool)

	for _, o := range outcomes {
		for _, item := range o.Items {
			if seenURLs[item.URL] {
				continue
			}
			seenURLs[item.URL] = true
			items = append(items, item)
		}
		for _, e := range o.Errors {
			if seenErrs[e] {
				continue
			}
			seenErrs[e] = true
			errs = append(errs, e)
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date > items[j].Date
	})

	return models.AggregationResult{Items: items, Errors: errs}
}
