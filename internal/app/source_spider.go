package app

import (
	"context"
	"fmt"
	"time"

	"news_aggregator/internal/config"
	"news_aggregator/internal/fetcher"
	"news_aggregator/internal/logger"
	"news_aggregator/internal/models"
	"news_aggregator/internal/runner"
	"news_aggregator/internal/scrape"
	urlqueue "news_aggregator/internal/url_queue"

	"github.com/google/uuid"
)

// Summarizer condenses article text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// SourceSpider scrapes one source: list pages, then articles.
type SourceSpider struct {
	source     models.Source
	fetcher    fetcher.Fetcher
	summarizer Summarizer
	logic      config.LogicConfig
	log        logger.Logger
}

func NewSourceSpider(
	source models.Source,
	f fetcher.Fetcher,
	summarizer Summarizer,
	logic config.LogicConfig,
	log logger.Logger,
) *SourceSpider {
	return &SourceSpider{
		source:     source,
		fetcher:    f,
		summarizer: summarizer,
		logic:      logic.WithDefaults(),
		log:        log.With(logger.String("source_id", source.ID)),
	}
}

// ItemID derives a stable item id from the source id and article URL.
func ItemID(sourceID, articleURL string) string {
	return sourceID + ":" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(articleURL)).String()
}

// Scrape never fails as a whole: list pages and articles that cannot be
// processed are reported in the outcome's errors, next to the items that could.
func (ss *SourceSpider) Scrape(
	ctx context.Context,
	fetchedAt string,
	forceRefresh bool,
	window *models.PageWindow,
) models.SourceOutcome {
	start := time.Now()
	offset, limit := 0, ss.logic.DefaultListPageLimit
	if window != nil {
		offset, limit = max(0, window.Offset), max(0, window.Limit)
	}

	var listHTML string
	if ss.source.ListPageTemplate == "" || offset == 0 {
		html, err := ss.fetch(ctx, ss.source.URL, ss.logic.SourceTimeout, forceRefresh)
		if err != nil {
			ss.log.Warn("Base list page failed", logger.String("url", ss.source.URL), logger.Error(err))
			return models.SourceOutcome{
				Items:  []models.Item{},
				Errors: []models.SourceError{ss.sourceError(err.Error())},
			}
		}
		listHTML = html
	}

	listPageURLs := ss.listPageURLs(listHTML, offset, limit)

	pageTasks := make([]runner.Task[string], len(listPageURLs))
	for i, pageURL := range listPageURLs {
		pageTasks[i] = func(ctx context.Context) (string, error) {
			if pageURL == ss.source.URL && listHTML != "" {
				return listHTML, nil
			}
			return ss.fetch(ctx, pageURL, ss.logic.SourceTimeout, forceRefresh)
		}
	}
	pages := runner.Map(ctx, pageTasks, ss.logic.ListPageConcurrency)

	links := urlqueue.NewURLQueue(0)
	for _, html := range pages.Results {
		links.AddAll(scrape.ExtractArticleLinks(html, ss.source))
	}

	candidates := links.URLs()
	if len(candidates) == 0 {
		candidates = []string{ss.source.URL}
	}
	maxItems := ss.source.MaxItems
	if maxItems <= 0 {
		maxItems = ss.logic.DefaultMaxItems
	}
	if len(candidates) > maxItems {
		candidates = candidates[:maxItems]
	}

	articleTasks := make([]runner.Task[models.Item], len(candidates))
	for i, articleURL := range candidates {
		articleTasks[i] = func(ctx context.Context) (models.Item, error) {
			return ss.scrapeArticle(ctx, articleURL, fetchedAt, forceRefresh)
		}
	}
	articles := runner.Map(ctx, articleTasks, ss.logic.ArticleConcurrency)

	errs := make([]models.SourceError, 0, len(pages.Errors)+len(articles.Errors))
	for _, msg := range pages.Errors {
		errs = append(errs, ss.sourceError(msg))
	}
	for _, msg := range articles.Errors {
		errs = append(errs, ss.sourceError(msg))
	}

	ss.log.Info("Source scraped",
		logger.Int("list_pages", len(listPageURLs)),
		logger.Int("links", links.Size()),
		logger.Int("articles", len(articles.Results)),
		logger.Int("errors", len(errs)),
		logger.Duration("duration", time.Since(start)),
	)

	return models.SourceOutcome{Items: articles.Results, Errors: errs}
}

// listPageURLs uses the template when present; otherwise the base page plus
// pagination links discovered on it, capped at MaxListPages.
func (ss *SourceSpider) listPageURLs(listHTML string, offset, limit int) []string {
	if ss.source.ListPageTemplate != "" {
		return urlqueue.BuildListPageURLs(ss.source, models.PageWindow{Offset: offset, Limit: limit})
	}

	discovered := scrape.ExtractListPageLinks(listHTML, ss.source.URL, ss.source.ListPageURLPattern)
	pages := urlqueue.NewURLQueue(ss.logic.MaxListPages + 1)
	pages.Add(ss.source.URL)
	pages.AddAll(discovered)
	return pages.URLs()
}

func (ss *SourceSpider) scrapeArticle(ctx context.Context, articleURL, fetchedAt string, forceRefresh bool) (models.Item, error) {
	html, err := ss.fetch(ctx, articleURL, ss.logic.ArticleTimeout, forceRefresh)
	if err != nil {
		return models.Item{}, err
	}

	article := scrape.ExtractArticle(html, articleURL, fetchedAt)

	summary, err := ss.summarizer.Summarize(ctx, article.Text)
	if err != nil {
		ss.log.Warn("Summarization failed", logger.String("url", articleURL), logger.Error(err))
		return models.Item{}, fmt.Errorf("summarize %s: %w", articleURL, err)
	}

	return models.Item{
		ID:         ItemID(ss.source.ID, articleURL),
		SourceID:   ss.source.ID,
		SourceName: ss.source.Name,
		URL:        articleURL,
		Title:      article.Title,
		Date:       article.Date,
		Summary:    summary,
		FetchedAt:  fetchedAt,
	}, nil
}

func (ss *SourceSpider) fetch(ctx context.Context, pageURL string, timeout time.Duration, forceRefresh bool) (string, error) {
	return ss.fetcher.Fetch(ctx, pageURL, fetcher.Options{
		Timeout:          timeout,
		NoStore:          forceRefresh,
		AllowInsecureTLS: ss.source.AllowInsecureTLS,
		RespectRobots:    ss.source.RespectRobots,
	})
}

func (ss *SourceSpider) sourceError(message string) models.SourceError {
	return models.SourceError{SourceID: ss.source.ID, Message: message}
}
