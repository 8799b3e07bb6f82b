package app_test

import (
	"context"
	"errors"
	"strings"
	"sync"

	"news_aggregator/internal/config"
	"news_aggregator/internal/fetcher"
)

type fakeFetcher struct {
	mu      sync.Mutex
	pages   map[string]string
	fail    map[string]error
	calls   map[string]int
	options []fetcher.Options
}

func newFakeFetcher(pages map[string]string) *fakeFetcher {
	return &fakeFetcher{
		pages: pages,
		fail:  map[string]error{},
		calls: map[string]int{},
	}
}

func (f *fakeFetcher) Fetch(_ context.Context, url string, opts fetcher.Options) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[url]++
	f.options = append(f.options, opts)
	if err, ok := f.fail[url]; ok {
		return "", err
	}
	html, ok := f.pages[url]
	if !ok {
		return "", errors.New("HTTP 404")
	}
	return html, nil
}

func (f *fakeFetcher) callCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

func (f *fakeFetcher) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

type fakeSummarizer struct {
	failOn string
}

func (s *fakeSummarizer) Summarize(_ context.Context, text string) (string, error) {
	if s.failOn != "" && strings.Contains(text, s.failOn) {
		return "", errors.New("LLM summarization failed: quota")
	}
	return "1) " + text, nil
}

func listPage(links ...string) string {
	var sb strings.Builder
	sb.WriteString("<html><body><main>")
	for _, l := range links {
		sb.WriteString(`<a href="` + l + `">link</a>`)
	}
	sb.WriteString("</main></body></html>")
	return sb.String()
}

func articlePage(title, date, body string) string {
	return `<html><head><title>` + title + `</title>` +
		`<meta property="article:published_time" content="` + date + `"></head>` +
		`<body><article><p>` + body + `</p></article></body></html>`
}

func smallLogic() config.LogicConfig {
	return config.LogicConfig{ListPageConcurrency: 2, ArticleConcurrency: 2}
}
