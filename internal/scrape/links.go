package scrape

import (
	"net/url"
	"strings"

	"news_aggregator/internal/models"
	urlqueue "news_aggregator/internal/url_queue"

	"github.com/PuerkitoBio/goquery"
)

const defaultLinkSelector = "a[href]"

var (
	defaultContainerSelectors = []string{"main", "article", "#content", ".content", "#main"}

	// Links inside these are navigation chrome, never articles.
	ignoredContainerSelectors = strings.Join([]string{
		"nav",
		"header",
		"footer",
		".breadcrumb",
		".breadcrumbs",
		".nav",
		".navigation",
		".menu",
		".submenu",
		".profile",
		".account",
		".user",
		".social",
	}, ", ")
)

// ExtractArticleLinks returns the same-host article URLs found on a list page,
// deduplicated in document order.
func ExtractArticleLinks(rawHTML string, source models.Source) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return []string{}
	}

	baseURL, err := url.Parse(source.URL)
	if err != nil || baseURL.Host == "" {
		return []string{}
	}

	linkSelector := source.LinkSelector
	if linkSelector == "" {
		linkSelector = defaultLinkSelector
	}

	links := urlqueue.NewURLQueue(0)
	for _, scope := range scopeNodes(doc, source.LinkContainerSelectors) {
		scope.Find(linkSelector).Each(func(_ int, s *goquery.Selection) {
			href, _ := s.Attr("href")
			resolved, ok := resolveHref(baseURL, href)
			if !ok || resolved == source.URL {
				return
			}
			if s.Closest(ignoredContainerSelectors).Length() > 0 {
				return
			}
			if !urlqueue.URLShouldBeFollowed(resolved, source.ArticleURLPattern, source.ExcludeURLPatterns) {
				return
			}
			links.Add(resolved)
		})
	}

	return links.URLs()
}

// ExtractListPageLinks finds further list pages ("next page" links) on a page.
// Without a pattern nothing is followed.
func ExtractListPageLinks(rawHTML string, pageURL string, listPagePattern string) []string {
	if listPagePattern == "" {
		return []string{}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return []string{}
	}

	baseURL, err := url.Parse(pageURL)
	if err != nil || baseURL.Host == "" {
		return []string{}
	}

	links := urlqueue.NewURLQueue(0)
	doc.Find(defaultLinkSelector).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		resolved, ok := resolveHref(baseURL, href)
		if !ok {
			return
		}
		if urlqueue.URLMatchesPattern(resolved, listPagePattern) {
			links.Add(resolved)
		}
	})

	return links.URLs()
}

// scopeNodes picks the first match of every configured container selector,
// then the defaults, then the body.
func scopeNodes(doc *goquery.Document, selectors []string) []*goquery.Selection {
	if len(selectors) == 0 {
		selectors = defaultContainerSelectors
	}

	var nodes []*goquery.Selection
	for _, selector := range selectors {
		if node := doc.Find(selector).First(); node.Length() > 0 {
			nodes = append(nodes, node)
		}
	}
	if len(nodes) == 0 {
		nodes = append(nodes, doc.Find("body"))
	}
	return nodes
}

// resolveHref turns href into an absolute http(s) URL on baseURL's host.
func resolveHref(baseURL *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "mailto:") {
		return "", false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	resolved := baseURL.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}
	if resolved.Host != baseURL.Host {
		return "", false
	}

	return resolved.String(), true
}
