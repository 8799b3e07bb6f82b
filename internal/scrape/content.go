package scrape

import (
	"net/url"
	"regexp"
	"strings"

	"news_aggregator/internal/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

const untitled = "Untitled"

var (
	reWhitespace = regexp.MustCompile(`\s+`)
	reBlockOpen  = regexp.MustCompile(`<(div|p|br|li|td|tr|h[1-6])(\s[^>]*)?/?>`)
	reBlockClose = regexp.MustCompile(`</(div|p|li|td|tr|h[1-6])>`)

	mainTextSelectors = []string{"article", "main", "#content", ".content", "#main"}
)

// NormalizeText collapses whitespace runs to single spaces.
func NormalizeText(text string) string {
	return strings.TrimSpace(reWhitespace.ReplaceAllString(text, " "))
}

// ExtractArticle resolves title, publication date and body text of an article
// page. It never fails: every field has a fallback.
func ExtractArticle(rawHTML string, pageURL string, fetchedAt string) models.ExtractedArticle {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return models.ExtractedArticle{
			Title: untitled,
			Date:  NormalizeToISO(fetchedAt, fetchedAt),
		}
	}

	title := firstNonEmpty(
		attr(doc, `meta[property="og:title"]`, "content"),
		strings.TrimSpace(doc.Find("title").First().Text()),
		strings.TrimSpace(doc.Find("h1").First().Text()),
		untitled,
	)

	dateCandidate := firstNonEmpty(
		attr(doc, `meta[property="article:published_time"]`, "content"),
		attr(doc, "time[datetime]", "datetime"),
		jsonLDDate(doc),
		fetchedAt,
	)

	text := readableText(rawHTML, pageURL)
	if text == "" {
		text = mainText(doc)
	}

	return models.ExtractedArticle{
		Title: title,
		Date:  NormalizeToISO(dateCandidate, fetchedAt),
		Text:  text,
	}
}

func readableText(rawHTML string, pageURL string) string {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil || strings.TrimSpace(article.Content) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(addSpacesBeforeParsing(article.Content)))
	if err != nil {
		return ""
	}
	doc.Find("script, style").Remove()

	return NormalizeText(doc.Text())
}

// addSpacesBeforeParsing keeps words from adjacent block elements apart once
// the markup is flattened to text.
func addSpacesBeforeParsing(html string) string {
	html = reBlockOpen.ReplaceAllString(html, " $0")
	return reBlockClose.ReplaceAllString(html, "$0 ")
}

func mainText(doc *goquery.Document) string {
	var parts []string
	for _, selector := range mainTextSelectors {
		if node := doc.Find(selector).First(); node.Length() > 0 {
			parts = append(parts, node.Text())
		}
	}
	return NormalizeText(strings.Join(parts, " "))
}

func attr(doc *goquery.Document, selector string, name string) string {
	value, _ := doc.Find(selector).First().Attr(name)
	return strings.TrimSpace(value)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
