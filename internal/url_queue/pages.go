package urlqueue

import (
	"strconv"
	"strings"

	"news_aggregator/internal/models"
)

// PagePlaceholder marks where the page number goes in a list-page template.
const PagePlaceholder = "{page}"

// BuildListPageURLs returns the list pages covering pages offset+1..offset+limit.
// Page 1 is always the source's own URL. Sources without a usable template get
// no URLs; the caller decides how to paginate them.
func BuildListPageURLs(source models.Source, window models.PageWindow) []string {
	template := source.ListPageTemplate
	if template == "" || !strings.Contains(template, PagePlaceholder) {
		return []string{}
	}

	offset := max(window.Offset, 0)
	limit := max(window.Limit, 0)
	if limit == 0 {
		return []string{}
	}

	q := NewURLQueue(0)
	for page := offset + 1; page <= offset+limit; page++ {
		if page == 1 {
			q.Add(source.URL)
			continue
		}
		q.Add(strings.Replace(template, PagePlaceholder, strconv.Itoa(page), 1))
	}
	return q.URLs()
}
