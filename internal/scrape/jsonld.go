package scrape

import (
	"encoding/json"

	"github.com/PuerkitoBio/goquery"
)

// jsonLDDate returns the first datePublished found in the page's JSON-LD blocks.
func jsonLDDate(doc *goquery.Document) string {
	var found string
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data any
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return true
		}
		found = pickDatePublished(data)
		return found == ""
	})
	return found
}

func pickDatePublished(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []any:
		for _, item := range v {
			if date := pickDatePublished(item); date != "" {
				return date
			}
		}
	case map[string]any:
		if direct, ok := v["datePublished"].(string); ok && direct != "" {
			return direct
		}
		return pickDatePublished(v["@graph"])
	}
	return ""
}
