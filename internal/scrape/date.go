package scrape

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ISOLayout is the canonical instant format: millisecond precision, UTC.
const ISOLayout = "2006-01-02T15:04:05.000Z"

func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// NormalizeToISO parses candidate and returns it in ISOLayout. Empty or
// unparseable candidates yield fallback unchanged. Zone-less inputs are read as UTC.
func NormalizeToISO(candidate string, fallback string) string {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return fallback
	}

	parsed, err := dateparse.ParseIn(candidate, time.UTC)
	if err != nil {
		return fallback
	}

	return FormatISO(parsed)
}
