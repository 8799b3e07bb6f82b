package api

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"news_aggregator/internal/models"
)

const (
	queryListPageOffset = "listPageOffset"
	queryListPageLimit  = "listPageLimit"
)

// ParseListPageParams reads listPageOffset and listPageLimit. Values are
// floored and clamped at zero; a limit is at least 1. Unparseable values count
// as absent; a blank value is zero. When both are absent the result is nil,
// which means the default run. An offset without a limit uses defaultLimit.
func ParseListPageParams(query url.Values, defaultLimit int) *models.PageWindow {
	offset, hasOffset := nonNegativeInt(query, queryListPageOffset)
	limit, hasLimit := nonNegativeInt(query, queryListPageLimit)

	if !hasOffset && !hasLimit {
		return nil
	}
	if !hasLimit {
		limit = defaultLimit
	}
	return &models.PageWindow{Offset: offset, Limit: max(1, limit)}
}

func nonNegativeInt(query url.Values, key string) (int, bool) {
	if !query.Has(key) {
		return 0, false
	}
	raw := strings.TrimSpace(query.Get(key))
	if raw == "" {
		return 0, true
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0, false
	}
	return int(math.Floor(min(max(parsed, 0), math.MaxInt32))), true
}
