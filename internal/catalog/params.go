package catalog

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

var ErrInvalidLimit = errors.New("invalid limit")

// ParseFilterSpec maps the public listing query string onto a FilterSpec.
// Malformed optional values are ignored; only an explicit non-positive or
// non-numeric limit is rejected.
func ParseFilterSpec(values url.Values) (FilterSpec, error) {
	spec := FilterSpec{
		Country:     strings.TrimSpace(values.Get("country")),
		Region:      strings.TrimSpace(values.Get("region")),
		Type:        strings.TrimSpace(values.Get("type")),
		Size:        strings.TrimSpace(values.Get("size")),
		SearchQuery: strings.TrimSpace(values.Get("search")),
		Field:       strings.TrimSpace(values.Get("fieldNames")),
		MinRanking:  optionalInt(values.Get("minRanking")),
		MaxRanking:  optionalInt(values.Get("maxRanking")),
		SortKey:     sortKeyFrom(values.Get("sortBy"), values.Get("sortOrder")),
		Page:        1,
		PageSize:    DefaultPageSize,
	}

	if p := optionalInt(values.Get("page")); p != nil && *p > 0 {
		spec.Page = *p
	}

	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return FilterSpec{}, ErrInvalidLimit
		}
		spec.PageSize = min(limit, MaxPageSize)
	}

	return spec, nil
}

func optionalInt(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

// sortKeyFrom composes sortBy+sortOrder. A full key like "rating-desc" is
// also accepted in sortBy.
func sortKeyFrom(sortBy, sortOrder string) string {
	sortBy = strings.ToLower(strings.TrimSpace(sortBy))
	sortOrder = strings.ToLower(strings.TrimSpace(sortOrder))

	switch sortBy {
	case SortRankingAsc, SortRankingDesc, SortNameAsc, SortNameDesc, SortRatingDesc:
		return sortBy
	case "name":
		if sortOrder == "desc" {
			return SortNameDesc
		}
		return SortNameAsc
	case "rating":
		return SortRatingDesc
	case "ranking":
		if sortOrder == "desc" {
			return SortRankingDesc
		}
	}
	return SortRankingAsc
}
