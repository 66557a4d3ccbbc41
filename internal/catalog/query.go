package catalog

import (
	"errors"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ErrInvalidArgument is returned by Query when the page size is not positive.
var ErrInvalidArgument = errors.New("invalid argument")

const (
	SortRankingAsc  = "ranking-asc"
	SortRankingDesc = "ranking-desc"
	SortNameAsc     = "name-asc"
	SortNameDesc    = "name-desc"
	SortRatingDesc  = "rating-desc"
)

// FilterAll is the sentinel the UI sends for "no constraint".
const FilterAll = "All"

type FilterSpec struct {
	Country     string
	Region      string
	Type        string
	Size        string
	SearchQuery string
	Field       string
	MinRanking  *int
	MaxRanking  *int
	SortKey     string
	Page        int
	PageSize    int
}

type Result struct {
	Items      []University `json:"data"`
	TotalCount int          `json:"totalCount"`
}

func isSet(v string) bool {
	return v != "" && v != FilterAll
}

// Query filters, sorts and paginates records. records is never modified.
func Query(records []University, spec FilterSpec) (Result, error) {
	if spec.PageSize <= 0 {
		return Result{}, ErrInvalidArgument
	}

	filtered := make([]University, 0, len(records))
	for _, rec := range records {
		if spec.matches(rec) {
			filtered = append(filtered, rec)
		}
	}

	sortRecords(filtered, spec.SortKey)

	page := spec.Page
	if page < 1 {
		page = 1
	}
	total := len(filtered)
	// compare page counts before multiplying so huge pages cannot overflow
	pages := total / spec.PageSize
	if total%spec.PageSize != 0 {
		pages++
	}
	if page > pages {
		return Result{Items: []University{}, TotalCount: total}, nil
	}
	start := (page - 1) * spec.PageSize
	end := start + min(spec.PageSize, total-start)

	return Result{Items: filtered[start:end], TotalCount: total}, nil
}

func (s FilterSpec) matches(u University) bool {
	if isSet(s.Country) && u.Country != s.Country {
		return false
	}
	if isSet(s.Region) && u.Region != s.Region {
		return false
	}
	if isSet(s.Type) && u.Type != s.Type {
		return false
	}
	if isSet(s.Size) && u.Size != s.Size {
		return false
	}
	if isSet(s.Field) && !u.HasField(s.Field) {
		return false
	}
	if s.MinRanking != nil && u.Ranking < *s.MinRanking {
		return false
	}
	if s.MaxRanking != nil && u.Ranking > *s.MaxRanking {
		return false
	}
	if q := strings.TrimSpace(s.SearchQuery); isSet(q) {
		return matchesSearch(u, strings.ToLower(q))
	}
	return true
}

func matchesSearch(u University, q string) bool {
	if strings.Contains(strings.ToLower(u.Name), q) || strings.Contains(strings.ToLower(u.Country), q) {
		return true
	}
	for _, f := range u.Fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// sortRecords sorts in place with a stable sort, so equal keys keep their
// original relative order.
func sortRecords(items []University, key string) {
	switch key {
	case SortRankingDesc:
		slices.SortStableFunc(items, func(a, b University) int {
			return b.Ranking - a.Ranking
		})
	case SortNameAsc, SortNameDesc:
		// Collators keep internal buffers and are not safe for concurrent use.
		col := collate.New(language.English)
		sign := 1
		if key == SortNameDesc {
			sign = -1
		}
		slices.SortStableFunc(items, func(a, b University) int {
			return sign * col.CompareString(a.Name, b.Name)
		})
	case SortRatingDesc:
		slices.SortStableFunc(items, func(a, b University) int {
			ra, rb := ratingOf(a), ratingOf(b)
			switch {
			case ra > rb:
				return -1
			case ra < rb:
				return 1
			}
			return 0
		})
	default:
		slices.SortStableFunc(items, func(a, b University) int {
			return a.Ranking - b.Ranking
		})
	}
}

func ratingOf(u University) float64 {
	if u.Rating == nil {
		return -1
	}
	return *u.Rating
}
