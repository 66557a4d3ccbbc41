package catalog

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rating(v float64) *float64 { return &v }

func intp(v int) *int { return &v }

func fixture() []University {
	return []University{
		{ID: "1", Name: "Sorbonne", Country: "France", Region: "Europe", Type: TypePublic, Size: SizeLarge, Ranking: 50, Rating: rating(4.2), Fields: []string{FieldArts, FieldLaw}},
		{ID: "2", Name: "MIT", Country: "USA", Region: "North America", Type: TypePrivate, Size: SizeMedium, Ranking: 1, Rating: rating(4.9), Fields: []string{FieldComputerScience, FieldEngineering}},
		{ID: "3", Name: "ETH Zurich", Country: "Switzerland", Region: "Europe", Type: TypePublic, Size: SizeMedium, Ranking: 10, Fields: []string{FieldEngineering, FieldNaturalSciences}},
		{ID: "4", Name: "INSEAD", Country: "France", Region: "Europe", Type: TypeAcademy, Size: SizeSmall, Ranking: 30, Rating: rating(4.5), Fields: []string{FieldBusiness}},
		{ID: "5", Name: "Bocconi", Country: "Italy", Region: "Europe", Type: TypePrivate, Size: SizeMedium, Ranking: 30, Rating: rating(4.5), Fields: []string{FieldBusiness, FieldLaw}},
		{ID: "6", Name: "Charité", Country: "Germany", Region: "Europe", Type: TypePublic, Size: SizeExtraLarge, Ranking: 75, Fields: []string{FieldMedicine}},
	}
}

func ids(items []University) []string {
	out := make([]string, 0, len(items))
	for _, u := range items {
		out = append(out, u.ID)
	}
	return out
}

func TestQueryRankingPage(t *testing.T) {
	records := []University{
		{ID: "a", Ranking: 50},
		{ID: "b", Ranking: 10},
		{ID: "c", Ranking: 30},
	}
	res, err := Query(records, FilterSpec{SortKey: SortRankingAsc, Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, ids(res.Items))
	assert.Equal(t, 3, res.TotalCount)
}

func TestQueryNoFiltersSortsAll(t *testing.T) {
	records := fixture()
	cases := map[string][]string{
		SortRankingAsc:  {"2", "3", "4", "5", "1", "6"},
		SortRankingDesc: {"6", "1", "4", "5", "3", "2"},
		SortNameAsc:     {"5", "6", "3", "4", "2", "1"},
		SortNameDesc:    {"1", "2", "4", "3", "6", "5"},
		SortRatingDesc:  {"2", "4", "5", "1", "3", "6"},
		"":              {"2", "3", "4", "5", "1", "6"},
		"bogus":         {"2", "3", "4", "5", "1", "6"},
	}
	for key, want := range cases {
		res, err := Query(records, FilterSpec{SortKey: key, Page: 1, PageSize: 100})
		require.NoError(t, err)
		assert.Equal(t, want, ids(res.Items), "sort %q", key)
		assert.Equal(t, len(records), res.TotalCount)
	}
}

func TestQueryDoesNotMutateInput(t *testing.T) {
	records := fixture()
	before := fixture()
	_, err := Query(records, FilterSpec{SortKey: SortNameDesc, Page: 1, PageSize: 3})
	require.NoError(t, err)
	if diff := cmp.Diff(before, records); diff != "" {
		t.Fatalf("input changed (-before +after):\n%s", diff)
	}
}

func TestQueryFilters(t *testing.T) {
	records := fixture()
	cases := []struct {
		name string
		spec FilterSpec
		want []string
	}{
		{"country", FilterSpec{Country: "France"}, []string{"4", "1"}},
		{"country is case sensitive", FilterSpec{Country: "france"}, []string{}},
		{"all sentinel", FilterSpec{Country: "All", Region: "", Type: "All", Size: "All", Field: "All"}, []string{"2", "3", "4", "5", "1", "6"}},
		{"region and type", FilterSpec{Region: "Europe", Type: TypePublic}, []string{"3", "1", "6"}},
		{"size", FilterSpec{Size: SizeMedium}, []string{"2", "3", "5"}},
		{"field", FilterSpec{Field: FieldLaw}, []string{"5", "1"}},
		{"search name", FilterSpec{SearchQuery: "mIt"}, []string{"2"}},
		{"search country", FilterSpec{SearchQuery: "FRANCE"}, []string{"4", "1"}},
		{"search field", FilterSpec{SearchQuery: "pharmacy"}, []string{"6"}},
		{"ranking range", FilterSpec{MinRanking: intp(10), MaxRanking: intp(30)}, []string{"3", "4", "5"}},
		{"min only", FilterSpec{MinRanking: intp(50)}, []string{"1", "6"}},
		{"combined", FilterSpec{Region: "Europe", Field: FieldBusiness, MaxRanking: intp(30)}, []string{"4", "5"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.spec.Page = 1
			tc.spec.PageSize = 50
			res, err := Query(records, tc.spec)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ids(res.Items))
			assert.Equal(t, len(tc.want), res.TotalCount)
		})
	}
}

func TestQueryFieldMembership(t *testing.T) {
	records := fixture()
	for _, field := range Vocabulary {
		res, err := Query(records, FilterSpec{Field: field, Page: 1, PageSize: 50})
		require.NoError(t, err)
		for _, u := range res.Items {
			assert.True(t, u.HasField(field), "%s lacks %s", u.ID, field)
		}
	}
}

func TestQueryIdempotent(t *testing.T) {
	spec := FilterSpec{Region: "Europe", SearchQuery: "o", SortKey: SortNameAsc, Page: 1, PageSize: 50}
	first, err := Query(fixture(), spec)
	require.NoError(t, err)
	second, err := Query(first.Items, spec)
	require.NoError(t, err)
	assert.Equal(t, ids(first.Items), ids(second.Items))
}

func TestQueryPagesCoverCatalog(t *testing.T) {
	records := fixture()
	for i := 0; i < 20; i++ {
		records = append(records, University{ID: fmt.Sprintf("x%d", i), Name: fmt.Sprintf("Uni %02d", i), Ranking: 100 + i%4})
	}
	spec := FilterSpec{SortKey: SortRankingAsc, PageSize: 4}

	all, err := Query(records, FilterSpec{SortKey: SortRankingAsc, Page: 1, PageSize: len(records)})
	require.NoError(t, err)

	var pages []University
	pageCount := (all.TotalCount + spec.PageSize - 1) / spec.PageSize
	for p := 1; p <= pageCount; p++ {
		spec.Page = p
		res, err := Query(records, spec)
		require.NoError(t, err)
		pages = append(pages, res.Items...)
	}
	assert.Equal(t, ids(all.Items), ids(pages))
}

func TestQueryStableTies(t *testing.T) {
	records := []University{
		{ID: "first", Ranking: 5},
		{ID: "second", Ranking: 5},
		{ID: "third", Ranking: 5},
	}
	for _, key := range []string{SortRankingAsc, SortRankingDesc, SortRatingDesc} {
		res, err := Query(records, FilterSpec{SortKey: key, Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "second", "third"}, ids(res.Items), key)
	}
}

func TestQueryPagination(t *testing.T) {
	records := fixture()

	res, err := Query(records, FilterSpec{Page: 2, PageSize: 4})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "6"}, ids(res.Items))

	res, err = Query(records, FilterSpec{Page: 9, PageSize: 4})
	require.NoError(t, err)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
	assert.Equal(t, 6, res.TotalCount)

	res, err = Query(records, FilterSpec{Page: 0, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "3"}, ids(res.Items))

	for _, tc := range []struct{ page, size int }{
		{92233720368547760, 100},
		{math.MaxInt, 4},
		{2, math.MaxInt},
	} {
		res, err = Query(records, FilterSpec{Page: tc.page, PageSize: tc.size})
		require.NoError(t, err)
		assert.NotNil(t, res.Items)
		assert.Empty(t, res.Items, "page %d size %d", tc.page, tc.size)
		assert.Equal(t, 6, res.TotalCount)
	}

	res, err = Query(records, FilterSpec{Page: 1, PageSize: math.MaxInt})
	require.NoError(t, err)
	assert.Len(t, res.Items, 6)
}

func TestQueryRejectsPageSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		_, err := Query(fixture(), FilterSpec{Page: 1, PageSize: size})
		assert.True(t, errors.Is(err, ErrInvalidArgument))
	}
}
