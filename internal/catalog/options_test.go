package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFilterOptions(t *testing.T) {
	records := fixture()
	records = append(records, University{ID: "7", Country: "France", Type: "Online", Fields: []string{"Astrology"}})

	got := FilterOptions(records)
	want := Options{
		Countries: []string{"France", "Germany", "Italy", "Switzerland", "USA"},
		Regions:   []string{"Europe", "North America"},
		Types:     []string{TypePublic, TypePrivate, TypeAcademy, "Online"},
		Sizes:     []string{SizeSmall, SizeMedium, SizeLarge, SizeExtraLarge},
		Fields: []string{
			FieldComputerScience,
			FieldEngineering,
			FieldBusiness,
			FieldLaw,
			FieldMedicine,
			FieldNaturalSciences,
			FieldArts,
			"Astrology",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("FilterOptions mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterOptionsEmpty(t *testing.T) {
	got := FilterOptions(nil)
	if len(got.Countries) != 0 || got.Countries == nil {
		t.Fatalf("expected empty non-nil countries, got %#v", got.Countries)
	}
}
