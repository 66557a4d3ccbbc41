package utils

import "testing"

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Massachusetts Institute of Technology": "massachusetts-institute-of-technology",
		"  Université de Montréal ":             "universite-de-montreal",
		"Arts & Design / Media":                 "arts-and-design-media",
		"King's College":                        "kings-college",
		"---":                                   "",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}
