package catalog

import "sort"

type Options struct {
	Countries []string `json:"countries"`
	Regions   []string `json:"regions"`
	Types     []string `json:"types"`
	Sizes     []string `json:"sizes"`
	Fields    []string `json:"fields"`
}

// FilterOptions derives the distinct filter values present in records.
// Countries and regions are sorted alphabetically; types, sizes and fields
// follow their vocabulary order.
func FilterOptions(records []University) Options {
	countries := map[string]struct{}{}
	regions := map[string]struct{}{}
	types := map[string]struct{}{}
	sizes := map[string]struct{}{}
	fields := map[string]struct{}{}

	for _, u := range records {
		addNonEmpty(countries, u.Country)
		addNonEmpty(regions, u.Region)
		addNonEmpty(types, u.Type)
		addNonEmpty(sizes, u.Size)
		for _, f := range u.Fields {
			addNonEmpty(fields, f)
		}
	}

	return Options{
		Countries: sortedKeys(countries),
		Regions:   sortedKeys(regions),
		Types:     inOrder(Types, types),
		Sizes:     inOrder(Sizes, sizes),
		Fields:    inOrder(Vocabulary, fields),
	}
}

func addNonEmpty(set map[string]struct{}, v string) {
	if v != "" {
		set[v] = struct{}{}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// inOrder lists the members of set in the order of known, then any values
// outside known sorted alphabetically.
func inOrder(known []string, set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	seen := make(map[string]struct{}, len(known))
	for _, k := range known {
		seen[k] = struct{}{}
		if _, ok := set[k]; ok {
			out = append(out, k)
		}
	}
	extra := make([]string, 0)
	for k := range set {
		if _, ok := seen[k]; !ok {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// IsField reports whether name belongs to the controlled vocabulary.
func IsField(name string) bool {
	for _, f := range Vocabulary {
		if f == name {
			return true
		}
	}
	return false
}
