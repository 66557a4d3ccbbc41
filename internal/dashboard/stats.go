package dashboard

import (
	"sort"

	"uniscout-backend/internal/catalog"
	"uniscout-backend/internal/contact"
)

const topCountries = 10

type CountryCount struct {
	Country string `json:"country"`
	Count   int    `json:"count"`
}

type Stats struct {
	Universities  int            `json:"universities"`
	Students      int            `json:"students"`
	Partnerships  int            `json:"partnerships"`
	AverageRating *float64       `json:"averageRating"`
	ByType        map[string]int `json:"byType"`
	ByField       map[string]int `json:"byField"`
	TopCountries  []CountryCount `json:"topCountries"`
	Contacts      contact.Counts `json:"contacts"`
}

// Compute aggregates the catalog for the admin dashboard. AverageRating is
// nil when no record carries a rating.
func Compute(records []catalog.University, contacts contact.Counts) Stats {
	st := Stats{
		Universities: len(records),
		ByType:       map[string]int{},
		ByField:      map[string]int{},
		TopCountries: []CountryCount{},
		Contacts:     contacts,
	}

	var ratingSum float64
	rated := 0
	countries := map[string]int{}
	for _, u := range records {
		st.Students += u.Students
		st.Partnerships += u.Partnerships
		if u.Rating != nil {
			ratingSum += *u.Rating
			rated++
		}
		if u.Type != "" {
			st.ByType[u.Type]++
		}
		if u.Country != "" {
			countries[u.Country]++
		}
		for _, f := range u.Fields {
			st.ByField[f]++
		}
	}

	if rated > 0 {
		avg := ratingSum / float64(rated)
		st.AverageRating = &avg
	}

	for country, n := range countries {
		st.TopCountries = append(st.TopCountries, CountryCount{Country: country, Count: n})
	}
	sort.Slice(st.TopCountries, func(i, j int) bool {
		a, b := st.TopCountries[i], st.TopCountries[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Country < b.Country
	})
	if len(st.TopCountries) > topCountries {
		st.TopCountries = st.TopCountries[:topCountries]
	}
	return st
}
