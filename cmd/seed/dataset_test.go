package main

import (
	"strings"
	"testing"
	"time"

	"uniscout-backend/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDataset = `
universities:
  - name: Technical University of Munich
    country: Germany
    region: Europe
    type: Public
    size: Large
    ranking: 30
    rating: 4.6
    computerScience: true
    engineering: true
  - id: "mit"
    name: Massachusetts Institute of Technology
    country: USA
    region: North America
    type: Private
    size: Medium
    ranking: 1
    engineering: true
    location: {lat: 42.36, lng: -71.09}
`

func TestLoadDataset(t *testing.T) {
	records, err := loadDataset(strings.NewReader(sampleDataset))
	require.NoError(t, err)
	require.Len(t, records, 2)

	tum := records[0]
	assert.Equal(t, "technical-university-of-munich", tum.Slug)
	assert.Equal(t, tum.Slug, tum.ID)
	assert.Equal(t, []string{catalog.FieldComputerScience, catalog.FieldEngineering}, tum.Fields)
	require.NotNil(t, tum.Rating)
	assert.InDelta(t, 4.6, *tum.Rating, 1e-9)

	mit := records[1]
	assert.Equal(t, "mit", mit.ID)
	assert.Nil(t, mit.Rating)
	assert.InDelta(t, 42.36, mit.Location.Lat, 1e-9)
}

func TestLoadDatasetRejectsBadInput(t *testing.T) {
	_, err := loadDataset(strings.NewReader(""))
	assert.Error(t, err)

	_, err = loadDataset(strings.NewReader("universities:\n  - country: France\n"))
	assert.ErrorContains(t, err, "missing name")

	_, err = loadDataset(strings.NewReader("universities:\n  - {name: Sorbonne, type: Public, size: Large}\n  - {name: sorbonne, type: Public, size: Large}\n"))
	assert.ErrorContains(t, err, "already used")

	_, err = loadDataset(strings.NewReader("universities:\n  - {name: Sorbonne, type: Public, size: Extra Large}\n"))
	assert.ErrorContains(t, err, "unknown type")
}

func TestUniversitySetOmitsEmptyOptionals(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	set := universitySet(catalog.University{Name: "X", Slug: "x", Fields: []string{}}, now)
	assert.NotContains(t, set, "rating")
	assert.NotContains(t, set, "website")
	assert.Equal(t, now, set["updated_at"])
}
