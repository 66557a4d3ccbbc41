package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"uniscout-backend/internal/catalog"

	"go.mongodb.org/mongo-driver/bson"
	"gopkg.in/yaml.v3"
)

type dataset struct {
	Universities []catalog.RawUniversity `yaml:"universities"`
}

func loadDatasetFile(path string) ([]catalog.University, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return loadDataset(f)
}

// loadDataset decodes raw records and rejects duplicate slugs, which would
// otherwise collapse into one document on upsert.
func loadDataset(r io.Reader) ([]catalog.University, error) {
	var ds dataset
	if err := yaml.NewDecoder(r).Decode(&ds); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("dataset is empty")
		}
		return nil, fmt.Errorf("decode dataset: %w", err)
	}

	seen := make(map[string]int, len(ds.Universities))
	out := make([]catalog.University, 0, len(ds.Universities))
	for i, raw := range ds.Universities {
		u := catalog.FromRaw(raw)
		if u.Name == "" {
			return nil, fmt.Errorf("record %d: missing name", i+1)
		}
		if !slices.Contains(catalog.Types, u.Type) || !slices.Contains(catalog.Sizes, u.Size) {
			return nil, fmt.Errorf("record %d (%s): unknown type %q or size %q", i+1, u.Name, u.Type, u.Size)
		}
		if prev, ok := seen[u.Slug]; ok {
			return nil, fmt.Errorf("record %d: slug %q already used by record %d", i+1, u.Slug, prev)
		}
		seen[u.Slug] = i + 1
		out = append(out, u)
	}
	return out, nil
}

func universitySet(u catalog.University, now time.Time) bson.M {
	set := bson.M{
		"slug":         u.Slug,
		"name":         u.Name,
		"country":      u.Country,
		"region":       u.Region,
		"description":  u.Description,
		"type":         u.Type,
		"size":         u.Size,
		"ranking":      u.Ranking,
		"students":     u.Students,
		"partnerships": u.Partnerships,
		"fields":       u.Fields,
		"location":     u.Location,
		"updated_at":   now,
	}
	if u.Website != "" {
		set["website"] = u.Website
	}
	if u.LogoURL != "" {
		set["logo_url"] = u.LogoURL
	}
	if u.Rating != nil {
		set["rating"] = *u.Rating
	}
	return set
}
