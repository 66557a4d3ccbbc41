package catalog

import (
	"strings"

	"uniscout-backend/internal/utils"
)

// RawUniversity is the shape served by the legacy directory API and used by
// the seed dataset: academic fields arrive as one boolean flag each.
type RawUniversity struct {
	ID              string   `json:"id" yaml:"id"`
	Name            string   `json:"name" yaml:"name"`
	Country         string   `json:"country" yaml:"country"`
	Region          string   `json:"region" yaml:"region"`
	Description     string   `json:"description" yaml:"description"`
	Website         string   `json:"website" yaml:"website"`
	LogoURL         string   `json:"logoUrl" yaml:"logoUrl"`
	Type            string   `json:"type" yaml:"type"`
	Size            string   `json:"size" yaml:"size"`
	Ranking         int      `json:"ranking" yaml:"ranking"`
	Rating          *float64 `json:"rating" yaml:"rating"`
	Students        int      `json:"students" yaml:"students"`
	Partnerships    int      `json:"partnerships" yaml:"partnerships"`
	Location        Location `json:"location" yaml:"location"`
	ComputerScience bool     `json:"computerScience" yaml:"computerScience"`
	Engineering     bool     `json:"engineering" yaml:"engineering"`
	Business        bool     `json:"business" yaml:"business"`
	Law             bool     `json:"law" yaml:"law"`
	Medicine        bool     `json:"medicine" yaml:"medicine"`
	NaturalSciences bool     `json:"naturalSciences" yaml:"naturalSciences"`
	SocialSciences  bool     `json:"socialSciences" yaml:"socialSciences"`
	Arts            bool     `json:"arts" yaml:"arts"`
	Education       bool     `json:"education" yaml:"education"`
	Agriculture     bool     `json:"agriculture" yaml:"agriculture"`
}

func (r RawUniversity) fieldFlags() []bool {
	return []bool{
		r.ComputerScience,
		r.Engineering,
		r.Business,
		r.Law,
		r.Medicine,
		r.NaturalSciences,
		r.SocialSciences,
		r.Arts,
		r.Education,
		r.Agriculture,
	}
}

// FromRaw converts a raw record, expanding the field flags into Fields in
// vocabulary order. The slug is always derived from the name; the id falls
// back to the slug when the raw record has none.
func FromRaw(r RawUniversity) University {
	fields := make([]string, 0, len(Vocabulary))
	for i, set := range r.fieldFlags() {
		if set {
			fields = append(fields, Vocabulary[i])
		}
	}

	name := strings.TrimSpace(r.Name)
	slug := utils.Slugify(name)
	id := strings.TrimSpace(r.ID)
	if id == "" {
		id = slug
	}

	return University{
		ID:           id,
		Slug:         slug,
		Name:         name,
		Country:      strings.TrimSpace(r.Country),
		Region:       strings.TrimSpace(r.Region),
		Description:  strings.TrimSpace(r.Description),
		Website:      strings.TrimSpace(r.Website),
		LogoURL:      strings.TrimSpace(r.LogoURL),
		Type:         strings.TrimSpace(r.Type),
		Size:         strings.TrimSpace(r.Size),
		Ranking:      r.Ranking,
		Rating:       r.Rating,
		Students:     r.Students,
		Partnerships: r.Partnerships,
		Fields:       fields,
		Location:     r.Location,
	}
}
