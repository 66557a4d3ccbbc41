package catalog

import "time"

const (
	TypePublic        = "Public"
	TypePrivate       = "Private"
	TypeInternational = "International"
	TypeAcademy       = "Academy"

	SizeSmall      = "Small"
	SizeMedium     = "Medium"
	SizeLarge      = "Large"
	SizeExtraLarge = "ExtraLarge"
)

const (
	FieldComputerScience = "Computer Science"
	FieldEngineering     = "Engineering & Technology"
	FieldBusiness        = "Business & Economics"
	FieldLaw             = "Law & Political Science"
	FieldMedicine        = "Medicine, Pharmacy & Health Sciences"
	FieldNaturalSciences = "Natural Sciences"
	FieldSocialSciences  = "Social Sciences & Humanities"
	FieldArts            = "Arts & Design"
	FieldEducation       = "Education"
	FieldAgriculture     = "Agriculture & Environment"
)

// Vocabulary is the controlled list of academic fields, in display order.
var Vocabulary = []string{
	FieldComputerScience,
	FieldEngineering,
	FieldBusiness,
	FieldLaw,
	FieldMedicine,
	FieldNaturalSciences,
	FieldSocialSciences,
	FieldArts,
	FieldEducation,
	FieldAgriculture,
}

var (
	Types = []string{TypePublic, TypePrivate, TypeInternational, TypeAcademy}
	Sizes = []string{SizeSmall, SizeMedium, SizeLarge, SizeExtraLarge}
)

type Location struct {
	Lat float64 `bson:"lat" json:"lat" yaml:"lat"`
	Lng float64 `bson:"lng" json:"lng" yaml:"lng"`
}

type University struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	Slug         string    `bson:"slug" json:"slug"`
	Name         string    `bson:"name" json:"name"`
	Country      string    `bson:"country" json:"country"`
	Region       string    `bson:"region" json:"region"`
	Description  string    `bson:"description" json:"description"`
	Website      string    `bson:"website,omitempty" json:"website,omitempty"`
	LogoURL      string    `bson:"logo_url,omitempty" json:"logoUrl,omitempty"`
	Type         string    `bson:"type" json:"type"`
	Size         string    `bson:"size" json:"size"`
	Ranking      int       `bson:"ranking" json:"ranking"`
	Rating       *float64  `bson:"rating,omitempty" json:"rating,omitempty"`
	Students     int       `bson:"students" json:"students"`
	Partnerships int       `bson:"partnerships" json:"partnerships"`
	Fields       []string  `bson:"fields" json:"fields"`
	Location     Location  `bson:"location" json:"location"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updatedAt"`
}

// HasField reports whether field is one of u's academic fields.
func (u University) HasField(field string) bool {
	for _, f := range u.Fields {
		if f == field {
			return true
		}
	}
	return false
}

type UpsertRequest struct {
	Name         string   `json:"name" validate:"required,max=255"`
	Slug         string   `json:"slug" validate:"omitempty,max=255"`
	Country      string   `json:"country" validate:"required"`
	Region       string   `json:"region"`
	Description  string   `json:"description"`
	Website      string   `json:"website" validate:"omitempty,url"`
	LogoURL      string   `json:"logoUrl" validate:"omitempty,url"`
	Type         string   `json:"type" validate:"required,oneof=Public Private International Academy"`
	Size         string   `json:"size" validate:"required,oneof=Small Medium Large ExtraLarge"`
	Ranking      int      `json:"ranking" validate:"required,gt=0"`
	Rating       *float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
	Students     int      `json:"students" validate:"gte=0"`
	Partnerships int      `json:"partnerships" validate:"gte=0"`
	Fields       []string `json:"fields" validate:"omitempty,dive,academic_field"`
	Location     Location `json:"location"`
}
