// Package dogs holds the backend wire types for dogs and organizations and
// the coercion into the shapes the rest of the service works with.
package dogs

import "time"

// Animal is a dog as returned by the backend API. Every field may be absent.
type Animal struct {
	ID                int64          `json:"id"`
	Slug              string         `json:"slug"`
	Name              *string        `json:"name"`
	Breed             *string        `json:"breed"`
	StandardizedBreed *string        `json:"standardized_breed"`
	Sex               *string        `json:"sex"`
	Size              *string        `json:"size"`
	StandardizedSize  *string        `json:"standardized_size"`
	AgeMinMonths      *int           `json:"age_min_months"`
	AgeMaxMonths      *int           `json:"age_max_months"`
	PrimaryImageURL   *string        `json:"primary_image_url"`
	AdoptionURL       *string        `json:"adoption_url"`
	Status            *string        `json:"status"`
	CreatedAt         *string        `json:"created_at"`
	Properties        map[string]any `json:"properties"`
	Organization      *Organization  `json:"organization"`
}

type Organization struct {
	ID          int64    `json:"id"`
	Slug        string   `json:"slug"`
	Name        *string  `json:"name"`
	WebsiteURL  *string  `json:"website_url"`
	Description *string  `json:"description"`
	City        *string  `json:"city"`
	Country     *string  `json:"country"`
	LogoURL     *string  `json:"logo_url"`
	TotalDogs   *int     `json:"total_dogs"`
	ShipsTo     []string `json:"ships_to"`
	CreatedAt   *string  `json:"created_at"`
}

type Size string

const (
	SizeTiny    Size = "tiny"
	SizeSmall   Size = "small"
	SizeMedium  Size = "medium"
	SizeLarge   Size = "large"
	SizeXLarge  Size = "xlarge"
	SizeUnknown Size = "unknown"
)

type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

type AgeCategory string

const (
	AgePuppy   AgeCategory = "puppy"
	AgeYoung   AgeCategory = "young"
	AgeAdult   AgeCategory = "adult"
	AgeSenior  AgeCategory = "senior"
	AgeUnknown AgeCategory = "unknown"
)

// Dog is the normalized form of Animal.
type Dog struct {
	ID          int64       `json:"id"`
	Slug        string      `json:"slug"`
	Name        string      `json:"name"`
	Breed       string      `json:"breed"`
	Sex         Sex         `json:"sex"`
	Size        Size        `json:"size"`
	AgeMonths   int         `json:"age_months,omitempty"`
	Age         AgeCategory `json:"age_category"`
	ImageURL    string      `json:"image_url,omitempty"`
	AdoptionURL string      `json:"adoption_url,omitempty"`
	Description string      `json:"description,omitempty"`
	Available   bool        `json:"available"`
	CreatedAt   time.Time   `json:"created_at"`
	Org         Org         `json:"organization"`
}

type Org struct {
	ID          int64     `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Website     string    `json:"website,omitempty"`
	Description string    `json:"description,omitempty"`
	City        string    `json:"city,omitempty"`
	Country     string    `json:"country,omitempty"`
	LogoURL     string    `json:"logo_url,omitempty"`
	TotalDogs   int       `json:"total_dogs"`
	ShipsTo     []string  `json:"ships_to,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
