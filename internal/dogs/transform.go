package dogs

import (
	"strings"
	"time"
)

const (
	UnnamedDog   = "Unnamed"
	UnknownBreed = "Unknown"
	UnknownOrg   = "Unknown Organization"
)

func str(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func parseTime(p *string) time.Time {
	s := str(p)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

var sizeAliases = map[string]Size{
	"tiny":        SizeTiny,
	"toy":         SizeTiny,
	"extra small": SizeTiny,
	"small":       SizeSmall,
	"medium":      SizeMedium,
	"mid":         SizeMedium,
	"large":       SizeLarge,
	"big":         SizeLarge,
	"xlarge":      SizeXLarge,
	"extra large": SizeXLarge,
	"x-large":     SizeXLarge,
	"giant":       SizeXLarge,
}

func NormalizeSize(s string) Size {
	s = strings.ToLower(strings.TrimSpace(s))
	if v, ok := sizeAliases[s]; ok {
		return v
	}
	return SizeUnknown
}

func NormalizeSex(s string) Sex {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m", "boy", "macho":
		return SexMale
	case "female", "f", "girl", "hembra":
		return SexFemale
	}
	return SexUnknown
}

func CategorizeAge(months int) AgeCategory {
	switch {
	case months <= 0:
		return AgeUnknown
	case months < 12:
		return AgePuppy
	case months < 36:
		return AgeYoung
	case months < 96:
		return AgeAdult
	}
	return AgeSenior
}

// ToDog coerces a backend animal. Missing fields get fallbacks, never errors.
func ToDog(a Animal) Dog {
	d := Dog{
		ID:          a.ID,
		Slug:        strings.TrimSpace(a.Slug),
		Name:        firstNonEmpty(str(a.Name), UnnamedDog),
		Breed:       firstNonEmpty(str(a.StandardizedBreed), str(a.Breed), UnknownBreed),
		Sex:         NormalizeSex(str(a.Sex)),
		Size:        NormalizeSize(firstNonEmpty(str(a.StandardizedSize), str(a.Size))),
		ImageURL:    str(a.PrimaryImageURL),
		AdoptionURL: str(a.AdoptionURL),
		CreatedAt:   parseTime(a.CreatedAt),
	}
	switch st := strings.ToLower(str(a.Status)); st {
	case "", "available":
		d.Available = true
	}
	if a.AgeMinMonths != nil && *a.AgeMinMonths > 0 {
		d.AgeMonths = *a.AgeMinMonths
	} else if a.AgeMaxMonths != nil && *a.AgeMaxMonths > 0 {
		d.AgeMonths = *a.AgeMaxMonths
	}
	d.Age = CategorizeAge(d.AgeMonths)
	if desc, ok := a.Properties["description"].(string); ok {
		d.Description = strings.TrimSpace(desc)
	}
	if a.Organization != nil {
		d.Org = ToOrg(*a.Organization)
	} else {
		d.Org = Org{Name: UnknownOrg}
	}
	return d
}

func ToDogs(as []Animal) []Dog {
	out := make([]Dog, 0, len(as))
	for _, a := range as {
		out = append(out, ToDog(a))
	}
	return out
}

func ToOrg(o Organization) Org {
	total := 0
	if o.TotalDogs != nil && *o.TotalDogs > 0 {
		total = *o.TotalDogs
	}
	var ships []string
	for _, c := range o.ShipsTo {
		if c = strings.ToUpper(strings.TrimSpace(c)); c != "" {
			ships = append(ships, c)
		}
	}
	return Org{
		ID:          o.ID,
		Slug:        strings.TrimSpace(o.Slug),
		Name:        firstNonEmpty(str(o.Name), UnknownOrg),
		Website:     str(o.WebsiteURL),
		Description: str(o.Description),
		City:        str(o.City),
		Country:     strings.ToUpper(str(o.Country)),
		LogoURL:     str(o.LogoURL),
		TotalDogs:   total,
		ShipsTo:     ships,
		CreatedAt:   parseTime(o.CreatedAt),
	}
}
