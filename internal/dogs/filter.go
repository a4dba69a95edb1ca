package dogs

import (
	"cmp"
	"slices"
	"strings"
)

// Filter fields are ANDed; empty means any.
type Filter struct {
	Breed         string
	Size          Size
	Sex           Sex
	Age           AgeCategory
	Country       string
	Organization  string
	OnlyAvailable bool
}

func (f Filter) Match(d Dog) bool {
	if f.Breed != "" && !strings.EqualFold(f.Breed, d.Breed) {
		return false
	}
	if f.Size != "" && f.Size != d.Size {
		return false
	}
	if f.Sex != "" && f.Sex != d.Sex {
		return false
	}
	if f.Age != "" && f.Age != d.Age {
		return false
	}
	if f.Country != "" && !strings.EqualFold(f.Country, d.Org.Country) {
		return false
	}
	if f.Organization != "" && f.Organization != d.Org.Slug {
		return false
	}
	if f.OnlyAvailable && !d.Available {
		return false
	}
	return true
}

func Apply(ds []Dog, f Filter) []Dog {
	out := make([]Dog, 0, len(ds))
	for _, d := range ds {
		if f.Match(d) {
			out = append(out, d)
		}
	}
	return out
}

type SortKey string

const (
	SortNewest   SortKey = "newest"
	SortOldest   SortKey = "oldest"
	SortNameAsc  SortKey = "name-asc"
	SortNameDesc SortKey = "name-desc"
)

func ParseSortKey(s string) SortKey {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortOldest, SortNameAsc, SortNameDesc:
		return k
	}
	return SortNewest
}

// Sort orders ds in place; equal elements keep their order.
func Sort(ds []Dog, key SortKey) {
	var fn func(a, b Dog) int
	switch key {
	case SortOldest:
		fn = func(a, b Dog) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case SortNameAsc:
		fn = func(a, b Dog) int { return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) }
	case SortNameDesc:
		fn = func(a, b Dog) int { return cmp.Compare(strings.ToLower(b.Name), strings.ToLower(a.Name)) }
	default:
		fn = func(a, b Dog) int { return b.CreatedAt.Compare(a.CreatedAt) }
	}
	slices.SortStableFunc(ds, fn)
}
