package imageurl

import (
	"strconv"
	"strings"
)

// ResponsiveSet is the src/srcset/sizes triple for a catalog card image.
type ResponsiveSet struct {
	Src    string `json:"src"`
	SrcSet string `json:"srcset,omitempty"`
	Sizes  string `json:"sizes,omitempty"`
}

const cardSizes = "(max-width: 640px) 320px, (max-width: 1024px) 400px, 800px"

// Responsive builds mobile/catalog/hero width descriptors. Non-transformable
// URLs get a bare src.
func (b *Builder) Responsive(raw string, slow bool) ResponsiveSet {
	src, out := b.Transform(raw, Catalog, Options{}, slow)
	if out != OutcomeTransformed {
		return ResponsiveSet{Src: src}
	}
	variants := make([]string, 0, 3)
	for _, name := range []string{Mobile, Catalog, Hero} {
		p, _ := LookupPreset(name)
		u, _ := b.Transform(raw, name, Options{}, slow)
		variants = append(variants, u+" "+strconv.Itoa(p.Width)+"w")
	}
	return ResponsiveSet{
		Src:    src,
		SrcSet: strings.Join(variants, ", "),
		Sizes:  cardSizes,
	}
}
