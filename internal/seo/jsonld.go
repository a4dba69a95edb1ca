// Package seo builds Schema.org JSON-LD documents and sitemaps.
package seo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rescuedogs/rescue-edge/internal/content"
	"github.com/rescuedogs/rescue-edge/internal/dogs"
	"github.com/rescuedogs/rescue-edge/internal/imageurl"
)

const (
	schemaContext  = "https://schema.org"
	inStock        = "https://schema.org/InStock"
	soldOut        = "https://schema.org/SoldOut"
	descriptionLen = 300
)

type Thing struct {
	Type string `json:"@type"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

type Offer struct {
	Type          string `json:"@type"`
	Availability  string `json:"availability"`
	Price         string `json:"price"`
	PriceCurrency string `json:"priceCurrency"`
	URL           string `json:"url,omitempty"`
}

type PropertyValue struct {
	Type  string `json:"@type"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Product struct {
	Context     string          `json:"@context"`
	Type        string          `json:"@type"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	URL         string          `json:"url"`
	Category    string          `json:"category"`
	Brand       Thing           `json:"brand"`
	Offers      Offer           `json:"offers"`
	Properties  []PropertyValue `json:"additionalProperty,omitempty"`
}

type PostalAddress struct {
	Type     string `json:"@type"`
	Locality string `json:"addressLocality,omitempty"`
	Country  string `json:"addressCountry,omitempty"`
}

type AnimalShelter struct {
	Context     string        `json:"@context"`
	Type        string        `json:"@type"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	URL         string        `json:"url"`
	Logo        string        `json:"logo,omitempty"`
	SameAs      []string      `json:"sameAs,omitempty"`
	Address     PostalAddress `json:"address"`
	Items       int           `json:"numberOfItems"`
	AreaServed  []string      `json:"areaServed,omitempty"`
}

type ListItem struct {
	Type     string `json:"@type"`
	Position int    `json:"position"`
	Name     string `json:"name"`
	Item     string `json:"item,omitempty"`
}

type BreadcrumbList struct {
	Context string     `json:"@context"`
	Type    string     `json:"@type"`
	Items   []ListItem `json:"itemListElement"`
}

type Answer struct {
	Type string `json:"@type"`
	Text string `json:"text"`
}

type Question struct {
	Type   string `json:"@type"`
	Name   string `json:"name"`
	Answer Answer `json:"acceptedAnswer"`
}

type FAQPage struct {
	Context   string     `json:"@context"`
	Type      string     `json:"@type"`
	Questions []Question `json:"mainEntity"`
}

// Crumb is one breadcrumb; the last one usually has no URL.
type Crumb struct {
	Name string
	URL  string
}

type QA struct {
	Question string
	Answer   string
}

type Generator struct {
	site   string
	images *imageurl.Builder
}

func New(site string, images *imageurl.Builder) *Generator {
	return &Generator{site: strings.TrimRight(site, "/"), images: images}
}

func (g *Generator) Site() string { return g.site }

func (g *Generator) DogURL(slug string) string { return g.site + "/dogs/" + slug }

func (g *Generator) OrgURL(slug string) string { return g.site + "/organizations/" + slug }

func (g *Generator) absolute(u string) string {
	if strings.HasPrefix(u, "/") && !strings.HasPrefix(u, "//") {
		return g.site + u
	}
	return u
}

func (g *Generator) DogProduct(d dogs.Dog) Product {
	img, _ := g.images.Transform(d.ImageURL, imageurl.Hero, imageurl.Options{}, false)

	name := d.Name
	if d.Breed != dogs.UnknownBreed {
		name = d.Name + " - " + d.Breed
	}
	fallback := fmt.Sprintf("%s is a %s looking for a home with %s.", d.Name, strings.ToLower(d.Breed), d.Org.Name)
	if d.Breed == dogs.UnknownBreed {
		fallback = fmt.Sprintf("%s is looking for a home with %s.", d.Name, d.Org.Name)
	}

	avail := soldOut
	if d.Available {
		avail = inStock
	}
	p := Product{
		Context:     schemaContext,
		Type:        "Product",
		Name:        name,
		Description: content.MetaDescription(d.Description, fallback, descriptionLen),
		Image:       g.absolute(img),
		URL:         g.DogURL(d.Slug),
		Category:    "Pets > Dogs",
		Brand:       Thing{Type: "Organization", Name: d.Org.Name, URL: d.Org.Website},
		Offers: Offer{
			Type:          "Offer",
			Availability:  avail,
			Price:         "0",
			PriceCurrency: "EUR",
			URL:           d.AdoptionURL,
		},
	}
	add := func(name, v string) {
		if v != "" && v != "unknown" {
			p.Properties = append(p.Properties, PropertyValue{Type: "PropertyValue", Name: name, Value: v})
		}
	}
	add("Size", string(d.Size))
	add("Sex", string(d.Sex))
	add("Age", string(d.Age))
	return p
}

func (g *Generator) Shelter(o dogs.Org) AnimalShelter {
	s := AnimalShelter{
		Context:     schemaContext,
		Type:        "AnimalShelter",
		Name:        o.Name,
		Description: content.Truncate(content.Sanitize(o.Description), descriptionLen),
		URL:         g.OrgURL(o.Slug),
		Logo:        o.LogoURL,
		Address:     PostalAddress{Type: "PostalAddress", Locality: o.City, Country: o.Country},
		Items:       o.TotalDogs,
		AreaServed:  o.ShipsTo,
	}
	if o.Website != "" {
		s.SameAs = []string{o.Website}
	}
	return s
}

// DogBreadcrumbs is Home > Dogs > name.
func (g *Generator) DogBreadcrumbs(d dogs.Dog) BreadcrumbList {
	return Breadcrumbs([]Crumb{
		{Name: "Home", URL: g.site + "/"},
		{Name: "Dogs", URL: g.site + "/dogs"},
		{Name: d.Name, URL: g.DogURL(d.Slug)},
	})
}

func Breadcrumbs(items []Crumb) BreadcrumbList {
	b := BreadcrumbList{Context: schemaContext, Type: "BreadcrumbList", Items: make([]ListItem, 0, len(items))}
	for i, c := range items {
		b.Items = append(b.Items, ListItem{Type: "ListItem", Position: i + 1, Name: c.Name, Item: c.URL})
	}
	return b
}

func FAQ(pairs []QA) FAQPage {
	f := FAQPage{Context: schemaContext, Type: "FAQPage", Questions: make([]Question, 0, len(pairs))}
	for _, p := range pairs {
		q, a := strings.TrimSpace(p.Question), content.SanitizeHTML(p.Answer)
		if q == "" || a == "" {
			continue
		}
		f.Questions = append(f.Questions, Question{
			Type:   "Question",
			Name:   q,
			Answer: Answer{Type: "Answer", Text: a},
		})
	}
	return f
}

// Script renders v inside a JSON-LD script tag. "<", ">" and "&" are
// emitted as unicode escapes so the payload cannot close the tag.
func Script(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal json-ld: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString(`<script type="application/ld+json">`)
	buf.Write(b)
	buf.WriteString(`</script>`)
	return buf.String(), nil
}

func formatPriority(p float64) string {
	switch {
	case p < 0:
		p = 0
	case p > 1:
		p = 1
	}
	return strconv.FormatFloat(p, 'f', 1, 64)
}
