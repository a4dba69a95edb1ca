package seo

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/rescuedogs/rescue-edge/internal/dogs"
)

// MaxURLsPerSitemap is the sitemaps.org per-file limit.
const MaxURLsPerSitemap = 50000

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type ChangeFreq string

const (
	Daily   ChangeFreq = "daily"
	Weekly  ChangeFreq = "weekly"
	Monthly ChangeFreq = "monthly"
)

type URL struct {
	Loc        string
	LastMod    time.Time
	ChangeFreq ChangeFreq
	Priority   float64
}

type xmlURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority"`
}

type xmlURLSet struct {
	XMLName xml.Name `xml:"urlset"`
	NS      string   `xml:"xmlns,attr"`
	URLs    []xmlURL `xml:"url"`
}

type xmlSitemap struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

type xmlIndex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	NS       string       `xml:"xmlns,attr"`
	Sitemaps []xmlSitemap `xml:"sitemap"`
}

func lastmod(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// BuildSitemap renders a single urlset.
func BuildSitemap(urls []URL) ([]byte, error) {
	if len(urls) > MaxURLsPerSitemap {
		return nil, fmt.Errorf("sitemap holds at most %d urls, got %d", MaxURLsPerSitemap, len(urls))
	}
	set := xmlURLSet{NS: sitemapNS, URLs: make([]xmlURL, 0, len(urls))}
	for _, u := range urls {
		set.URLs = append(set.URLs, xmlURL{
			Loc:        u.Loc,
			LastMod:    lastmod(u.LastMod),
			ChangeFreq: string(u.ChangeFreq),
			Priority:   formatPriority(u.Priority),
		})
	}
	return marshal(set)
}

// BuildSitemaps splits urls into files of at most MaxURLsPerSitemap entries.
func BuildSitemaps(urls []URL) ([][]byte, error) {
	return buildSitemaps(urls, MaxURLsPerSitemap)
}

func buildSitemaps(urls []URL, per int) ([][]byte, error) {
	if len(urls) == 0 {
		b, err := BuildSitemap(nil)
		if err != nil {
			return nil, err
		}
		return [][]byte{b}, nil
	}
	var out [][]byte
	for start := 0; start < len(urls); start += per {
		end := min(start+per, len(urls))
		b, err := BuildSitemap(urls[start:end])
		if err != nil {
			return nil, fmt.Errorf("sitemap %d: %w", len(out)+1, err)
		}
		out = append(out, b)
	}
	return out, nil
}

// PartURL is the location of sitemap part n (1-based).
func PartURL(base string, n int) string {
	return fmt.Sprintf("%s/sitemaps/%d.xml", strings.TrimRight(base, "/"), n)
}

func BuildIndex(base string, n int, mod time.Time) ([]byte, error) {
	idx := xmlIndex{NS: sitemapNS, Sitemaps: make([]xmlSitemap, 0, n)}
	for i := 1; i <= n; i++ {
		idx.Sitemaps = append(idx.Sitemaps, xmlSitemap{Loc: PartURL(base, i), LastMod: lastmod(mod)})
	}
	return marshal(idx)
}

var staticPages = []URL{
	{Loc: "/", ChangeFreq: Daily, Priority: 1.0},
	{Loc: "/dogs", ChangeFreq: Daily, Priority: 0.9},
	{Loc: "/organizations", ChangeFreq: Weekly, Priority: 0.8},
	{Loc: "/favorites", ChangeFreq: Monthly, Priority: 0.3},
	{Loc: "/about", ChangeFreq: Monthly, Priority: 0.5},
	{Loc: "/faq", ChangeFreq: Monthly, Priority: 0.5},
}

// SiteURLs lists every indexable page. Unavailable dogs and records without
// a slug are left out.
func SiteURLs(site string, ds []dogs.Dog, orgs []dogs.Org, now time.Time) []URL {
	site = strings.TrimRight(site, "/")
	out := make([]URL, 0, len(staticPages)+len(ds)+len(orgs))
	for _, p := range staticPages {
		p.Loc = site + p.Loc
		p.LastMod = now
		out = append(out, p)
	}
	for _, d := range ds {
		if d.Slug == "" || !d.Available {
			continue
		}
		mod := d.CreatedAt
		if mod.IsZero() {
			mod = now
		}
		out = append(out, URL{Loc: site + "/dogs/" + d.Slug, LastMod: mod, ChangeFreq: Weekly, Priority: 0.8})
	}
	for _, o := range orgs {
		if o.Slug == "" {
			continue
		}
		out = append(out, URL{Loc: site + "/organizations/" + o.Slug, LastMod: now, ChangeFreq: Weekly, Priority: 0.7})
	}
	return out
}
