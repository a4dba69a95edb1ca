package imageurl

import (
	"strconv"
	"strings"
)

// Options override preset fields; zero values inherit.
type Options struct {
	Width   int
	Height  int
	Fit     FitMode
	Quality string
	Format  string
}

// Key serializes the options deterministically for cache keys.
func (o Options) Key() string {
	return "w=" + strconv.Itoa(o.Width) +
		";h=" + strconv.Itoa(o.Height) +
		";fit=" + string(o.Fit) +
		";q=" + o.Quality +
		";f=" + o.Format
}

// BuildParams resolves preset and overrides into "w=..,h=..,fit=..,quality=..".
// On a slow connection an "auto" quality is replaced by slowQuality.
func BuildParams(preset string, opts Options, slow bool, slowQuality int) string {
	p, _ := LookupPreset(preset)

	if opts.Width > 0 {
		p.Width = opts.Width
	}
	if opts.Height > 0 {
		p.Height = opts.Height
	}
	if opts.Fit.Valid() {
		p.Fit = opts.Fit
	}
	if opts.Quality != "" && ValidQuality(opts.Quality) {
		p.Quality = opts.Quality
	}
	if slow && p.Quality == QualityAuto {
		p.Quality = strconv.Itoa(slowQuality)
	}

	parts := make([]string, 0, 5)
	if p.Width > 0 {
		parts = append(parts, "w="+strconv.Itoa(p.Width))
	}
	if p.Height > 0 {
		parts = append(parts, "h="+strconv.Itoa(p.Height))
	}
	if p.Fit != "" {
		parts = append(parts, "fit="+string(p.Fit))
	}
	if p.Quality != "" {
		parts = append(parts, "quality="+p.Quality)
	}
	if f := sanitizeFormat(opts.Format); f != "" {
		parts = append(parts, "format="+f)
	}
	return strings.Join(parts, ",")
}

func sanitizeFormat(f string) string {
	switch f = strings.ToLower(strings.TrimSpace(f)); f {
	case "auto", "webp", "avif", "jpeg", "png":
		return f
	}
	return ""
}
