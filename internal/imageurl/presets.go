// Package imageurl turns original image URLs on the image CDN into resized
// variants using the /cdn-cgi/image/<params>/ path convention.
package imageurl

import "strconv"

type FitMode string

const (
	FitCover     FitMode = "cover"
	FitContain   FitMode = "contain"
	FitScaleDown FitMode = "scale-down"
	FitCrop      FitMode = "crop"
	FitPad       FitMode = "pad"
)

func (f FitMode) Valid() bool {
	switch f {
	case FitCover, FitContain, FitScaleDown, FitCrop, FitPad:
		return true
	}
	return false
}

// QualityAuto lets the CDN pick a quality per client.
const QualityAuto = "auto"

// Preset is a named transformation.
type Preset struct {
	Name    string
	Width   int
	Height  int
	Fit     FitMode
	Quality string
}

const (
	Catalog   = "catalog"
	Hero      = "hero"
	Thumbnail = "thumbnail"
	Mobile    = "mobile"
)

var presets = map[string]Preset{
	Catalog:   {Name: Catalog, Width: 400, Height: 300, Fit: FitCover, Quality: QualityAuto},
	Hero:      {Name: Hero, Width: 800, Height: 600, Fit: FitContain, Quality: QualityAuto},
	Thumbnail: {Name: Thumbnail, Width: 60, Height: 60, Fit: FitCover, Quality: QualityAuto},
	Mobile:    {Name: Mobile, Width: 320, Height: 240, Fit: FitCover, Quality: "70"},
}

// LookupPreset returns the named preset, falling back to catalog for
// unknown names. ok reports whether the name was known.
func LookupPreset(name string) (p Preset, ok bool) {
	if p, ok := presets[name]; ok {
		return p, true
	}
	return presets[Catalog], false
}

// PresetNames lists the presets in a fixed order.
func PresetNames() []string {
	return []string{Catalog, Hero, Thumbnail, Mobile}
}

// ValidQuality reports whether q is "auto" or an integer in 1..100.
func ValidQuality(q string) bool {
	if q == QualityAuto {
		return true
	}
	n, err := strconv.Atoi(q)
	return err == nil && n >= 1 && n <= 100
}
