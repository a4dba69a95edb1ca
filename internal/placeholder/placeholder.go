// Package placeholder renders the image served when a dog has no usable photo.
package placeholder

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
	lru "github.com/hashicorp/golang-lru/v2"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/rescuedogs/rescue-edge/internal/imageurl"
)

const DefaultColor = "#f3efe9"

const motifSize = 128

type Renderer struct {
	bg    colorful.Color
	hex   string
	cache *lru.Cache[string, []byte]
}

// ParseColor accepts #rrggbb (or #rgb); anything else yields DefaultColor.
func ParseColor(s string) colorful.Color {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if c, err := colorful.Hex(s); err == nil {
		return c
	}
	c, _ := colorful.Hex(DefaultColor)
	return c
}

func New(bg string) *Renderer {
	c := ParseColor(bg)
	cache, _ := lru.New[string, []byte](16)
	return &Renderer{bg: c, hex: c.Hex(), cache: cache}
}

func (r *Renderer) Color() string { return r.hex }

// PNG renders the placeholder at the preset's size. Results are memoized
// per preset.
func (r *Renderer) PNG(preset string) ([]byte, error) {
	p, _ := imageurl.LookupPreset(preset)
	key := p.Name + r.hex
	if b, ok := r.cache.Get(key); ok {
		return b, nil
	}
	img := r.Render(p.Width, p.Height)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode placeholder: %w", err)
	}
	b := buf.Bytes()
	r.cache.Add(key, b)
	return b, nil
}

func (r *Renderer) Render(w, h int) *image.NRGBA {
	w, h = max(w, 1), max(h, 1)
	canvas := imaging.New(w, h, toNRGBA(r.bg))

	side := min(w, h) / 2
	if side < 8 {
		return canvas
	}
	ink := r.bg.BlendLab(colorful.Color{}, 0.18).Clamped()
	motif := imaging.Resize(paw(toNRGBA(ink)), side, side, imaging.Lanczos)
	return imaging.OverlayCenter(canvas, motif, 1.0)
}

func toNRGBA(c colorful.Color) color.NRGBA {
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}

// paw draws a pad and four toes on a transparent square.
func paw(ink color.NRGBA) *image.NRGBA {
	img := imaging.New(motifSize, motifSize, color.NRGBA{})
	s := float64(motifSize)
	disc(img, 0.50*s, 0.68*s, 0.24*s, ink)
	disc(img, 0.20*s, 0.42*s, 0.10*s, ink)
	disc(img, 0.38*s, 0.22*s, 0.11*s, ink)
	disc(img, 0.62*s, 0.22*s, 0.11*s, ink)
	disc(img, 0.80*s, 0.42*s, 0.10*s, ink)
	return img
}

func disc(img *image.NRGBA, cx, cy, radius float64, c color.NRGBA) {
	b := img.Bounds()
	r2 := radius * radius
	for y := b.Min.Y; y < b.Max.Y; y++ {
		dy := float64(y) + 0.5 - cy
		for x := b.Min.X; x < b.Max.X; x++ {
			dx := float64(x) + 0.5 - cx
			if dx*dx+dy*dy <= r2 {
				img.SetNRGBA(x, y, c)
			}
		}
	}
}
