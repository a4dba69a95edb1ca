package imageurl

import (
	"strings"
)

// Segment marks an already-transformed URL.
const Segment = "/cdn-cgi/image/"

// Placeholder is served whenever an image URL is missing or unusable.
const Placeholder = "/images/dog-placeholder.png"

// DefaultSlowQuality replaces "auto" quality on slow connections.
const DefaultSlowQuality = 60

type Outcome string

const (
	OutcomeTransformed Outcome = "transformed"
	OutcomeUnchanged   Outcome = "unchanged"
	OutcomePassthrough Outcome = "passthrough"
	OutcomePlaceholder Outcome = "placeholder"
)

// Builder composes CDN transformation URLs for one domain.
type Builder struct {
	v           Validator
	slowQuality int
}

func NewBuilder(domain string, slowQuality int) *Builder {
	if slowQuality < 1 || slowQuality > 100 {
		slowQuality = DefaultSlowQuality
	}
	return &Builder{v: NewValidator(domain), slowQuality: slowQuality}
}

func (b *Builder) Validator() Validator { return b.v }

func (b *Builder) SlowQuality() int { return b.slowQuality }

// Compose splices the transformation segment between host and path. URLs
// already carrying a segment, and URLs that fail validation, come back as is.
func (b *Builder) Compose(raw, params string) string {
	if strings.Contains(raw, Segment) {
		return raw
	}
	if !b.v.IsValid(raw) || params == "" {
		return raw
	}
	u, _ := parseHTTP(raw)

	path := strings.TrimLeft(u.EscapedPath(), "/")
	var sb strings.Builder
	sb.Grow(len(raw) + len(Segment) + len(params) + 1)
	sb.WriteString(strings.ToLower(u.Scheme))
	sb.WriteString("://")
	sb.WriteString(u.Host)
	sb.WriteString(Segment)
	sb.WriteString(params)
	sb.WriteByte('/')
	sb.WriteString(path)
	if u.RawQuery != "" {
		sb.WriteByte('?')
		sb.WriteString(u.RawQuery)
	}
	return sb.String()
}

// Transform resolves raw to the URL a client should load.
func (b *Builder) Transform(raw, preset string, opts Options, slow bool) (string, Outcome) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Placeholder, OutcomePlaceholder
	}
	_, isHTTP := parseHTTP(raw)
	// site-relative assets are already local
	local := !isHTTP && strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//")
	if (!isHTTP && !local) || !IsSafePath(raw) {
		return Placeholder, OutcomePlaceholder
	}
	if strings.Contains(raw, Segment) {
		return raw, OutcomeUnchanged
	}
	if local {
		return raw, OutcomePassthrough
	}
	if !b.v.IsTrustedHost(raw) {
		return raw, OutcomePassthrough
	}
	return b.Compose(raw, BuildParams(preset, opts, slow, b.slowQuality)), OutcomeTransformed
}
