package imageurl

import (
	"net"
	"net/url"
	"strings"
)

// Checked against the lower-cased raw path and its decoded form.
var traversalPatterns = []string{
	"../",
	"..\\",
	"%2e%2e",
	"%2e%2e%2f",
	"..%2f",
	"%2e%2e/",
	"%252e",
	"%5c",
	"\x00",
}

// Validator classifies URLs against a single trusted CDN host.
type Validator struct {
	domain string
}

func NewValidator(domain string) Validator {
	return Validator{domain: strings.ToLower(strings.TrimSpace(domain))}
}

func (v Validator) Domain() string { return v.domain }

// IsTrustedHost reports whether raw is an http(s) URL on the CDN domain.
func (v Validator) IsTrustedHost(raw string) bool {
	u, ok := parseHTTP(raw)
	if !ok || v.domain == "" {
		return false
	}
	return hostOnly(u.Host) == v.domain
}

// IsSafePath reports whether the path of raw is free of traversal sequences.
func IsSafePath(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	candidates := []string{strings.ToLower(u.EscapedPath()), strings.ToLower(u.Path)}
	if dec, err := url.PathUnescape(u.EscapedPath()); err == nil {
		candidates = append(candidates, strings.ToLower(dec))
	}
	for _, c := range candidates {
		for _, p := range traversalPatterns {
			if strings.Contains(c, p) {
				return false
			}
		}
		if strings.HasSuffix(c, "/..") {
			return false
		}
	}
	return true
}

func (v Validator) IsValid(raw string) bool {
	return v.IsTrustedHost(raw) && IsSafePath(raw)
}

func parseHTTP(raw string) (*url.URL, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u, true
	default:
		return nil, false
	}
}

func hostOnly(hostport string) string {
	h := hostport
	if host, _, err := net.SplitHostPort(hostport); err == nil {
		h = host
	}
	return strings.ToLower(strings.TrimSuffix(h, "."))
}
