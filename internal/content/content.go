// Package content cleans backend-supplied descriptions for display and SEO.
package content

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

const MinMeaningfulLength = 20

var (
	strict = newStrictPolicy()
	ugc    = newUGCPolicy()
	spaces = regexp.MustCompile(`\s+`)
)

func newStrictPolicy() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return p
}

func newUGCPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// Sanitize reduces s to plain text with collapsed whitespace.
func Sanitize(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	out := html.UnescapeString(strict.Sanitize(s))
	return strings.TrimSpace(spaces.ReplaceAllString(out, " "))
}

// SanitizeHTML keeps basic formatting markup; links get rel="nofollow".
func SanitizeHTML(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return strings.TrimSpace(ugc.Sanitize(s))
}

// Descriptions organizations paste when they have nothing to say.
var fallbackPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(no|without) (description|details|info(rmation)?)( available| yet| provided)?\.?$`),
	regexp.MustCompile(`(?i)^(description|details|more info(rmation)?|profile) (coming soon|to follow|tbc|tba)\.?$`),
	regexp.MustCompile(`(?i)^(please )?(contact|ask|call|email) (us|the (rescue|shelter|organi[sz]ation))( for (more )?(details|info(rmation)?))?\.?$`),
	regexp.MustCompile(`(?i)^(tbd|tba|tbc|n/?a|none|null|undefined|-+|\.+)$`),
	regexp.MustCompile(`(?i)lorem ipsum`),
	regexp.MustCompile(`(?i)^(this|the) (dog|pup|puppy) is (looking for|waiting for|in need of) (a|his|her|their) (forever |new )?home\.?$`),
}

// IsMeaningful reports whether desc is real content rather than filler.
func IsMeaningful(desc string) bool {
	text := Sanitize(desc)
	if utf8.RuneCountInString(text) < MinMeaningfulLength {
		return false
	}
	for _, re := range fallbackPatterns {
		if re.MatchString(text) {
			return false
		}
	}
	return true
}

// Truncate cuts s to at most n runes at a word boundary, adding "…".
func Truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	cut := string(r[:n-1])
	if i := strings.LastIndexAny(cut, " \t\n"); i > len(cut)/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:-") + "…"
}

// MetaDescription picks the description when meaningful, else fallback.
func MetaDescription(desc, fallback string, n int) string {
	if IsMeaningful(desc) {
		return Truncate(Sanitize(desc), n)
	}
	return Truncate(fallback, n)
}
