package imagecache

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/rescuedogs/rescue-edge/internal/imageurl"
)

// KeyPrefix starts every image URL cache key.
const KeyPrefix = "img:"

// Key builds img:<hash(src)>:<preset>:<options>:<connection>. Entries for one
// source share the SourcePrefix so they can be purged together.
func Key(src, preset string, opts imageurl.Options, conn imageurl.ConnectionClass) string {
	return fmt.Sprintf("%s%s:%s:%s", SourcePrefix(src), sanitize(preset), sanitize(opts.Key()), conn)
}

func SourcePrefix(src string) string {
	return fmt.Sprintf("%s%016x:", KeyPrefix, xxhash.Sum64String(strings.TrimSpace(src)))
}

// keeps keys printable and free of the ':' separator
func sanitize(s string) string {
	if s == "" {
		return "-"
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '=', r == ';', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Scope identifies the composition settings behind a URL. Deployments with a
// different CDN domain or slow quality get a different scope.
func Scope(domain string, slowQuality int) string {
	h := xxhash.Sum64String(strings.ToLower(strings.TrimSpace(domain)) + "|" + strconv.Itoa(slowQuality))
	return fmt.Sprintf("%08x", uint32(h))
}

// Scoped rewrites img:<rest> as img:<scope>:<rest>. It also accepts
// SourcePrefix and KeyPrefix for prefix deletes.
func Scoped(scope, key string) string {
	return KeyPrefix + scope + ":" + strings.TrimPrefix(key, KeyPrefix)
}
