// Package resolver serves image URL requests through the memory and shared
// cache tiers, composing on a miss.
package resolver

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/rescuedogs/rescue-edge/internal/cache"
	"github.com/rescuedogs/rescue-edge/internal/core/observability"
	"github.com/rescuedogs/rescue-edge/internal/imagecache"
	"github.com/rescuedogs/rescue-edge/internal/imageurl"
	mylog "github.com/rescuedogs/rescue-edge/internal/logger"
)

type Request struct {
	Src     string
	Preset  string
	Options imageurl.Options
	Conn    imageurl.ConnectionClass
}

type Result struct {
	URL      string `json:"url"`
	Cache    string `json:"cache"`
	Outcome  string `json:"outcome"`
	Fallback bool   `json:"fallback"`
}

const (
	CacheHit   = "hit"
	CacheL2Hit = "l2_hit"
	CacheMiss  = "miss"
)

type Options struct {
	Logger *slog.Logger
	// Shared is optional; nil keeps resolution in-process.
	Shared    cache.Shared
	TTL       time.Duration
	OpTimeout time.Duration
}

type Resolver struct {
	log       *slog.Logger
	builder   *imageurl.Builder
	mem       *imagecache.Cache
	shared    cache.Shared
	scope     string
	ttl       time.Duration
	opTimeout time.Duration
}

func New(b *imageurl.Builder, mem *imagecache.Cache, opts Options) *Resolver {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	return &Resolver{
		log:       opts.Logger,
		builder:   b,
		mem:       mem,
		shared:    opts.Shared,
		scope:     imagecache.Scope(b.Validator().Domain(), b.SlowQuality()),
		ttl:       opts.TTL,
		opTimeout: opts.OpTimeout,
	}
}

func (r *Resolver) Builder() *imageurl.Builder { return r.builder }

func (r *Resolver) Cache() *imagecache.Cache { return r.mem }

// Resolve never fails: shared-tier errors are logged and the URL is composed.
func (r *Resolver) Resolve(ctx context.Context, req Request) Result {
	if _, known := imageurl.LookupPreset(req.Preset); !known {
		req.Preset = imageurl.Catalog
	}
	if req.Conn == "" {
		req.Conn = imageurl.ConnUnknown
	}
	ctx = mylog.WithImage(ctx, req.Preset, string(req.Conn))
	key := imagecache.Key(req.Src, req.Preset, req.Options, req.Conn)

	if v, ok := r.mem.Get(key); ok {
		return decodeEntry(v, CacheHit)
	}

	if r.shared != nil {
		octx, cancel := r.withTimeout(ctx)
		v, ok, err := r.shared.Get(octx, imagecache.Scoped(r.scope, key))
		cancel()
		switch {
		case err != nil:
			r.log.WarnContext(ctx, "shared cache get failed", "err", err)
		case ok:
			r.mem.Add(key, v)
			return decodeEntry(v, CacheL2Hit)
		}
	}

	url, outcome := r.builder.Transform(req.Src, req.Preset, req.Options, req.Conn.Slow())
	observability.IncResolution(string(outcome))

	// placeholder answers are not memoized so a fixed source recovers at once
	if outcome != imageurl.OutcomePlaceholder {
		entry := encodeEntry(outcome, url)
		r.mem.Add(key, entry)
		if r.shared != nil {
			octx, cancel := r.withTimeout(ctx)
			if err := r.shared.Set(octx, imagecache.Scoped(r.scope, key), entry, r.ttl); err != nil {
				r.log.WarnContext(ctx, "shared cache set failed", "err", err)
			}
			cancel()
		}
	} else {
		r.log.DebugContext(ctx, "image url fell back to placeholder", "src", req.Src)
	}

	return Result{
		URL:      url,
		Cache:    CacheMiss,
		Outcome:  string(outcome),
		Fallback: outcome == imageurl.OutcomePlaceholder,
	}
}

// Invalidate drops every cached variant of src from both tiers.
func (r *Resolver) Invalidate(ctx context.Context, src string) (int, error) {
	n := r.mem.PurgeSource(src)
	if r.shared == nil {
		return n, nil
	}
	octx, cancel := r.withTimeout(ctx)
	defer cancel()
	m, err := r.shared.DelPrefix(octx, imagecache.Scoped(r.scope, imagecache.SourcePrefix(src)))
	return n + m, err
}

// InvalidateAll clears the memory tier and this deployment's keys in the
// shared tier.
func (r *Resolver) InvalidateAll(ctx context.Context) error {
	r.mem.Purge()
	if r.shared == nil {
		return nil
	}
	octx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.shared.DelPrefix(octx, imagecache.Scoped(r.scope, imagecache.KeyPrefix))
	return err
}

// entries are stored as "<outcome>|<url>"; outcomes never contain '|'
func encodeEntry(out imageurl.Outcome, url string) string {
	return string(out) + "|" + url
}

func decodeEntry(v, tier string) Result {
	out, url, ok := strings.Cut(v, "|")
	if !ok {
		url, out = v, string(imageurl.OutcomePassthrough)
		if strings.Contains(v, imageurl.Segment) {
			out = string(imageurl.OutcomeTransformed)
		}
	}
	return Result{URL: url, Cache: tier, Outcome: out}
}

func (r *Resolver) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.opTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.opTimeout)
}
