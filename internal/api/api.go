// Package api exposes the image, telemetry, favorites and SEO endpoints.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rescuedogs/rescue-edge/internal/dogs"
	"github.com/rescuedogs/rescue-edge/internal/placeholder"
	"github.com/rescuedogs/rescue-edge/internal/resolver"
	"github.com/rescuedogs/rescue-edge/internal/seo"
	"github.com/rescuedogs/rescue-edge/internal/telemetry"
)

// Catalog is the read side of the dogs API; backend.Client implements it.
type Catalog interface {
	AllDogs(ctx context.Context) ([]dogs.Dog, error)
	GetDog(ctx context.Context, slug string) (dogs.Dog, error)
	ListOrganizations(ctx context.Context) ([]dogs.Org, error)
	GetOrganization(ctx context.Context, slug string) (dogs.Org, error)
}

type Deps struct {
	Logger      *slog.Logger
	Resolver    *resolver.Resolver
	Telemetry   *telemetry.Tracker
	Catalog     Catalog
	SEO         *seo.Generator
	Placeholder *placeholder.Renderer
	SiteURL     string
	// SnapshotTTL bounds how stale sitemap and listing data may be.
	SnapshotTTL time.Duration
}

type API struct {
	log         *slog.Logger
	resolver    *resolver.Resolver
	telemetry   *telemetry.Tracker
	catalog     Catalog
	seo         *seo.Generator
	placeholder *placeholder.Renderer
	site        string
	snap        *snapshotCache
}

func New(d Deps) *API {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.SnapshotTTL <= 0 {
		d.SnapshotTTL = time.Hour
	}
	return &API{
		log:         d.Logger,
		resolver:    d.Resolver,
		telemetry:   d.Telemetry,
		catalog:     d.Catalog,
		seo:         d.SEO,
		placeholder: d.Placeholder,
		site:        d.SiteURL,
		snap:        newSnapshotCache(d.Catalog, d.SnapshotTTL, time.Now),
	}
}

// Routes mounts every endpoint on r.
func (a *API) Routes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Get("/images/url", a.imageURL)
		r.Get("/images/responsive", a.responsive)
		r.Get("/images/cache", a.cacheStats)
		r.Delete("/images/cache", a.cachePurge)

		r.Post("/telemetry/errors", a.recordError)
		r.Post("/telemetry/loads", a.recordLoad)
		r.Post("/telemetry/network", a.recordNetwork)
		r.Get("/telemetry", a.telemetrySnapshot)

		r.Get("/favorites/share", a.shareFavorites)
		r.Get("/favorites/{code}", a.sharedFavorites)

		r.Get("/dogs", a.listDogs)
		r.Get("/seo/dogs/{slug}", a.dogJSONLD)
		r.Get("/seo/organizations/{slug}", a.orgJSONLD)
	})
	r.Get("/sitemap.xml", a.sitemapIndex)
	r.Get("/sitemaps/{n:[0-9]+}.xml", a.sitemapPart)
	r.Get("/images/dog-placeholder.png", a.placeholderPNG)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	e := dogs.DefaultError(status)
	e.Detail = detail
	writeJSON(w, e.Status, e)
}

// writeUpstreamError keeps the API's own status for *dogs.APIError.
func (a *API) writeUpstreamError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *dogs.APIError
	if errors.As(err, &apiErr) {
		writeJSON(w, apiErr.Status, apiErr)
		return
	}
	a.log.WarnContext(r.Context(), "upstream call failed", "err", err, "path", r.URL.Path)
	writeError(w, http.StatusBadGateway, "upstream unavailable")
}

const maxBody = 16 << 10

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
