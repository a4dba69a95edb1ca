package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rescuedogs/rescue-edge/internal/seo"
)

type dogJSONLDResponse struct {
	Product     seo.Product        `json:"product"`
	Breadcrumbs seo.BreadcrumbList `json:"breadcrumbs"`
	Script      string             `json:"script"`
}

func (a *API) dogJSONLD(w http.ResponseWriter, r *http.Request) {
	d, err := a.catalog.GetDog(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		a.writeUpstreamError(w, r, err)
		return
	}
	out := dogJSONLDResponse{
		Product:     a.seo.DogProduct(d),
		Breadcrumbs: a.seo.DogBreadcrumbs(d),
	}
	p, err := seo.Script(out.Product)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "render json-ld")
		return
	}
	b, err := seo.Script(out.Breadcrumbs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "render json-ld")
		return
	}
	out.Script = p + b
	writeJSON(w, http.StatusOK, out)
}

type orgJSONLDResponse struct {
	Shelter seo.AnimalShelter `json:"shelter"`
	Script  string            `json:"script"`
}

func (a *API) orgJSONLD(w http.ResponseWriter, r *http.Request) {
	o, err := a.catalog.GetOrganization(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		a.writeUpstreamError(w, r, err)
		return
	}
	out := orgJSONLDResponse{Shelter: a.seo.Shelter(o)}
	if out.Script, err = seo.Script(out.Shelter); err != nil {
		writeError(w, http.StatusInternalServerError, "render json-ld")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func writeXML(w http.ResponseWriter, b []byte) {
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(b)
}

func (a *API) sitemapIndex(w http.ResponseWriter, r *http.Request) {
	snap, err := a.snap.get(r.Context(), a.site)
	if err != nil {
		a.writeUpstreamError(w, r, err)
		return
	}
	b, err := seo.BuildIndex(a.site, len(snap.sitemaps), snap.fetchedAt)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "render sitemap index")
		return
	}
	writeXML(w, b)
}

func (a *API) sitemapPart(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil || n < 1 {
		writeError(w, http.StatusNotFound, "no such sitemap")
		return
	}
	snap, err := a.snap.get(r.Context(), a.site)
	if err != nil {
		a.writeUpstreamError(w, r, err)
		return
	}
	if n > len(snap.sitemaps) {
		writeError(w, http.StatusNotFound, "no such sitemap")
		return
	}
	writeXML(w, snap.sitemaps[n-1])
}
