package api

import (
	"net/http"
	"strconv"

	"github.com/rescuedogs/rescue-edge/internal/dogs"
	"github.com/rescuedogs/rescue-edge/internal/imageurl"
	"github.com/rescuedogs/rescue-edge/internal/resolver"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type dogCard struct {
	dogs.Dog
	Image string `json:"image"`
}

type dogListResponse struct {
	Total int       `json:"total"`
	Dogs  []dogCard `json:"dogs"`
}

// listDogs filters and sorts the cached catalog, resolving each card image
// for the caller's connection.
func (a *API) listDogs(w http.ResponseWriter, r *http.Request) {
	snap, err := a.snap.get(r.Context(), a.site)
	if err != nil {
		a.writeUpstreamError(w, r, err)
		return
	}
	q := r.URL.Query()
	f := dogs.Filter{
		Breed:         q.Get("breed"),
		Country:       q.Get("country"),
		Organization:  q.Get("organization"),
		OnlyAvailable: true,
	}
	if v := q.Get("size"); v != "" {
		f.Size = dogs.NormalizeSize(v)
	}
	if v := q.Get("sex"); v != "" {
		f.Sex = dogs.NormalizeSex(v)
	}
	if v := q.Get("age"); v != "" {
		f.Age = dogs.AgeCategory(v)
	}
	matched := dogs.Apply(snap.dogs, f)
	dogs.Sort(matched, dogs.ParseSortKey(q.Get("sort")))

	limit := boundedInt(q.Get("limit"), defaultLimit, 1, maxLimit)
	offset := boundedInt(q.Get("offset"), 0, 0, len(matched))
	page := matched[offset:min(offset+limit, len(matched))]

	conn := connection(r)
	preset := imageurl.Catalog
	if conn.Slow() {
		preset = imageurl.Mobile
	}
	out := dogListResponse{Total: len(matched), Dogs: make([]dogCard, 0, len(page))}
	for _, d := range page {
		res := a.resolver.Resolve(r.Context(), resolver.Request{Src: d.ImageURL, Preset: preset, Conn: conn})
		out.Dogs = append(out.Dogs, dogCard{Dog: d, Image: res.URL})
	}
	writeJSON(w, http.StatusOK, out)
}

func boundedInt(s string, def, lo, hi int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return max(lo, min(n, hi))
}
