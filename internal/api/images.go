package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/rescuedogs/rescue-edge/internal/imageurl"
	"github.com/rescuedogs/rescue-edge/internal/resolver"
)

// connection prefers an explicit ?slow= over client hints.
func connection(r *http.Request) imageurl.ConnectionClass {
	if v := r.URL.Query().Get("slow"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			if b {
				return imageurl.ConnSlow
			}
			return imageurl.ConnFast
		}
	}
	return imageurl.ClassifyConnection(r.Header.Get("ECT"), r.Header.Get("Save-Data"), r.Header.Get("Downlink"))
}

func imageOptions(r *http.Request) imageurl.Options {
	q := r.URL.Query()
	atoi := func(k string) int {
		n, err := strconv.Atoi(q.Get(k))
		if err != nil || n < 0 {
			return 0
		}
		return n
	}
	return imageurl.Options{
		Width:   atoi("w"),
		Height:  atoi("h"),
		Fit:     imageurl.FitMode(strings.ToLower(q.Get("fit"))),
		Quality: q.Get("quality"),
		Format:  q.Get("format"),
	}
}

type imageURLResponse struct {
	resolver.Result
	Connection imageurl.ConnectionClass `json:"connection"`
}

func (a *API) imageURL(w http.ResponseWriter, r *http.Request) {
	conn := connection(r)
	res := a.resolver.Resolve(r.Context(), resolver.Request{
		Src:     r.URL.Query().Get("src"),
		Preset:  r.URL.Query().Get("preset"),
		Options: imageOptions(r),
		Conn:    conn,
	})
	writeJSON(w, http.StatusOK, imageURLResponse{Result: res, Connection: conn})
}

func (a *API) responsive(w http.ResponseWriter, r *http.Request) {
	set := a.resolver.Builder().Responsive(r.URL.Query().Get("src"), connection(r).Slow())
	writeJSON(w, http.StatusOK, set)
}

func (a *API) cacheStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.resolver.Cache().Stats())
}

func (a *API) cachePurge(w http.ResponseWriter, r *http.Request) {
	src := strings.TrimSpace(r.URL.Query().Get("src"))
	if src == "" {
		if err := a.resolver.InvalidateAll(r.Context()); err != nil {
			a.log.WarnContext(r.Context(), "shared cache purge failed", "err", err)
			writeError(w, http.StatusBadGateway, "memory cache purged; shared cache purge failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"purged": "all"})
		return
	}
	n, err := a.resolver.Invalidate(r.Context(), src)
	if err != nil {
		a.log.WarnContext(r.Context(), "shared cache invalidate failed", "err", err, "src", src)
		writeError(w, http.StatusBadGateway, "memory cache purged; shared cache purge failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"purged": n, "src": src})
}
