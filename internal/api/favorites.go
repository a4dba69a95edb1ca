package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rescuedogs/rescue-edge/internal/favorites"
)

func (a *API) shareFavorites(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("ids"))
	var ids []int
	if raw != "" {
		for p := range strings.SplitSeq(raw, ",") {
			id, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				writeError(w, http.StatusBadRequest, "ids must be a comma separated list of integers")
				return
			}
			ids = append(ids, id)
		}
	}
	code, err := favorites.Compress(ids)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	u, _ := favorites.ShareURL(a.site, ids)
	writeJSON(w, http.StatusOK, map[string]string{"code": code, "url": u})
}

func (a *API) sharedFavorites(w http.ResponseWriter, r *http.Request) {
	ids, err := favorites.Decompress(chi.URLParam(r, "code"))
	switch {
	case errors.Is(err, favorites.ErrInvalidCode), errors.Is(err, favorites.ErrTooMany):
		writeError(w, http.StatusBadRequest, "malformed share code")
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if ids == nil {
		ids = []int{}
	}
	writeJSON(w, http.StatusOK, map[string][]int{"ids": ids})
}
