package api

import "net/http"

func (a *API) placeholderPNG(w http.ResponseWriter, r *http.Request) {
	b, err := a.placeholder.PNG(r.URL.Query().Get("preset"))
	if err != nil {
		a.log.ErrorContext(r.Context(), "render placeholder", "err", err)
		writeError(w, http.StatusInternalServerError, "render placeholder")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(b)
}
