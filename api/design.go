package api

import "net/http"

func (h *handler) saveDesign(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.Save(r.Context()); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"saved": true})
}

// loadDesign reports loaded=false, not an error, when nothing was saved.
func (h *handler) loadDesign(w http.ResponseWriter, r *http.Request) {
	loaded, err := h.ctrl.Load(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"loaded": loaded})
}
