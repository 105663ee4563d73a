package api

import "net/http"

func (h *handler) currentNotification(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.notes.Current())
}

func (h *handler) dismissNotification(w http.ResponseWriter, r *http.Request) {
	h.notes.Dismiss()
	w.WriteHeader(http.StatusNoContent)
}
