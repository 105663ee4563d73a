package api

import (
	"encoding/json"
	"net/http"

	"email-designer/composer"
)

// handleKey runs a shortcut for a host that forwards key presses over HTTP
// rather than the composer socket.
func (h *handler) handleKey(w http.ResponseWriter, r *http.Request) {
	var ev composer.KeyEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil || ev.Key == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	handled := h.ctrl.HandleKey(r.Context(), ev)
	writeJSON(w, http.StatusOK, map[string]bool{"handled": handled})
}
