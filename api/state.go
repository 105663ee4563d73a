package api

import (
	"net/http"

	"email-designer/session"
)

type stateView struct {
	session.Snapshot
	ComposerConnected bool     `json:"composerConnected"`
	Params            int      `json:"params"`
	Shortcuts         []string `json:"shortcuts"`
}

func (h *handler) state(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, stateView{
		Snapshot:          h.ctrl.State(),
		ComposerConnected: h.bridge.Connected(),
		Params:            h.ctrl.Params().Len(),
		Shortcuts:         h.ctrl.Keymap().Combos(),
	})
}
