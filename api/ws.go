package api

import "net/http"

// handleWS attaches the page hosting the composer. A newer page displaces
// an older one.
func (h *handler) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	h.logger.Info("composer page attached", "remote", r.RemoteAddr)
	h.bridge.Serve(conn)
	h.logger.Info("composer page detached", "remote", r.RemoteAddr)
}
