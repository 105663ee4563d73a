package api

import (
	"fmt"
	"net/http"

	"email-designer/preview"
)

func (h *handler) exportDownload(w http.ResponseWriter, r *http.Request) {
	a, err := h.ctrl.ExportDownload(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	w.Header().Set("Content-Type", a.ContentType+"; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(a.Content))
}

func (h *handler) renderPreview(w http.ResponseWriter, r *http.Request) {
	rendered, err := h.ctrl.Preview(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rendered)
}

func (h *handler) currentPreview(w http.ResponseWriter, r *http.Request) {
	rendered, ok := h.ctrl.CurrentPreview()
	if !ok {
		writeError(w, http.StatusNotFound, "no preview")
		return
	}
	writeJSON(w, http.StatusOK, rendered)
}

func (h *handler) dismissPreview(w http.ResponseWriter, r *http.Request) {
	h.ctrl.DismissPreview()
	w.WriteHeader(http.StatusNoContent)
}

// previewDocument serves the rendered preview as a standalone, sandboxed
// document for an iframe.
func (h *handler) previewDocument(w http.ResponseWriter, r *http.Request) {
	rendered, ok := h.ctrl.CurrentPreview()
	if !ok {
		writeError(w, http.StatusNotFound, "no preview")
		return
	}
	preview.SetSandboxHeaders(w.Header())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(preview.Sanitize(rendered.HTML)))
}
