package api

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"email-designer/composer"
	"email-designer/notify"
	"email-designer/session"
)

// Options carries the HTTP-level settings.
type Options struct {
	Logger *slog.Logger
	// CORSAllowOrigin is the one extra origin allowed to call the API; empty
	// means same-origin only.
	CORSAllowOrigin string
	// JWTSecret enables bearer-token auth when set.
	JWTSecret string
	JWTIssuer string
}

func RegisterRoutes(ctrl *session.Controller, notes *notify.Queue, bridge *composer.Bridge, staticFS fs.FS, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogging(logger))
	if opts.CORSAllowOrigin != "" {
		r.Use(CORS(opts.CORSAllowOrigin))
	}
	if opts.JWTSecret != "" {
		r.Use(JWTAuth(opts.JWTSecret, opts.JWTIssuer))
	} else {
		r.Use(OriginCheck(opts.CORSAllowOrigin))
	}

	h := &handler{ctrl: ctrl, notes: notes, bridge: bridge, logger: logger}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			// A token already proves the caller; without one only the
			// host page's own origin may attach.
			return opts.JWTSecret != "" || allowedOrigin(r, opts.CORSAllowOrigin)
		},
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Parameters
	r.Get("/api/params", h.listParams)
	r.Post("/api/params", h.addParam)
	r.Put("/api/params/{index}/{field}", h.setParamField)
	r.Delete("/api/params/{index}", h.deleteParam)
	r.Post("/api/params/{index}/insert", h.insertParam)

	// Design slot
	r.Post("/api/design/save", h.saveDesign)
	r.Post("/api/design/load", h.loadDesign)

	// Export and preview
	r.Get("/api/export", h.exportDownload)
	r.Post("/api/preview", h.renderPreview)
	r.Get("/api/preview", h.currentPreview)
	r.Delete("/api/preview", h.dismissPreview)
	r.Get("/preview", h.previewDocument)

	r.Get("/api/notification", h.currentNotification)
	r.Delete("/api/notification", h.dismissNotification)
	r.Post("/api/keys", h.handleKey)
	r.Get("/api/state", h.state)

	// WebSocket to the page hosting the composer
	r.Get("/api/composer/ws", h.handleWS)

	// Static sub-FS: strip the "static/" prefix present in the embed.FS.
	// A test or dev FS may already be rooted at the static files, so probe
	// index.html before trusting the Sub.
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		staticSub = staticFS
	} else if _, statErr := fs.Stat(staticSub, "index.html"); statErr != nil {
		staticSub = staticFS
	}

	// Using http.FileServer for "/" redirects index.html requests, so the
	// page is read from the FS directly.
	r.Get("/", serveFile(staticSub, "index.html"))

	fileServer := http.FileServer(http.FS(staticSub))
	r.Get("/js/*", fileServer.ServeHTTP)

	return r
}

// serveFile returns a handler that reads a single file from fsys and sends it.
func serveFile(fsys fs.FS, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(content)
	}
}

type handler struct {
	ctrl     *session.Controller
	notes    *notify.Queue
	bridge   *composer.Bridge
	logger   *slog.Logger
	upgrader websocket.Upgrader
}
