package api_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gorilla/websocket"

	"email-designer/api"
	"email-designer/composer"
	"email-designer/design"
	"email-designer/notify"
	"email-designer/param"
	"email-designer/session"
	"email-designer/storage"
)

type testEnv struct {
	srv    *httptest.Server
	ctrl   *session.Controller
	notes  *notify.Queue
	bridge *composer.Bridge
	store  storage.Store
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestEnv wires the service the way main does, over in-memory storage
// and the default seed parameters.
func newTestEnv(t *testing.T, opts api.Options) *testEnv {
	t.Helper()
	logger := quietLogger()
	opts.Logger = logger

	store := storage.NewMemory()
	notes := notify.NewQueue(time.Hour)
	bridge := composer.NewBridge(logger, 0)
	params := param.NewStore(
		param.Parameter{Key: "customer_name", Value: "Amit Kumar"},
		param.Parameter{Key: "plan_type", Value: "Premium"},
	)
	ctrl := session.NewController(bridge, design.NewManager(store), params, notes, logger)
	bridge.OnKey(ctrl.Keymap().Combos(), func(ev composer.KeyEvent) {
		ctrl.HandleKey(context.Background(), ev)
	})
	notes.Subscribe(bridge.PushNotification)

	staticFS := fstest.MapFS{
		"index.html":   {Data: []byte("<html>composer host</html>")},
		"js/bridge.js": {Data: []byte("// bridge")},
	}
	srv := httptest.NewServer(api.RegisterRoutes(ctrl, notes, bridge, staticFS, opts))
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, ctrl: ctrl, notes: notes, bridge: bridge, store: store}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, _ := http.NewRequest(method, e.srv.URL+path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s: expected %d, got %d (%s)", resp.Request.Method, resp.Request.URL.Path, want, resp.StatusCode, b)
	}
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

// wsFrame mirrors the composer socket wire format from the page's side.
type wsFrame struct {
	Type         string               `json:"type"`
	ID           string               `json:"id,omitempty"`
	Op           string               `json:"op,omitempty"`
	Design       json.RawMessage      `json:"design,omitempty"`
	HTML         string               `json:"html,omitempty"`
	Error        string               `json:"error,omitempty"`
	Text         string               `json:"text,omitempty"`
	Key          *composer.KeyEvent   `json:"key,omitempty"`
	Keys         []string             `json:"keys,omitempty"`
	Download     *composer.Download   `json:"download,omitempty"`
	Notification *notify.Notification `json:"notification,omitempty"`
}

// fakePage plays the browser page hosting the composer: it answers design
// and html requests and records every other frame it receives.
type fakePage struct {
	conn   *websocket.Conn
	design json.RawMessage
	html   string
	// hold, when set, delays every answer until it is closed.
	hold   chan struct{}
	frames chan wsFrame
}

func dialComposer(t *testing.T, e *testEnv, query string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.srv.URL, "http") + "/api/composer/ws" + query
	return websocket.DefaultDialer.Dial(url, nil)
}

func attachPage(t *testing.T, e *testEnv, hold chan struct{}) *fakePage {
	t.Helper()
	conn, _, err := dialComposer(t, e, "")
	if err != nil {
		t.Fatalf("dial composer socket: %v", err)
	}
	p := &fakePage{
		conn:   conn,
		design: json.RawMessage(`{"body":{"rows":[{"id":"r1"}]}}`),
		html:   "<p>Hello {{customer_name}}, welcome to {{plan_type}}!</p><script>track()</script>",
		hold:   hold,
		frames: make(chan wsFrame, 64),
	}
	go p.run()
	t.Cleanup(func() { conn.Close() })
	waitFor(t, e.bridge.Connected)
	return p
}

func (p *fakePage) run() {
	defer close(p.frames)
	for {
		var f wsFrame
		if err := p.conn.ReadJSON(&f); err != nil {
			return
		}
		if f.Type != "request" {
			p.frames <- f
			continue
		}
		if p.hold != nil {
			<-p.hold
		}
		resp := wsFrame{Type: "response", ID: f.ID}
		switch f.Op {
		case "design":
			resp.Design = p.design
		case "html":
			resp.HTML = p.html
		}
		if err := p.conn.WriteJSON(resp); err != nil {
			return
		}
	}
}

func (p *fakePage) send(t *testing.T, f wsFrame) {
	t.Helper()
	if err := p.conn.WriteJSON(f); err != nil {
		t.Fatalf("page write: %v", err)
	}
}

// expect returns the next received frame of the given type, skipping others.
func (p *fakePage) expect(t *testing.T, typ string) wsFrame {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case f, ok := <-p.frames:
			if !ok {
				t.Fatalf("page closed while waiting for %q", typ)
			}
			if f.Type == typ {
				return f
			}
		case <-timeout:
			t.Fatalf("no %q frame received", typ)
		}
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
