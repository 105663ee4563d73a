package composer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"email-designer/notify"
)

const writeWait = 10 * time.Second

// frame is the single message shape used in both directions.
type frame struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`

	// request
	Op string `json:"op,omitempty"`

	// response / restore
	Design json.RawMessage `json:"design,omitempty"`
	HTML   string          `json:"html,omitempty"`
	Error  string          `json:"error,omitempty"`

	// insertText
	Text string `json:"text,omitempty"`

	// key
	Key *KeyEvent `json:"key,omitempty"`

	// shortcuts
	Keys []string `json:"keys,omitempty"`

	Download     *Download            `json:"download,omitempty"`
	Notification *notify.Notification `json:"notification,omitempty"`
}

const (
	frameReady        = "ready"
	frameResponse     = "response"
	frameKey          = "key"
	frameRequest      = "request"
	frameRestore      = "restore"
	frameFocus        = "focus"
	frameInsertText   = "insertText"
	frameDownload     = "download"
	frameNotification = "notification"
	frameShortcuts    = "shortcuts"

	opDesign = "design"
	opHTML   = "html"
)

// Bridge implements Client over a websocket to the page hosting the
// composer. At most one page is attached; attaching a new one displaces the
// old, whose outstanding requests then fail with ErrUnavailable.
type Bridge struct {
	logger  *slog.Logger
	timeout time.Duration

	mu        sync.Mutex
	page      *page
	readyFns  []func()
	keyFn     func(KeyEvent)
	shortcuts []string
}

// NewBridge returns a bridge with no page attached. A timeout of zero means
// composer requests wait until answered, the page leaves, or ctx ends.
func NewBridge(logger *slog.Logger, timeout time.Duration) *Bridge {
	return &Bridge{logger: logger, timeout: timeout}
}

// page is one attached websocket connection.
type page struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	pendMu  sync.Mutex
	pending map[string]chan frame

	done      chan struct{}
	closeOnce sync.Once
}

func newPage(conn *websocket.Conn) *page {
	return &page{conn: conn, pending: make(map[string]chan frame), done: make(chan struct{})}
}

// write serialises all writes; gorilla/websocket forbids concurrent writers.
func (p *page) write(f frame) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return p.conn.WriteJSON(f)
}

func (p *page) park(id string) chan frame {
	ch := make(chan frame, 1)
	p.pendMu.Lock()
	p.pending[id] = ch
	p.pendMu.Unlock()
	return ch
}

func (p *page) unpark(id string) {
	p.pendMu.Lock()
	delete(p.pending, id)
	p.pendMu.Unlock()
}

// resolve delivers f to the request it answers. It reports false for ids
// nobody waits on (already answered, abandoned, or made up).
func (p *page) resolve(f frame) bool {
	p.pendMu.Lock()
	ch, ok := p.pending[f.ID]
	delete(p.pending, f.ID)
	p.pendMu.Unlock()
	if ok {
		ch <- f
	}
	return ok
}

func (p *page) close() {
	p.closeOnce.Do(func() {
		close(p.done)
		p.conn.Close()
	})
}

// OnReady registers fn to run (on its own goroutine) whenever a page reports
// that its composer is ready.
func (b *Bridge) OnReady(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.readyFns = append(b.readyFns, fn)
}

// OnKey registers the handler for forwarded key presses. combos is sent to
// every page on attach so it can suppress the browser default for exactly
// those combinations before forwarding them.
func (b *Bridge) OnKey(combos []string, fn func(KeyEvent)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shortcuts = append([]string(nil), combos...)
	b.keyFn = fn
}

// Connected reports whether a page is attached.
func (b *Bridge) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.page != nil
}

// Serve attaches conn as the composer page and blocks until it disconnects
// or is displaced. It always closes conn.
func (b *Bridge) Serve(conn *websocket.Conn) {
	p := newPage(conn)

	b.mu.Lock()
	prev := b.page
	b.page = p
	shortcuts := b.shortcuts
	b.mu.Unlock()

	if prev != nil {
		b.logger.Info("composer page displaced by a newer connection")
		prev.close()
	}
	defer b.detach(p)

	if len(shortcuts) > 0 {
		if err := p.write(frame{Type: frameShortcuts, Keys: shortcuts}); err != nil {
			b.logger.Warn("send shortcuts", "error", err)
			return
		}
	}

	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			// Page closed, or conn was closed by a displacing attach.
			return
		}

		switch f.Type {
		case frameReady:
			b.logger.Debug("composer ready")
			b.mu.Lock()
			fns := append([]func(){}, b.readyFns...)
			b.mu.Unlock()
			for _, fn := range fns {
				go fn()
			}
		case frameResponse:
			if !p.resolve(f) {
				b.logger.Debug("dropping composer response with no waiter", "id", f.ID)
			}
		case frameKey:
			b.mu.Lock()
			fn := b.keyFn
			b.mu.Unlock()
			if fn != nil && f.Key != nil {
				// The handler may issue composer requests, whose replies
				// arrive on this loop.
				go fn(*f.Key)
			}
		default:
			b.logger.Debug("ignoring composer frame", "type", f.Type)
		}
	}
}

func (b *Bridge) detach(p *page) {
	b.mu.Lock()
	if b.page == p {
		b.page = nil
	}
	b.mu.Unlock()
	p.close()
}

func (b *Bridge) current() (*page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.page == nil {
		return nil, fmt.Errorf("%w: no composer page attached", ErrUnavailable)
	}
	return b.page, nil
}

// send writes a fire-and-forget frame to the attached page.
func (b *Bridge) send(f frame) error {
	p, err := b.current()
	if err != nil {
		return err
	}
	if err := p.write(f); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// call issues a request and waits for its single response.
func (b *Bridge) call(ctx context.Context, op string) (frame, error) {
	p, err := b.current()
	if err != nil {
		return frame{}, err
	}

	id := uuid.NewString()
	reply := p.park(id)
	defer p.unpark(id)

	if err := p.write(frame{Type: frameRequest, ID: id, Op: op}); err != nil {
		return frame{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	select {
	case f := <-reply:
		if f.Error != "" {
			return frame{}, fmt.Errorf("%w: composer error: %s", ErrUnavailable, f.Error)
		}
		return f, nil
	case <-p.done:
		return frame{}, fmt.Errorf("%w: composer page disconnected", ErrUnavailable)
	case <-ctx.Done():
		return frame{}, fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
	}
}

func (b *Bridge) RequestDesign(ctx context.Context) (json.RawMessage, error) {
	f, err := b.call(ctx, opDesign)
	if err != nil {
		return nil, err
	}
	return f.Design, nil
}

func (b *Bridge) RequestHTML(ctx context.Context) (string, error) {
	f, err := b.call(ctx, opHTML)
	if err != nil {
		return "", err
	}
	return f.HTML, nil
}

func (b *Bridge) RestoreDesign(_ context.Context, design json.RawMessage) error {
	return b.send(frame{Type: frameRestore, Design: design})
}

func (b *Bridge) Focus(context.Context) error {
	return b.send(frame{Type: frameFocus})
}

func (b *Bridge) InsertText(_ context.Context, text string) error {
	return b.send(frame{Type: frameInsertText, Text: text})
}

func (b *Bridge) OfferDownload(_ context.Context, d Download) error {
	return b.send(frame{Type: frameDownload, Download: &d})
}

// PushNotification mirrors n to the attached page, if any. It is meant to be
// a notify.Queue observer, so having no page is not an error.
func (b *Bridge) PushNotification(n notify.Notification) {
	if err := b.send(frame{Type: frameNotification, Notification: &n}); err != nil {
		b.logger.Debug("notification not pushed", "error", err)
	}
}
