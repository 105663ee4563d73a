// Package composer talks to the visual email composer, which runs in a
// browser page and is otherwise a black box. The page can hand over its
// design, export HTML, restore a design, take focus, insert text at the
// cursor and tell us when it is ready.
package composer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// ErrUnavailable covers every way a composer request can fail: no page
// attached, the page went away, the page reported an error, or the wait was
// abandoned.
var ErrUnavailable = errors.New("composer unavailable")

// Client is what the session controller needs from the composer.
type Client interface {
	RequestDesign(ctx context.Context) (json.RawMessage, error)
	RequestHTML(ctx context.Context) (string, error)
	RestoreDesign(ctx context.Context, design json.RawMessage) error
	Focus(ctx context.Context) error
	InsertText(ctx context.Context, text string) error
	OfferDownload(ctx context.Context, d Download) error
	// OnReady registers fn to run each time a composer signals it can
	// accept a design.
	OnReady(fn func())
}

// Download is a file handed to the host page to save.
type Download struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// KeyEvent is a key press forwarded by the host page.
type KeyEvent struct {
	Key   string `json:"key"`
	Ctrl  bool   `json:"ctrl,omitempty"`
	Meta  bool   `json:"meta,omitempty"`
	Shift bool   `json:"shift,omitempty"`
	Alt   bool   `json:"alt,omitempty"`
}

// Combo renders the event as "ctrl+s", "meta+shift+e" and so on, modifiers
// in a fixed order and the key lower-cased.
func (e KeyEvent) Combo() string {
	var parts []string
	if e.Ctrl {
		parts = append(parts, "ctrl")
	}
	if e.Meta {
		parts = append(parts, "meta")
	}
	if e.Alt {
		parts = append(parts, "alt")
	}
	if e.Shift {
		parts = append(parts, "shift")
	}
	parts = append(parts, strings.ToLower(e.Key))
	return strings.Join(parts, "+")
}
