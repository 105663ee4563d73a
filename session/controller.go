// Package session drives the composer on behalf of the user: save, load,
// export, preview, parameter insertion and keyboard shortcuts. Every
// outcome is reported through the notification queue.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"email-designer/composer"
	"email-designer/design"
	"email-designer/notify"
	"email-designer/param"
	"email-designer/placeholder"
)

// Controller is the session state machine. Operations of different kinds
// may overlap; each reacts only to its own composer reply. A second request
// of a kind already in flight is rejected with ErrBusy.
type Controller struct {
	logger   *slog.Logger
	composer composer.Client
	designs  *design.Manager
	params   *param.Store
	notes    *notify.Queue
	keys     Keymap

	mu       sync.Mutex
	inFlight map[Kind]bool
	preview  *Rendered
}

// NewController wires the controller and registers its auto-restore with
// the composer's ready signal.
func NewController(client composer.Client, designs *design.Manager, params *param.Store, notes *notify.Queue, logger *slog.Logger) *Controller {
	c := &Controller{
		logger:   logger,
		composer: client,
		designs:  designs,
		params:   params,
		notes:    notes,
		keys:     DefaultKeymap(),
		inFlight: make(map[Kind]bool),
	}
	client.OnReady(func() { c.AutoRestore(context.Background()) })
	return c
}

// Keymap returns the shortcut table.
func (c *Controller) Keymap() Keymap {
	return c.keys
}

// Params exposes the parameter store.
func (c *Controller) Params() *param.Store {
	return c.params
}

// State reports what the controller is waiting on.
func (c *Controller) State() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return snapshot(c.inFlight, c.preview != nil)
}

func (c *Controller) begin(k Kind) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight[k] {
		return fmt.Errorf("%s: %w", k, ErrBusy)
	}
	c.inFlight[k] = true
	return nil
}

func (c *Controller) end(k Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, k)
}

// Save asks the composer for its design and writes it to the design slot.
func (c *Controller) Save(ctx context.Context) error {
	if err := c.begin(KindSave); err != nil {
		return c.fail(opSave, err)
	}
	defer c.end(KindSave)

	blob, err := c.composer.RequestDesign(ctx)
	if err != nil {
		return c.fail(opSave, err)
	}
	if err := c.designs.Save(ctx, blob); err != nil {
		return c.fail(opSave, err)
	}
	c.logger.Info("design saved", "bytes", len(blob))
	c.notes.Notify("Template saved successfully")
	return nil
}

// Load restores the saved design into the composer. It reports false, and
// an informational notification, when nothing has been saved.
func (c *Controller) Load(ctx context.Context) (bool, error) {
	blob, err := c.designs.Load(ctx)
	if errors.Is(err, design.ErrNotFound) {
		c.notes.NotifyLevel(notify.LevelInfo, "No saved design found")
		return false, nil
	}
	if err != nil {
		return false, c.fail(opLoad, err)
	}
	if err := c.composer.RestoreDesign(ctx, blob); err != nil {
		return false, c.fail(opLoad, err)
	}
	c.logger.Info("design loaded", "bytes", len(blob))
	c.notes.Notify("Loaded saved template")
	return true, nil
}

// AutoRestore runs when the composer reports ready. An empty slot is not
// worth a notification; anything else is.
func (c *Controller) AutoRestore(ctx context.Context) {
	blob, err := c.designs.Load(ctx)
	if errors.Is(err, design.ErrNotFound) {
		c.logger.Debug("no saved design to restore")
		return
	}
	if err != nil {
		c.fail(opRestore, err)
		return
	}
	if err := c.composer.RestoreDesign(ctx, blob); err != nil {
		c.fail(opRestore, err)
		return
	}
	c.logger.Info("design restored on composer ready", "bytes", len(blob))
	c.notes.Notify("Loaded saved session automatically")
}

// ExportDownload fetches the composer's HTML as a downloadable artifact.
// Placeholders are not substituted.
func (c *Controller) ExportDownload(ctx context.Context) (Artifact, error) {
	if err := c.begin(KindDownload); err != nil {
		return Artifact{}, c.fail(opExport, err)
	}
	defer c.end(KindDownload)

	html, err := c.composer.RequestHTML(ctx)
	if err != nil {
		return Artifact{}, c.fail(opExport, err)
	}
	c.notes.Notify("Exported HTML successfully")
	return Artifact{Filename: DownloadFilename, ContentType: DownloadContentType, Content: html}, nil
}

// Preview fetches the composer's HTML, substitutes the current parameters
// and keeps the result as the one rendered preview.
func (c *Controller) Preview(ctx context.Context) (Rendered, error) {
	if err := c.begin(KindPreview); err != nil {
		return Rendered{}, c.fail(opPreview, err)
	}
	defer c.end(KindPreview)

	html, err := c.composer.RequestHTML(ctx)
	if err != nil {
		return Rendered{}, c.fail(opPreview, err)
	}
	params := c.params.List()
	r := Rendered{
		HTML:       placeholder.Substitute(html, params),
		Unresolved: placeholder.Unresolved(html, params),
	}

	c.mu.Lock()
	c.preview = &r
	c.mu.Unlock()

	if len(r.Unresolved) > 0 {
		c.logger.Debug("preview has unresolved placeholders", "count", len(r.Unresolved))
	}
	c.notes.Notify("Preview updated")
	return r, nil
}

// CurrentPreview returns the rendered preview, if one is showing.
func (c *Controller) CurrentPreview() (Rendered, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.preview == nil {
		return Rendered{}, false
	}
	return *c.preview, true
}

// DismissPreview drops the rendered preview.
func (c *Controller) DismissPreview() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.preview = nil
}

// InsertParameter asks the composer to insert {{key}} for the parameter at
// index at its cursor. Parameters with an empty key cannot be inserted.
func (c *Controller) InsertParameter(ctx context.Context, index int) error {
	p, err := c.params.Get(index)
	if err != nil {
		return err
	}
	if p.Key == "" {
		return fmt.Errorf("parameter %d: %w", index, ErrEmptyKey)
	}

	token := placeholder.Token(p.Key)
	if err := c.composer.Focus(ctx); err != nil {
		return c.fail(opInsert, err)
	}
	if err := c.composer.InsertText(ctx, token); err != nil {
		return c.fail(opInsert, err)
	}
	c.notes.Notify("Inserted " + token)
	return nil
}

// HandleKey runs the action bound to ev, if any, and reports whether ev was
// a bound shortcut. The host must suppress its own handling of a bound
// combination. Failures have already been notified by the time it returns.
func (c *Controller) HandleKey(ctx context.Context, ev composer.KeyEvent) bool {
	action, ok := c.keys.Lookup(ev)
	if !ok {
		return false
	}
	c.logger.Debug("shortcut", "combo", ev.Combo(), "action", action)

	switch action {
	case ActionSave:
		_ = c.Save(ctx)
	case ActionExportDownload:
		a, err := c.ExportDownload(ctx)
		if err != nil {
			break
		}
		if err := c.composer.OfferDownload(ctx, a); err != nil {
			c.fail(opExport, err)
		}
	}
	return true
}
