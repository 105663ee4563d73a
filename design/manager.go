// Package design persists the composer's design blob in a single storage
// slot.
package design

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"email-designer/storage"
)

// SlotKey is the one storage key the design lives under.
const SlotKey = "emailTemplateDesign"

// Blob is the composer's serialized design. Its structure belongs to the
// composer; this package only checks that it is JSON.
type Blob = json.RawMessage

var (
	// ErrNotFound means nothing has been saved yet. It is not a failure.
	ErrNotFound = errors.New("no saved design")
	// ErrCorrupt means the stored (or offered) value is not valid JSON.
	ErrCorrupt = errors.New("saved design is corrupt")
	// ErrStorage wraps failures of the storage medium itself.
	ErrStorage = errors.New("design storage failure")
)

// Manager reads and writes the design slot.
type Manager struct {
	store storage.Store
}

func NewManager(store storage.Store) *Manager {
	return &Manager{store: store}
}

// Save writes blob, byte for byte, over whatever the slot held before.
// A blob that is not JSON is refused with ErrCorrupt.
func (m *Manager) Save(ctx context.Context, blob Blob) error {
	if !json.Valid(blob) {
		return fmt.Errorf("%w: offered blob is not JSON", ErrCorrupt)
	}
	if err := m.store.Set(ctx, SlotKey, []byte(blob)); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return nil
}

// Load returns the saved blob, ErrNotFound when the slot is empty, or
// ErrCorrupt when the stored bytes are not JSON.
func (m *Manager) Load(ctx context.Context) (Blob, error) {
	data, found, err := m.store.Get(ctx, SlotKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if !found {
		return nil, ErrNotFound
	}
	if !json.Valid(data) {
		return nil, ErrCorrupt
	}
	return Blob(data), nil
}

// Exists reports whether the slot holds a value, without decoding it.
func (m *Manager) Exists(ctx context.Context) (bool, error) {
	_, found, err := m.store.Get(ctx, SlotKey)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return found, nil
}
