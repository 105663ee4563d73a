package param

import (
	"fmt"
	"sync"
)

// Store is the ordered parameter list. Order is insertion order and only
// matters for display; duplicate and empty keys are allowed.
type Store struct {
	mu      sync.RWMutex
	entries []Parameter
}

// NewStore returns a store seeded with initial, in order.
func NewStore(initial ...Parameter) *Store {
	entries := make([]Parameter, len(initial))
	copy(entries, initial)
	return &Store{entries: entries}
}

// Add appends an empty parameter and returns its index.
func (s *Store) Add() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, Parameter{})
	return len(s.entries) - 1
}

// SetField replaces one field of the entry at index.
func (s *Store) SetField(index int, field Field, v string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndex(index); err != nil {
		return err
	}
	switch field {
	case FieldKey:
		s.entries[index].Key = v
	case FieldValue:
		s.entries[index].Value = v
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// Delete removes the entry at index; later entries shift down by one.
func (s *Store) Delete(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndex(index); err != nil {
		return err
	}
	s.entries = append(s.entries[:index], s.entries[index+1:]...)
	return nil
}

// Get returns the entry at index.
func (s *Store) Get(index int) (Parameter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkIndex(index); err != nil {
		return Parameter{}, err
	}
	return s.entries[index], nil
}

// List returns a snapshot of the entries (safe copy under RLock).
func (s *Store) List() []Parameter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]Parameter, len(s.entries))
	copy(list, s.entries)
	return list
}

// Len reports the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// checkIndex must be called with s.mu held.
func (s *Store) checkIndex(index int) error {
	if index < 0 || index >= len(s.entries) {
		return fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, index, len(s.entries))
	}
	return nil
}
