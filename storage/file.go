package storage

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"sync"
)

// File keeps one file per key under dir. Writes go to a temp file which is
// then renamed over the target, so a reader never sees a partial value.
type File struct {
	mu  sync.RWMutex
	dir string
}

func NewFile(dir string) *File {
	return &File{dir: dir}
}

func (f *File) Get(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func (f *File) Set(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writeAtomic(f.path(key), value)
}

func (f *File) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	err := os.Remove(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (f *File) Close() error { return nil }

// path escapes key so any key maps to a single file inside dir.
func (f *File) path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key)+".json")
}

// writeAtomic writes to a temp file then renames it over path.
// Caller must hold f.mu.
func (f *File) writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
