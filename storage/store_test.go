package storage_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"email-designer/storage"
)

// exercise runs the behaviour every backend must share.
func exercise(t *testing.T, s storage.Store) {
	t.Helper()
	ctx := context.Background()

	if _, found, err := s.Get(ctx, "missing"); err != nil || found {
		t.Fatalf("Get missing: found=%v err=%v", found, err)
	}

	if err := s.Set(ctx, "k", []byte(`{"v":1}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, found, err := s.Get(ctx, "k")
	if err != nil || !found {
		t.Fatalf("Get after Set: found=%v err=%v", found, err)
	}
	if string(got) != `{"v":1}` {
		t.Fatalf("Get = %q", got)
	}

	// Overwrite replaces the whole value.
	if err := s.Set(ctx, "k", []byte(`2`)); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, _, _ = s.Get(ctx, "k")
	if string(got) != `2` {
		t.Fatalf("after overwrite Get = %q", got)
	}

	// Keys are independent.
	if err := s.Set(ctx, "other/key with spaces", []byte(`x`)); err != nil {
		t.Fatalf("Set other: %v", err)
	}
	got, _, _ = s.Get(ctx, "k")
	if string(got) != `2` {
		t.Fatalf("unrelated Set changed k: %q", got)
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found, _ := s.Get(ctx, "k"); found {
		t.Fatal("value still present after Delete")
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete of missing key should be a no-op, got %v", err)
	}
}

func TestMemory(t *testing.T) {
	exercise(t, storage.NewMemory())
}

func TestMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	m := storage.NewMemory()
	v := []byte("abc")
	m.Set(ctx, "k", v)
	v[0] = 'X'
	got, _, _ := m.Get(ctx, "k")
	if string(got) != "abc" {
		t.Fatalf("Memory aliased the caller's slice: %q", got)
	}
	got[0] = 'Y'
	again, _, _ := m.Get(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("Memory returned its internal slice: %q", again)
	}
}

func TestFile(t *testing.T) {
	exercise(t, storage.NewFile(t.TempDir()))
}

func TestFileCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	f := storage.NewFile(dir)
	if err := f.Set(context.Background(), "emailTemplateDesign", []byte(`{}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "emailTemplateDesign.json")); err != nil {
		t.Fatalf("expected slot file: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "emailTemplateDesign.json.tmp")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestFileSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	storage.NewFile(dir).Set(ctx, "k", []byte("persisted"))
	got, found, err := storage.NewFile(dir).Get(ctx, "k")
	if err != nil || !found || string(got) != "persisted" {
		t.Fatalf("reopen Get = %q, %v, %v", got, found, err)
	}
}

func TestFileConcurrentSet(t *testing.T) {
	f := storage.NewFile(t.TempDir())
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.Set(context.Background(), "k", []byte(`{"same":true}`))
		}()
	}
	wg.Wait()
	got, _, _ := f.Get(context.Background(), "k")
	if string(got) != `{"same":true}` {
		t.Fatalf("got %q", got)
	}
}

func TestSQLite(t *testing.T) {
	s, err := storage.NewSQLite(filepath.Join(t.TempDir(), "designer.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	defer s.Close()
	exercise(t, s)
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "designer.db")
	ctx := context.Background()

	s1, err := storage.NewSQLite(path)
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	if err := s1.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	s1.Close()

	// Second open runs migrations again; they must be a no-op.
	s2, err := storage.NewSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	got, found, err := s2.Get(ctx, "k")
	if err != nil || !found || string(got) != "v" {
		t.Fatalf("reopen Get = %q, %v, %v", got, found, err)
	}
}

func TestOpenBackends(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	cases := []struct {
		cfg  storage.Config
		want string
	}{
		{storage.Config{Backend: storage.BackendMemory}, "*storage.Memory"},
		{storage.Config{Backend: storage.BackendFile, File: storage.FileConfig{Dir: dir}}, "*storage.File"},
		{storage.Config{Backend: storage.BackendSQLite, SQLite: storage.SQLiteConfig{Path: filepath.Join(dir, "x.db")}}, "*storage.SQLite"},
	}
	for _, tc := range cases {
		s, err := storage.Open(ctx, tc.cfg)
		if err != nil {
			t.Fatalf("Open(%s): %v", tc.cfg.Backend, err)
		}
		if got := typeName(s); got != tc.want {
			t.Fatalf("Open(%s) returned %s, want %s", tc.cfg.Backend, got, tc.want)
		}
		s.Close()
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := storage.Open(context.Background(), storage.Config{Backend: "redis"})
	if !errors.Is(err, storage.ErrUnknownBackend) {
		t.Fatalf("expected ErrUnknownBackend, got %v", err)
	}
}

func typeName(s storage.Store) string {
	switch s.(type) {
	case *storage.Memory:
		return "*storage.Memory"
	case *storage.File:
		return "*storage.File"
	case *storage.SQLite:
		return "*storage.SQLite"
	case *storage.Dynamo:
		return "*storage.Dynamo"
	}
	return "unknown"
}
