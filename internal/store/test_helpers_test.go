package store

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"
)

// Custom is the smallest record shape: one field plus the key.
type Custom struct {
	F  int
	PK int
}

// Entry covers every supported column type.
type Entry struct {
	Amount float64
	Label  string
	At     time.Time
	Note   *string
	Done   bool
	PK     int64
}

var drivers = []string{DriverMattn, DriverModernc}

// testPath returns a database path inside a per-test directory.
func testPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.sqlite")
}

// createTestStore creates a store on a fresh temp file with logging silenced.
func createTestStore(t *testing.T, opts Options) *Store {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	st, err := NewStore(testPath(t), opts)
	if err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}
	return st
}

// createTestRepo builds a repository for T on st.
func createTestRepo[T any](t *testing.T, st *Store) *Repository[T] {
	t.Helper()
	repo, err := New[T](context.Background(), st)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return repo
}

// forEachDriver runs fn once per registered driver, each on its own store.
func forEachDriver(t *testing.T, fn func(t *testing.T, st *Store)) {
	t.Helper()
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			fn(t, createTestStore(t, Options{Driver: driver}))
		})
	}
}

func ptr[T any](v T) *T { return &v }
