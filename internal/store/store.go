package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Driver names registered with database/sql.
const (
	DriverMattn   = "sqlite3" // github.com/mattn/go-sqlite3 (cgo)
	DriverModernc = "sqlite"  // modernc.org/sqlite (pure Go)
)

const defaultBusyTimeout = 5 * time.Second

var (
	ErrMemoryStore   = errors.New("in-memory databases are not supported: every call opens a new connection")
	ErrUnknownDriver = errors.New("unknown sqlite driver")
	ErrEmptyPath     = errors.New("store path is empty")
)

// Options configures how connections are opened.
type Options struct {
	// Driver selects DriverMattn (default) or DriverModernc.
	Driver string

	// BusyTimeout is how long a connection waits on a locked database.
	// Zero means 5 seconds. Loaded configuration always sets a positive value.
	BusyTimeout time.Duration

	// JournalMode is applied on every connection. Empty means WAL.
	JournalMode string

	// DisableForeignKeys turns off foreign key enforcement.
	DisableForeignKeys bool

	// Logger receives per-statement debug records. Nil means slog.Default().
	Logger *slog.Logger
}

// Store is a SQLite database file shared by several repositories.
//
// A Store holds no connection. Every repository call opens one, applies the
// pragmas, runs its statements and closes it again, so no state leaks
// between calls.
type Store struct {
	path    string
	driver  string
	pragmas []string
	logger  *slog.Logger
}

// NewStore validates path and options. It does not touch the file; the
// first repository call creates it.
func NewStore(path string, opts Options) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrEmptyPath
	}
	if isMemoryPath(path) {
		return nil, fmt.Errorf("open %q: %w", path, ErrMemoryStore)
	}

	driver := opts.Driver
	if driver == "" {
		driver = DriverMattn
	}
	if driver != DriverMattn && driver != DriverModernc {
		return nil, fmt.Errorf("%w %q (want %q or %q)", ErrUnknownDriver, driver, DriverMattn, DriverModernc)
	}

	busy := opts.BusyTimeout
	if busy <= 0 {
		busy = defaultBusyTimeout
	}
	journal := opts.JournalMode
	if journal == "" {
		journal = "WAL"
	}
	foreignKeys := "ON"
	if opts.DisableForeignKeys {
		foreignKeys = "OFF"
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		path:   path,
		driver: driver,
		pragmas: []string{
			fmt.Sprintf("PRAGMA busy_timeout = %d", busy.Milliseconds()),
			fmt.Sprintf("PRAGMA journal_mode = %s", journal),
			fmt.Sprintf("PRAGMA foreign_keys = %s", foreignKeys),
		},
		logger: logger,
	}, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Driver returns the database/sql driver name in use.
func (s *Store) Driver() string { return s.driver }

func isMemoryPath(path string) bool {
	return path == ":memory:" ||
		strings.HasPrefix(path, "file::memory:") ||
		strings.Contains(path, "mode=memory")
}

// withConn opens a connection, applies pragmas, runs fn and releases the
// connection on every exit path.
func (s *Store) withConn(ctx context.Context, fn func(conn *sql.Conn) error) (err error) {
	db, err := sql.Open(s.driver, s.path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close database: %w", cerr)
		}
	}()

	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer conn.Close()

	if err := s.applyPragmas(ctx, conn); err != nil {
		return err
	}
	return fn(conn)
}

// applyPragmas sets the per-connection SQLite configuration.
func (s *Store) applyPragmas(ctx context.Context, conn *sql.Conn) error {
	for _, pragma := range s.pragmas {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value on a
// fresh connection. Used for testing.
func (s *Store) verifyPragma(ctx context.Context, name, expected string) error {
	return s.withConn(ctx, func(conn *sql.Conn) error {
		var value string
		if err := conn.QueryRowContext(ctx, "PRAGMA "+name).Scan(&value); err != nil {
			return fmt.Errorf("failed to query %s: %w", name, err)
		}
		if value != expected {
			return fmt.Errorf("%s = %q, expected %q", name, value, expected)
		}
		return nil
	})
}

// tableExists reports whether a table is present. Used for testing.
func (s *Store) tableExists(ctx context.Context, table string) (bool, error) {
	var n int
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		return conn.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table,
		).Scan(&n)
	})
	return n > 0, err
}
