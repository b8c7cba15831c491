// Package store provides the SQLite implementation of repository.Repository.
//
// Each record type gets one table, derived from its Go struct by package
// record:
//   - Table name: the lower-cased type name (or TableName())
//   - Key column: INTEGER PRIMARY KEY AUTOINCREMENT, never reused
//   - Other columns: the field set, in declaration order
//
// # Connections
//
// A Store holds only a path. Every operation opens its own connection,
// applies the pragmas below, runs its statements and closes the connection
// on every exit path. Nothing spans two calls: no connection, no
// transaction, no cache. Callers composing several calls accept that a
// failure between them leaves earlier calls applied.
//
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - journal_mode=WAL: readers do not block the writer
//   - foreign_keys=ON
//
// Because each call reconnects, ":memory:" databases are rejected.
//
// # Statements
//
// All statements are built once per record type at construction and take
// values through ? placeholders. The only text ever appended at call time
// is a filter.Raw clause, which is reserved for trusted callers.
//
// # Drivers
//
// Both github.com/mattn/go-sqlite3 ("sqlite3", default) and
// modernc.org/sqlite ("sqlite") are registered; Options.Driver picks one.
//
// # Factory
//
// Open registers several record types on one database file and returns a
// Registry; For[T] fetches the typed repository:
//
//	reg, err := store.Open(ctx, "books.db", store.Options{},
//		store.Register[models.Category](),
//		store.Register[models.Expense](),
//	)
//	expenses, err := store.For[models.Expense](reg)
package store
