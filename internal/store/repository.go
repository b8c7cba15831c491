package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/bookkeeper/internal/record"
	"github.com/roach88/bookkeeper/internal/repository"
)

// Repository stores records of type T in one table of a Store.
// It implements repository.Repository[T].
type Repository[T any] struct {
	store *Store
	desc  *record.Descriptor
	sql   statements
}

type keyOnly struct{ PK int64 }

var (
	_ repository.Repository[keyOnly] = (*Repository[keyOnly])(nil)
	_ repository.Dropper             = (*Repository[keyOnly])(nil)
	_ repository.Table               = (*Repository[keyOnly])(nil)
)

// New derives T's column layout and creates its table if it does not
// exist. Existing rows are left untouched, so calling New repeatedly for
// the same type and store is safe.
func New[T any](ctx context.Context, st *Store) (*Repository[T], error) {
	desc, err := record.Describe[T]()
	if err != nil {
		return nil, err
	}
	r := &Repository[T]{
		store: st,
		desc:  desc,
		sql:   buildStatements(desc),
	}
	if err := r.EnsureTable(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// EnsureTable creates the backing table if it does not exist.
func (r *Repository[T]) EnsureTable(ctx context.Context) error {
	err := r.store.withConn(ctx, func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx, r.sql.create)
		return err
	})
	if err != nil {
		return fmt.Errorf("create table %s: %w", r.desc.Table, err)
	}
	r.store.logger.Debug("table ready", "table", r.desc.Table, "columns", len(r.desc.Fields))
	return nil
}

// TableName returns the backing table name.
func (r *Repository[T]) TableName() string { return r.desc.Table }

// Columns returns the non-key column names in field order.
func (r *Repository[T]) Columns() []string { return r.desc.Columns() }

// Descriptor returns the column layout derived for T.
func (r *Repository[T]) Descriptor() *record.Descriptor { return r.desc }

// marshalFields returns obj's non-key values as driver arguments.
func (r *Repository[T]) marshalFields(obj *T) ([]any, error) {
	values, err := r.desc.Values(obj)
	if err != nil {
		return nil, err
	}
	for i, f := range r.desc.Fields {
		if values[i], err = marshalValue(f, values[i]); err != nil {
			return nil, err
		}
	}
	return values, nil
}
