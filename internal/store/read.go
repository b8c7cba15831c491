package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/bookkeeper/internal/filter"
	"github.com/roach88/bookkeeper/internal/record"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Get returns the record stored under key, or (nil, nil) if there is none.
//
// Timestamps are returned in UTC. A record added with a time in another zone
// is the same instant but not == to the original; compare with time.Time.Equal.
func (r *Repository[T]) Get(ctx context.Context, key int64) (*T, error) {
	var (
		out   *T
		query = r.sql.selectAll + " WHERE " + record.QuoteIdent(r.desc.Key.Column) + " = ?"
	)
	err := r.store.withConn(ctx, func(conn *sql.Conn) error {
		obj, err := r.scan(conn.QueryRowContext(ctx, query, key))
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		out = &obj
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", r.desc.Table, err)
	}
	return out, nil
}

// GetAll returns the records matching where.
//
// A nil predicate or a typed one yields rows ordered by key, which is
// insertion order. A filter.Raw clause is appended verbatim and decides
// its own ordering. Timestamps are returned in UTC, as for Get.
func (r *Repository[T]) GetAll(ctx context.Context, where filter.Predicate) ([]T, error) {
	compiled, err := filter.Compile(where, r.desc.AllColumns())
	if err != nil {
		return nil, fmt.Errorf("get all %s: %w", r.desc.Table, err)
	}

	query := r.sql.selectAll
	if compiled.SQL != "" {
		query += " " + compiled.SQL
	}
	if !compiled.Raw {
		query += " ORDER BY " + record.QuoteIdent(r.desc.Key.Column) + " ASC"
	}
	args, err := r.marshalArgs(compiled.Args)
	if err != nil {
		return nil, fmt.Errorf("get all %s: %w", r.desc.Table, err)
	}

	var out []T
	err = r.store.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			obj, err := r.scan(rows)
			if err != nil {
				return err
			}
			out = append(out, obj)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("get all %s: %w", r.desc.Table, err)
	}
	r.store.logger.Debug("records listed", "table", r.desc.Table, "count", len(out), "raw", compiled.Raw)
	return out, nil
}

// marshalArgs encodes filter arguments with the type of the column they
// are compared against.
func (r *Repository[T]) marshalArgs(args []filter.Arg) ([]any, error) {
	out := make([]any, len(args))
	for i, a := range args {
		if a.Column == "" {
			out[i] = marshalArg(a.Value)
			continue
		}
		f, ok := r.desc.Field(a.Column)
		if !ok {
			return nil, fmt.Errorf("%w %q", filter.ErrUnknownColumn, a.Column)
		}
		switch f.Type {
		case record.TypeTimestamp, record.TypeBoolean:
			out[i] = marshalArg(a.Value)
		default:
			out[i] = a.Value
		}
	}
	return out, nil
}

// scan reads one row (key first, then the field set) into a fresh T.
func (r *Repository[T]) scan(s scanner) (T, error) {
	var obj T

	raw := make([]any, len(r.desc.Fields)+1)
	dest := make([]any, len(raw))
	for i := range raw {
		dest[i] = &raw[i]
	}
	if err := s.Scan(dest...); err != nil {
		return obj, err
	}

	key, err := unmarshalValue(r.desc.Key, raw[0])
	if err != nil {
		return obj, err
	}
	keyInt, _ := key.(int64)
	if err := r.desc.SetKey(&obj, keyInt); err != nil {
		return obj, err
	}

	for i, f := range r.desc.Fields {
		v, err := unmarshalValue(f, raw[i+1])
		if err != nil {
			return obj, err
		}
		if err := r.desc.Set(&obj, f, v); err != nil {
			return obj, err
		}
	}
	return obj, nil
}
