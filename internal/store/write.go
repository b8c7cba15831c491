package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/bookkeeper/internal/repository"
)

var errNilRecord = errors.New("nil record")

// Add inserts a transient record and writes the assigned key back into obj.
// A record that already has a key is rejected before the store is touched.
func (r *Repository[T]) Add(ctx context.Context, obj *T) (int64, error) {
	if obj == nil {
		return 0, fmt.Errorf("add %s: %w", r.desc.Table, errNilRecord)
	}
	key, err := r.desc.KeyOf(obj)
	if err != nil {
		return 0, fmt.Errorf("add %s: %w", r.desc.Table, err)
	}
	if key != 0 {
		return 0, repository.NewAlreadyPersisted("add", r.desc.Table, key)
	}

	args, err := r.marshalFields(obj)
	if err != nil {
		return 0, fmt.Errorf("add %s: %w", r.desc.Table, err)
	}

	var id int64
	err = r.store.withConn(ctx, func(conn *sql.Conn) error {
		result, err := conn.ExecContext(ctx, r.sql.insert, args...)
		if err != nil {
			return err
		}
		id, err = result.LastInsertId()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("add %s: %w", r.desc.Table, err)
	}

	if err := r.desc.SetKey(obj, id); err != nil {
		return 0, fmt.Errorf("add %s: %w", r.desc.Table, err)
	}
	r.store.logger.Debug("record added", "table", r.desc.Table, "key", id)
	return id, nil
}

// Update overwrites every non-key column of the row stored under obj's key.
// Updating a key with no row is a no-op, matching Delete.
func (r *Repository[T]) Update(ctx context.Context, obj *T) error {
	if obj == nil {
		return fmt.Errorf("update %s: %w", r.desc.Table, errNilRecord)
	}
	key, err := r.desc.KeyOf(obj)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.desc.Table, err)
	}
	if key == 0 {
		return repository.NewUnknownKey("update", r.desc.Table)
	}
	if r.sql.update == "" {
		// Key-only record: nothing to overwrite.
		return nil
	}

	args, err := r.marshalFields(obj)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.desc.Table, err)
	}
	args = append(args, key)

	var affected int64
	err = r.store.withConn(ctx, func(conn *sql.Conn) error {
		result, err := conn.ExecContext(ctx, r.sql.update, args...)
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("update %s: %w", r.desc.Table, err)
	}
	r.store.logger.Debug("record updated", "table", r.desc.Table, "key", key, "rows", affected)
	return nil
}

// Delete removes the row stored under key. Deleting an absent non-zero key
// is not an error.
func (r *Repository[T]) Delete(ctx context.Context, key int64) error {
	if key == 0 {
		return repository.NewUnknownKey("delete", r.desc.Table)
	}

	var affected int64
	err := r.store.withConn(ctx, func(conn *sql.Conn) error {
		result, err := conn.ExecContext(ctx, r.sql.delete, key)
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.desc.Table, err)
	}
	r.store.logger.Debug("record deleted", "table", r.desc.Table, "key", key, "rows", affected)
	return nil
}

// Drop removes the backing table and its rows. The AUTOINCREMENT counter
// goes with it, so a table recreated by EnsureTable starts again at key 1.
// Other operations fail until the table is recreated.
func (r *Repository[T]) Drop(ctx context.Context) error {
	err := r.store.withConn(ctx, func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx, r.sql.drop)
		return err
	})
	if err != nil {
		return fmt.Errorf("drop %s: %w", r.desc.Table, err)
	}
	r.store.logger.Debug("table dropped", "table", r.desc.Table)
	return nil
}
