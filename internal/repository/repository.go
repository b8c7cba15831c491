package repository

import (
	"context"

	"github.com/roach88/bookkeeper/internal/filter"
)

// Repository is the storage contract for one record type.
//
// T is a struct whose key field is described by package record. A key of 0
// marks a transient record; any other value is the record's stored identity.
type Repository[T any] interface {
	// Add persists a transient record, writes the assigned key into obj and
	// returns it. Fails with ErrAlreadyPersisted if obj already has a key.
	Add(ctx context.Context, obj *T) (int64, error)

	// Get returns the record stored under key, or (nil, nil) when no such
	// record exists. Timestamps come back in UTC whatever zone they were
	// stored from, so compare them with time.Time.Equal rather than ==.
	Get(ctx context.Context, key int64) (*T, error)

	// GetAll returns every record matching where; a nil predicate returns
	// the whole table in insertion order. Timestamps are UTC as for Get.
	GetAll(ctx context.Context, where filter.Predicate) ([]T, error)

	// Update overwrites every non-key field of the record stored under
	// obj's key. Fails with ErrUnknownKey if obj has no key.
	Update(ctx context.Context, obj *T) error

	// Delete removes the record stored under key. Fails with ErrUnknownKey
	// if key is 0; deleting an absent non-zero key is a no-op.
	Delete(ctx context.Context, key int64) error
}

// Dropper removes a repository's backing table.
type Dropper interface {
	Drop(ctx context.Context) error
}

// Table exposes the storage layout behind a repository.
type Table interface {
	TableName() string
	Columns() []string
}
