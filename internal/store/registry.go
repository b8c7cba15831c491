package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/roach88/bookkeeper/internal/record"
)

var (
	ErrNotRegistered  = errors.New("record type not registered")
	ErrDuplicateModel = errors.New("record type registered twice")
	ErrDuplicateTable = errors.New("table name registered twice")
)

// Model is a record type to be registered with Open. Create one with Register.
type Model interface {
	recordType() reflect.Type
	open(ctx context.Context, st *Store) (managed, error)
}

// managed is the type-erased view the registry keeps of each repository.
type managed interface {
	TableName() string
	Columns() []string
	EnsureTable(ctx context.Context) error
	Drop(ctx context.Context) error
}

type model[T any] struct{}

// Register names T as a record type for Open.
func Register[T any]() Model { return model[T]{} }

func (model[T]) recordType() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }

func (model[T]) open(ctx context.Context, st *Store) (managed, error) {
	repo, err := New[T](ctx, st)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// Registry maps record types to their repositories, all sharing one Store.
type Registry struct {
	store *Store
	order []reflect.Type
	repos map[reflect.Type]managed
}

// Open is the repository factory: it builds one repository per model on
// the database at path and creates every table before returning.
func Open(ctx context.Context, path string, opts Options, models ...Model) (*Registry, error) {
	st, err := NewStore(path, opts)
	if err != nil {
		return nil, err
	}
	return OpenStore(ctx, st, models...)
}

// OpenStore is Open for an existing Store. Two models mapping to the same
// table are rejected before any table is created.
func OpenStore(ctx context.Context, st *Store, models ...Model) (*Registry, error) {
	reg := &Registry{
		store: st,
		repos: make(map[reflect.Type]managed, len(models)),
	}
	tables := make(map[string]reflect.Type, len(models))
	for _, m := range models {
		t := m.recordType()
		d, err := record.DescribeType(t)
		if err != nil {
			return nil, fmt.Errorf("register %s: %w", t, err)
		}
		if prev, dup := tables[d.Table]; dup {
			if prev == t {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateModel, t)
			}
			return nil, fmt.Errorf("%w: %q used by %s and %s", ErrDuplicateTable, d.Table, prev, t)
		}
		tables[d.Table] = t
	}
	for _, m := range models {
		t := m.recordType()
		repo, err := m.open(ctx, st)
		if err != nil {
			return nil, fmt.Errorf("register %s: %w", t, err)
		}
		reg.repos[t] = repo
		reg.order = append(reg.order, t)
	}
	st.logger.Debug("repositories ready", "path", st.path, "driver", st.driver, "tables", reg.Tables())
	return reg, nil
}

// For returns the repository registered for T.
func For[T any](reg *Registry) (*Repository[T], error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	m, ok := reg.repos[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, t)
	}
	return m.(*Repository[T]), nil
}

// Store returns the shared store.
func (reg *Registry) Store() *Store { return reg.store }

// Tables returns the table names in registration order.
func (reg *Registry) Tables() []string {
	names := make([]string, len(reg.order))
	for i, t := range reg.order {
		names[i] = reg.repos[t].TableName()
	}
	return names
}

// Columns returns the non-key columns of a registered table.
func (reg *Registry) Columns(table string) ([]string, bool) {
	for _, t := range reg.order {
		if repo := reg.repos[t]; repo.TableName() == table {
			return repo.Columns(), true
		}
	}
	return nil, false
}

// DropAll drops every registered table.
func (reg *Registry) DropAll(ctx context.Context) error {
	for _, t := range reg.order {
		if err := reg.repos[t].Drop(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Reset drops and recreates every registered table, discarding all rows
// and restarting keys at 1.
func (reg *Registry) Reset(ctx context.Context) error {
	if err := reg.DropAll(ctx); err != nil {
		return err
	}
	for _, t := range reg.order {
		if err := reg.repos[t].EnsureTable(ctx); err != nil {
			return err
		}
	}
	return nil
}
