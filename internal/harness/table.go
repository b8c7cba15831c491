package harness

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/bookkeeper/internal/canonical"
	"github.com/roach88/bookkeeper/internal/filter"
	"github.com/roach88/bookkeeper/internal/record"
	"github.com/roach88/bookkeeper/internal/store"
)

// table drives one typed repository with the untyped column maps that
// scenarios are written in.
type table interface {
	name() string
	add(ctx context.Context, rec map[string]any) (int64, error)
	get(ctx context.Context, key int64) (map[string]any, error)
	getAll(ctx context.Context, where filter.Predicate) ([]map[string]any, error)
	update(ctx context.Context, rec map[string]any) error
	delete(ctx context.Context, key int64) error
	drop(ctx context.Context) error
	field(column string) (record.Field, bool)
}

type typedTable[T any] struct {
	repo *store.Repository[T]
}

func bind[T any](reg *store.Registry) (table, error) {
	repo, err := store.For[T](reg)
	if err != nil {
		return nil, err
	}
	return typedTable[T]{repo: repo}, nil
}

func (t typedTable[T]) name() string { return t.repo.TableName() }

func (t typedTable[T]) field(column string) (record.Field, bool) {
	return t.repo.Descriptor().Field(column)
}

func (t typedTable[T]) build(rec map[string]any) (*T, error) {
	d := t.repo.Descriptor()
	obj := new(T)
	for col, raw := range rec {
		f, ok := d.Field(col)
		if !ok {
			return nil, fmt.Errorf("%s: %w: %s", d.Table, filter.ErrUnknownColumn, col)
		}
		v, err := coerce(f, raw)
		if err != nil {
			return nil, err
		}
		if err := d.Set(obj, f, v); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

func (t typedTable[T]) add(ctx context.Context, rec map[string]any) (int64, error) {
	obj, err := t.build(rec)
	if err != nil {
		return 0, err
	}
	return t.repo.Add(ctx, obj)
}

func (t typedTable[T]) get(ctx context.Context, key int64) (map[string]any, error) {
	obj, err := t.repo.Get(ctx, key)
	if err != nil || obj == nil {
		return nil, err
	}
	return t.repo.Descriptor().Map(obj)
}

func (t typedTable[T]) getAll(ctx context.Context, where filter.Predicate) ([]map[string]any, error) {
	objs, err := t.repo.GetAll(ctx, where)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, len(objs))
	for i := range objs {
		m, err := t.repo.Descriptor().Map(&objs[i])
		if err != nil {
			return nil, err
		}
		out[i] = m
	}
	return out, nil
}

func (t typedTable[T]) update(ctx context.Context, rec map[string]any) error {
	obj, err := t.build(rec)
	if err != nil {
		return err
	}
	return t.repo.Update(ctx, obj)
}

func (t typedTable[T]) delete(ctx context.Context, key int64) error {
	return t.repo.Delete(ctx, key)
}

func (t typedTable[T]) drop(ctx context.Context) error {
	return t.repo.Drop(ctx)
}

// timeLayouts are accepted for timestamp columns written as YAML strings.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// coerce converts a YAML-decoded value to the Go type record.Field.set
// expects for f.
func coerce(f record.Field, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	switch f.Type {
	case record.TypeInteger:
		switch v := raw.(type) {
		case int:
			return int64(v), nil
		case int64:
			return v, nil
		}
	case record.TypeReal:
		switch v := raw.(type) {
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		case float64:
			return v, nil
		}
	case record.TypeText:
		if s, ok := raw.(string); ok {
			return s, nil
		}
	case record.TypeBoolean:
		if b, ok := raw.(bool); ok {
			return b, nil
		}
	case record.TypeTimestamp:
		switch v := raw.(type) {
		case time.Time:
			return v.UTC(), nil
		case string:
			for _, layout := range timeLayouts {
				if ts, err := time.Parse(layout, v); err == nil {
					return ts.UTC(), nil
				}
			}
			return nil, fmt.Errorf("column %s: cannot parse %q as a timestamp", f.Column, v)
		}
	}
	return nil, fmt.Errorf("column %s: cannot use %T as %s", f.Column, raw, f.Type)
}

// sameValue compares an expected scenario value with a stored one through
// their canonical JSON forms.
func sameValue(f record.Field, want, got any) (bool, error) {
	w, err := coerce(f, want)
	if err != nil {
		return false, err
	}
	wb, err := canonical.Marshal(w)
	if err != nil {
		return false, err
	}
	gb, err := canonical.Marshal(got)
	if err != nil {
		return false, err
	}
	return string(wb) == string(gb), nil
}
