package record

import (
	"fmt"
	"reflect"
	"time"
)

// Values extracted from and assigned to records use one Go type per
// FieldType: int64, float64, string, time.Time, bool. A nil pointer field
// yields nil.

// structValue returns the addressable struct behind v, which must be a
// non-nil pointer to the descriptor's type.
func (d *Descriptor) structValue(v any) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Type() != d.Type {
		return reflect.Value{}, fmt.Errorf("%T is not *%s: %w", v, d.Type.Name(), ErrValueTypeMismatch)
	}
	return rv.Elem(), nil
}

// KeyOf returns the key field value of v.
func (d *Descriptor) KeyOf(v any) (int64, error) {
	rv, err := d.structValue(v)
	if err != nil {
		return 0, err
	}
	return rv.FieldByIndex(d.Key.index).Int(), nil
}

// SetKey writes key into the key field of v.
func (d *Descriptor) SetKey(v any, key int64) error {
	rv, err := d.structValue(v)
	if err != nil {
		return err
	}
	fv := rv.FieldByIndex(d.Key.index)
	if fv.OverflowInt(key) {
		return fmt.Errorf("key %d overflows %s.%s (%s)", key, d.Type.Name(), d.Key.Name, fv.Type())
	}
	fv.SetInt(key)
	return nil
}

// Values returns the non-key field values of v in field order.
func (d *Descriptor) Values(v any) ([]any, error) {
	rv, err := d.structValue(v)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(d.Fields))
	for i, f := range d.Fields {
		out[i] = f.get(rv)
	}
	return out, nil
}

// Map returns every column of v, key included, keyed by column name.
func (d *Descriptor) Map(v any) (map[string]any, error) {
	rv, err := d.structValue(v)
	if err != nil {
		return nil, err
	}
	m := make(map[string]any, len(d.Fields)+1)
	m[d.Key.Column] = rv.FieldByIndex(d.Key.index).Int()
	for _, f := range d.Fields {
		m[f.Column] = f.get(rv)
	}
	return m, nil
}

// Set assigns value to field f of v. A nil value stores the zero value
// (nil for pointer fields).
func (d *Descriptor) Set(v any, f Field, value any) error {
	rv, err := d.structValue(v)
	if err != nil {
		return err
	}
	if err := f.set(rv, value); err != nil {
		return fmt.Errorf("%s.%s: %w", d.Type.Name(), f.Name, err)
	}
	return nil
}

func (f Field) get(rv reflect.Value) any {
	fv := rv.FieldByIndex(f.index)
	if f.Nullable {
		if fv.IsNil() {
			return nil
		}
		fv = fv.Elem()
	}
	switch f.Type {
	case TypeInteger:
		if isSignedInt(fv.Kind()) {
			return fv.Int()
		}
		return int64(fv.Uint())
	case TypeReal:
		return fv.Float()
	case TypeText:
		return fv.String()
	case TypeBoolean:
		return fv.Bool()
	case TypeTimestamp:
		return fv.Interface().(time.Time)
	}
	return nil
}

func (f Field) set(rv reflect.Value, value any) error {
	fv := rv.FieldByIndex(f.index)
	if value == nil {
		fv.Set(reflect.Zero(fv.Type()))
		return nil
	}
	target := fv
	if f.Nullable {
		target = reflect.New(f.goType).Elem()
	}

	switch f.Type {
	case TypeInteger:
		n, ok := value.(int64)
		if !ok {
			return fmt.Errorf("want int64, got %T", value)
		}
		if isSignedInt(target.Kind()) {
			if target.OverflowInt(n) {
				return fmt.Errorf("%d overflows %s", n, target.Type())
			}
			target.SetInt(n)
		} else {
			if n < 0 || target.OverflowUint(uint64(n)) {
				return fmt.Errorf("%d overflows %s", n, target.Type())
			}
			target.SetUint(uint64(n))
		}
	case TypeReal:
		x, ok := value.(float64)
		if !ok {
			return fmt.Errorf("want float64, got %T", value)
		}
		target.SetFloat(x)
	case TypeText:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("want string, got %T", value)
		}
		target.SetString(s)
	case TypeBoolean:
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("want bool, got %T", value)
		}
		target.SetBool(b)
	case TypeTimestamp:
		ts, ok := value.(time.Time)
		if !ok {
			return fmt.Errorf("want time.Time, got %T", value)
		}
		target.Set(reflect.ValueOf(ts))
	}

	if f.Nullable {
		fv.Set(target.Addr())
	}
	return nil
}
