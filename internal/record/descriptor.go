package record

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Construction errors. Describe wraps these with the offending type and field.
var (
	ErrInvalidRecord     = errors.New("record type must be a named struct")
	ErrNoKeyField        = errors.New("record type has no integer key field")
	ErrUnsupportedField  = errors.New("unsupported field type")
	ErrDuplicateColumn   = errors.New("duplicate column name")
	ErrValueTypeMismatch = errors.New("value does not belong to record type")
)

// DefaultKeyField is the Go field used as key when no field carries the pk tag option.
const DefaultKeyField = "PK"

// Field describes one column of a record type.
type Field struct {
	Name     string // Go field name
	Column   string
	Type     FieldType
	Nullable bool // pointer field; nil is stored as NULL

	index  []int
	goType reflect.Type // element type for pointer fields
}

// Descriptor is the column layout of a record type.
// Fields and the values produced by Values are always in declaration order.
type Descriptor struct {
	Type   reflect.Type
	Table  string
	Key    Field
	Fields []Field
}

// Describe derives the descriptor for T.
func Describe[T any]() (*Descriptor, error) {
	return DescribeType(reflect.TypeOf((*T)(nil)).Elem())
}

// DescribeType derives the descriptor for a struct type.
//
// Exported fields become columns unless tagged `db:"-"`. The column name is
// the tag name or the snake_case field name. The key is the field tagged
// `db:"name,pk"`, falling back to a field named PK; it must be an int or
// int64 and is excluded from Fields.
func DescribeType(t reflect.Type) (*Descriptor, error) {
	if t == nil || t.Kind() != reflect.Struct || t.Name() == "" || t == timeType {
		return nil, fmt.Errorf("describe %v: %w", t, ErrInvalidRecord)
	}

	d := &Descriptor{Type: t, Table: tableName(t.Name())}
	if namer, ok := reflect.Zero(t).Interface().(TableNamer); ok {
		d.Table = namer.TableName()
	} else if namer, ok := reflect.New(t).Interface().(TableNamer); ok {
		d.Table = namer.TableName()
	}

	var (
		keys     []Field
		fallback *reflect.StructField
		fbName   string
		seen     = make(map[string]string)
	)
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := sf.Tag.Get("db")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			name = snakeCase(sf.Name)
		}
		if prev, dup := seen[name]; dup {
			return nil, fmt.Errorf("describe %s: %s and %s: %w %q", t.Name(), prev, sf.Name, ErrDuplicateColumn, name)
		}
		seen[name] = sf.Name

		if hasOption(opts, "pk") {
			key, err := newKey(t, sf, name)
			if err != nil {
				return nil, err
			}
			keys = append(keys, key)
			continue
		}
		if sf.Name == DefaultKeyField {
			fb := sf
			fallback, fbName = &fb, name
			continue
		}

		f, err := newField(sf, name)
		if err != nil {
			return nil, fmt.Errorf("describe %s: %w", t.Name(), err)
		}
		d.Fields = append(d.Fields, f)
	}

	switch {
	case len(keys) > 1:
		return nil, fmt.Errorf("describe %s: %d fields tagged pk: %w", t.Name(), len(keys), ErrNoKeyField)
	case len(keys) == 1:
		d.Key = keys[0]
		if fallback != nil {
			// A field named PK that is not the tagged key is an ordinary column.
			f, err := newField(*fallback, fbName)
			if err != nil {
				return nil, fmt.Errorf("describe %s: %w", t.Name(), err)
			}
			d.Fields = insertByIndex(d.Fields, f)
		}
	case fallback != nil:
		key, err := newKey(t, *fallback, fbName)
		if err != nil {
			return nil, err
		}
		d.Key = key
	default:
		return nil, fmt.Errorf("describe %s: %w", t.Name(), ErrNoKeyField)
	}

	return d, nil
}

// newKey describes the key field. Keys are int or int64 so every key
// SQLite can assign fits the field.
func newKey(t reflect.Type, sf reflect.StructField, column string) (Field, error) {
	if k := sf.Type.Kind(); k != reflect.Int && k != reflect.Int64 {
		return Field{}, fmt.Errorf("describe %s: key field %s is %s, want int or int64: %w", t.Name(), sf.Name, sf.Type, ErrNoKeyField)
	}
	return Field{Name: sf.Name, Column: column, Type: TypeInteger, index: sf.Index, goType: sf.Type}, nil
}

func newField(sf reflect.StructField, column string) (Field, error) {
	goType := sf.Type
	nullable := false
	if goType.Kind() == reflect.Pointer {
		goType = goType.Elem()
		nullable = true
	}
	ft, ok := fieldTypeOf(goType)
	if !ok || sf.Anonymous {
		return Field{}, fmt.Errorf("field %s (%s): %w", sf.Name, sf.Type, ErrUnsupportedField)
	}
	return Field{
		Name:     sf.Name,
		Column:   column,
		Type:     ft,
		Nullable: nullable,
		index:    sf.Index,
		goType:   goType,
	}, nil
}

func insertByIndex(fields []Field, f Field) []Field {
	pos := len(fields)
	for i, existing := range fields {
		if existing.index[0] > f.index[0] {
			pos = i
			break
		}
	}
	fields = append(fields, Field{})
	copy(fields[pos+1:], fields[pos:])
	fields[pos] = f
	return fields
}

func hasOption(opts, want string) bool {
	for opts != "" {
		var opt string
		opt, opts, _ = strings.Cut(opts, ",")
		if strings.TrimSpace(opt) == want {
			return true
		}
	}
	return false
}

// Columns returns the non-key column names in field order.
func (d *Descriptor) Columns() []string {
	cols := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		cols[i] = f.Column
	}
	return cols
}

// AllColumns returns the key column followed by Columns.
func (d *Descriptor) AllColumns() []string {
	return append([]string{d.Key.Column}, d.Columns()...)
}

// Field looks up a field by column name, including the key column.
func (d *Descriptor) Field(column string) (Field, bool) {
	if column == d.Key.Column {
		return d.Key, true
	}
	for _, f := range d.Fields {
		if f.Column == column {
			return f, true
		}
	}
	return Field{}, false
}
