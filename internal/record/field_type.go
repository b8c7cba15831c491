package record

import (
	"fmt"
	"reflect"
	"time"
)

// FieldType is the semantic storage type of a record field.
type FieldType int

const (
	TypeInteger FieldType = iota
	TypeReal
	TypeText
	TypeTimestamp
	TypeBoolean
)

var timeType = reflect.TypeOf(time.Time{})

// String returns the lower-case name used in error messages and traces.
func (t FieldType) String() string {
	switch t {
	case TypeInteger:
		return "integer"
	case TypeReal:
		return "real"
	case TypeText:
		return "text"
	case TypeTimestamp:
		return "timestamp"
	case TypeBoolean:
		return "boolean"
	default:
		return fmt.Sprintf("FieldType(%d)", int(t))
	}
}

// SQLType returns the SQLite column type declared for the field.
// Booleans are declared INTEGER so drivers hand back plain int64 values.
func (t FieldType) SQLType() string {
	switch t {
	case TypeInteger, TypeBoolean:
		return "INTEGER"
	case TypeReal:
		return "REAL"
	case TypeText:
		return "TEXT"
	case TypeTimestamp:
		return "TIMESTAMP"
	default:
		return "BLOB"
	}
}

// fieldTypeOf maps a Go type to its semantic type.
// Pointers are unwrapped by the caller; ok is false for unsupported types.
func fieldTypeOf(t reflect.Type) (FieldType, bool) {
	if t == timeType {
		return TypeTimestamp, true
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return TypeInteger, true
	case reflect.Float32, reflect.Float64:
		return TypeReal, true
	case reflect.String:
		return TypeText, true
	case reflect.Bool:
		return TypeBoolean, true
	default:
		return 0, false
	}
}

func isSignedInt(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}
