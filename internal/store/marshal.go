package store

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/bookkeeper/internal/record"
)

// TimeLayout is the text form of timestamp columns. Values are stored in
// UTC, so lexical order matches time order and a raw clause can compare
// against literals such as '2024-01-31 23:59:59'.
const TimeLayout = "2006-01-02 15:04:05.999999999-07:00"

// parseLayouts are accepted when reading timestamps back. The first entry
// is what this package writes; the rest cover rows written by hand.
var parseLayouts = []string{
	TimeLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// FormatTime renders t the way timestamp columns store it.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// marshalValue converts a field value (as produced by record.Descriptor.Values)
// to a driver argument.
func marshalValue(f record.Field, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch f.Type {
	case record.TypeTimestamp:
		t, ok := v.(time.Time)
		if !ok {
			return nil, fmt.Errorf("marshal %s: want time.Time, got %T", f.Column, v)
		}
		return FormatTime(t), nil
	case record.TypeBoolean:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("marshal %s: want bool, got %T", f.Column, v)
		}
		return boolToInt(b), nil
	}
	return v, nil
}

// marshalArg converts a filter argument. Caller-supplied values may be any
// Go type the driver accepts; only times and booleans need rewriting so
// they compare correctly against stored text and integers.
func marshalArg(v any) any {
	switch val := v.(type) {
	case time.Time:
		return FormatTime(val)
	case *time.Time:
		if val == nil {
			return nil
		}
		return FormatTime(*val)
	case bool:
		return boolToInt(val)
	}
	return v
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// unmarshalValue converts a scanned column value into the Go type record
// expects for f: int64, float64, string, bool or time.Time. NULL stays nil.
func unmarshalValue(f record.Field, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	if b, ok := raw.([]byte); ok {
		raw = string(b)
	}

	var (
		v   any
		err error
	)
	switch f.Type {
	case record.TypeInteger:
		v, err = unmarshalInt(raw)
	case record.TypeReal:
		v, err = unmarshalFloat(raw)
	case record.TypeText:
		v = unmarshalText(raw)
	case record.TypeBoolean:
		v, err = unmarshalBool(raw)
	case record.TypeTimestamp:
		v, err = unmarshalTime(raw)
	default:
		err = fmt.Errorf("unsupported field type %s", f.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", f.Column, err)
	}
	return v, nil
}

func unmarshalInt(raw any) (int64, error) {
	switch val := raw.(type) {
	case int64:
		return val, nil
	case float64:
		if val != math.Trunc(val) {
			return 0, fmt.Errorf("%v is not an integer", val)
		}
		return int64(val), nil
	case bool:
		return boolToInt(val), nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(val), 10, 64)
	}
	return 0, fmt.Errorf("cannot read %T as integer", raw)
}

func unmarshalFloat(raw any) (float64, error) {
	switch val := raw.(type) {
	case float64:
		return val, nil
	case int64:
		return float64(val), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(val), 64)
	}
	return 0, fmt.Errorf("cannot read %T as real", raw)
}

func unmarshalText(raw any) string {
	switch val := raw.(type) {
	case string:
		return val
	case time.Time:
		return FormatTime(val)
	}
	return fmt.Sprint(raw)
}

func unmarshalBool(raw any) (bool, error) {
	switch val := raw.(type) {
	case bool:
		return val, nil
	case int64:
		return val != 0, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(val))
	}
	return false, fmt.Errorf("cannot read %T as boolean", raw)
}

// unmarshalTime accepts both text and the time.Time values drivers produce
// for TIMESTAMP columns. Results are always UTC.
func unmarshalTime(raw any) (time.Time, error) {
	switch val := raw.(type) {
	case time.Time:
		return val.UTC(), nil
	case int64:
		return time.Unix(val, 0).UTC(), nil
	case string:
		s := strings.TrimSpace(val)
		for _, layout := range parseLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("cannot parse %q as timestamp", s)
	}
	return time.Time{}, fmt.Errorf("cannot read %T as timestamp", raw)
}
