package record

import (
	"reflect"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var lower = cases.Lower(language.Und)

// TableNamer lets a record type pick its own table name.
type TableNamer interface {
	TableName() string
}

// tableName lower-cases the type identifier.
func tableName(typeName string) string {
	return lower.String(typeName)
}

// snakeCase converts a Go field name to a column name:
// ExpenseDate -> expense_date, PK -> pk, HTTPCode -> http_code.
func snakeCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// ColumnName returns the column a struct field maps to: the db tag name,
// or the snake_case field name. It returns "" for fields tagged `db:"-"`.
func ColumnName(sf reflect.StructField) string {
	tag := sf.Tag.Get("db")
	if tag == "-" {
		return ""
	}
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name
	}
	return snakeCase(sf.Name)
}

// QuoteIdent quotes an SQL identifier, doubling embedded quotes.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
