package store

import (
	"fmt"
	"strings"

	"github.com/roach88/bookkeeper/internal/record"
)

// createTableSQL builds the idempotent DDL for a record type: the key as
// an AUTOINCREMENT primary key, so keys are never reused after deletes,
// followed by the field set in declaration order.
func createTableSQL(d *record.Descriptor) string {
	cols := make([]string, 0, len(d.Fields)+1)
	cols = append(cols, record.QuoteIdent(d.Key.Column)+" INTEGER PRIMARY KEY AUTOINCREMENT")
	for _, f := range d.Fields {
		col := record.QuoteIdent(f.Column) + " " + f.Type.SQLType()
		if !f.Nullable {
			col += " NOT NULL"
		}
		cols = append(cols, col)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)",
		record.QuoteIdent(d.Table), strings.Join(cols, ",\n\t"))
}

// statements holds the SQL text for one record type, built once.
type statements struct {
	create    string
	insert    string
	selectAll string
	update    string
	delete    string
	drop      string
}

func buildStatements(d *record.Descriptor) statements {
	table := record.QuoteIdent(d.Table)
	key := record.QuoteIdent(d.Key.Column)

	quoted := make([]string, len(d.Fields))
	placeholders := make([]string, len(d.Fields))
	assignments := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		quoted[i] = record.QuoteIdent(f.Column)
		placeholders[i] = "?"
		assignments[i] = quoted[i] + " = ?"
	}

	s := statements{
		create:    createTableSQL(d),
		selectAll: fmt.Sprintf("SELECT %s FROM %s", strings.Join(append([]string{key}, quoted...), ", "), table),
		delete:    fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, key),
		drop:      fmt.Sprintf("DROP TABLE IF EXISTS %s", table),
	}
	if len(d.Fields) == 0 {
		s.insert = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", table)
	} else {
		s.insert = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			table, strings.Join(quoted, ", "), strings.Join(placeholders, ", "))
		s.update = fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
			table, strings.Join(assignments, ", "), key)
	}
	return s
}
