package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/bookkeeper/internal/record"
)

var (
	ErrUnknownColumn = errors.New("unknown column")
	ErrInvalidFilter = errors.New("invalid filter")
)

// Arg is a bound parameter. Column names the column the value is compared
// against, so the store can encode it with that column's type; it is empty
// for Raw arguments.
type Arg struct {
	Column string
	Value  any
}

// Compiled is the SQL tail for a SELECT.
type Compiled struct {
	// SQL is empty, a "WHERE ..." clause, or a Raw clause.
	SQL  string
	Args []Arg

	// Raw is set when SQL came from a Raw predicate. The caller must not
	// append its own ORDER BY, since the clause may already carry one.
	Raw bool
}

// Compile converts a predicate to a parameterized SQL tail. Column
// references are checked against columns; values are never interpolated.
func Compile(p Predicate, columns []string) (Compiled, error) {
	if p == nil {
		return Compiled{}, nil
	}

	if raw, ok := asRaw(p); ok {
		args := make([]Arg, len(raw.Args))
		for i, v := range raw.Args {
			args[i] = Arg{Value: v}
		}
		return Compiled{SQL: strings.TrimSpace(raw.Clause), Args: args, Raw: true}, nil
	}

	c := &compiler{columns: make(map[string]bool, len(columns))}
	for _, col := range columns {
		c.columns[col] = true
	}
	sql, err := c.predicate(p)
	if err != nil {
		return Compiled{}, err
	}
	return Compiled{SQL: "WHERE " + sql, Args: c.args}, nil
}

func asRaw(p Predicate) (Raw, bool) {
	switch r := p.(type) {
	case Raw:
		return r, true
	case *Raw:
		return *r, true
	}
	return Raw{}, false
}

type compiler struct {
	columns map[string]bool
	args    []Arg
}

func (c *compiler) predicate(p Predicate) (string, error) {
	switch pred := p.(type) {
	case Equals:
		return c.compare(pred.Column, "=", pred.Value)
	case *Equals:
		return c.compare(pred.Column, "=", pred.Value)
	case Compare:
		return c.compareOp(pred)
	case *Compare:
		return c.compareOp(*pred)
	case IsNull:
		return c.isNull(pred.Column)
	case *IsNull:
		return c.isNull(pred.Column)
	case And:
		return c.and(pred)
	case *And:
		return c.and(*pred)
	case Raw, *Raw:
		return "", fmt.Errorf("%w: raw clause cannot be nested", ErrInvalidFilter)
	case nil:
		return "", fmt.Errorf("%w: nil predicate inside And", ErrInvalidFilter)
	default:
		return "", fmt.Errorf("%w: unsupported predicate %T", ErrInvalidFilter, p)
	}
}

func (c *compiler) column(name string) (string, error) {
	if !c.columns[name] {
		return "", fmt.Errorf("%w %q", ErrUnknownColumn, name)
	}
	return record.QuoteIdent(name), nil
}

func (c *compiler) compareOp(cmp Compare) (string, error) {
	if !cmp.Op.valid() {
		return "", fmt.Errorf("%w: operator %q", ErrInvalidFilter, cmp.Op)
	}
	return c.compare(cmp.Column, string(cmp.Op), cmp.Value)
}

func (c *compiler) compare(column, op string, value any) (string, error) {
	col, err := c.column(column)
	if err != nil {
		return "", err
	}
	if value == nil {
		return "", fmt.Errorf("%w: nil value for %s (use IsNull)", ErrInvalidFilter, column)
	}
	c.args = append(c.args, Arg{Column: column, Value: value})
	return fmt.Sprintf("%s %s ?", col, op), nil
}

func (c *compiler) isNull(column string) (string, error) {
	col, err := c.column(column)
	if err != nil {
		return "", err
	}
	return col + " IS NULL", nil
}

func (c *compiler) and(and And) (string, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil
	}
	parts := make([]string, 0, len(and.Predicates))
	for _, p := range and.Predicates {
		sql, err := c.predicate(p)
		if err != nil {
			return "", err
		}
		parts = append(parts, sql)
	}
	return strings.Join(parts, " AND "), nil
}
