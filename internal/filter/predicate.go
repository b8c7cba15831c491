package filter

// Predicate narrows GetAll results.
//
// This is a sealed interface - only types in this package implement it,
// so Compile can switch over every case.
//
// Predicate types:
//   - Equals: column = value
//   - Compare: column <op> value
//   - IsNull: column IS NULL
//   - And: all predicates must hold
//   - Raw: trusted, backend-specific clause appended verbatim
type Predicate interface {
	predicateNode()
}

// Op is a comparison operator.
type Op string

const (
	OpLess      Op = "<"
	OpLessEq    Op = "<="
	OpGreater   Op = ">"
	OpGreaterEq Op = ">="
	OpNotEq     Op = "!="
)

func (o Op) valid() bool {
	switch o {
	case OpLess, OpLessEq, OpGreater, OpGreaterEq, OpNotEq:
		return true
	}
	return false
}

// Equals matches rows whose column equals Value. Value must not be nil;
// use IsNull for NULL checks.
type Equals struct {
	Column string
	Value  any
}

func (Equals) predicateNode() {}

// Compare matches rows where "Column Op Value" holds.
type Compare struct {
	Column string
	Op     Op
	Value  any
}

func (Compare) predicateNode() {}

// IsNull matches rows whose column is NULL.
type IsNull struct {
	Column string
}

func (IsNull) predicateNode() {}

// And matches rows satisfying every predicate. An empty And matches all rows.
// Raw predicates cannot be nested inside And.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Raw is appended verbatim after "SELECT ... FROM <table>", so it usually
// starts with WHERE. It exists for ad-hoc queries built by trusted code
// (sub-selects, aggregates) and must never carry end-user text: put values
// in Args, bound to ? placeholders in Clause.
type Raw struct {
	Clause string
	Args   []any
}

func (Raw) predicateNode() {}

// Eq is shorthand for Equals{column, value}.
func Eq(column string, value any) Equals { return Equals{Column: column, Value: value} }

// Cmp is shorthand for Compare{column, op, value}.
func Cmp(column string, op Op, value any) Compare {
	return Compare{Column: column, Op: op, Value: value}
}

// Null is shorthand for IsNull{column}.
func Null(column string) IsNull { return IsNull{Column: column} }

// All is shorthand for And{preds}.
func All(preds ...Predicate) And { return And{Predicates: preds} }

// Clause is shorthand for Raw{clause, args}.
func Clause(clause string, args ...any) Raw { return Raw{Clause: clause, Args: args} }
