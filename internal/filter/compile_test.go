package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var expenseColumns = []string{"pk", "amount", "category", "expense_date", "comment"}

func TestCompile_Nil(t *testing.T) {
	c, err := Compile(nil, expenseColumns)
	require.NoError(t, err)
	assert.Equal(t, Compiled{}, c)
}

func TestCompile_Equals(t *testing.T) {
	c, err := Compile(Eq("category", "Food"), expenseColumns)
	require.NoError(t, err)

	assert.Equal(t, `WHERE "category" = ?`, c.SQL)
	assert.Equal(t, []Arg{{Column: "category", Value: "Food"}}, c.Args)
	assert.False(t, c.Raw)
}

func TestCompile_AndRange(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	c, err := Compile(All(
		Cmp("expense_date", OpGreater, from),
		&Compare{Column: "expense_date", Op: OpLessEq, Value: to},
		Null("comment"),
	), expenseColumns)
	require.NoError(t, err)

	assert.Equal(t, `WHERE "expense_date" > ? AND "expense_date" <= ? AND "comment" IS NULL`, c.SQL)
	require.Len(t, c.Args, 2)
	assert.Equal(t, from, c.Args[0].Value)
	assert.Equal(t, to, c.Args[1].Value)
}

func TestCompile_EmptyAnd(t *testing.T) {
	c, err := Compile(And{}, expenseColumns)
	require.NoError(t, err)
	assert.Equal(t, "WHERE 1 = 1", c.SQL)
	assert.Empty(t, c.Args)
}

func TestCompile_ValuesNeverInterpolated(t *testing.T) {
	payload := "x'; DROP TABLE expense; --"
	c, err := Compile(Eq("comment", payload), expenseColumns)
	require.NoError(t, err)

	assert.NotContains(t, c.SQL, "DROP")
	assert.Equal(t, payload, c.Args[0].Value)
}

func TestCompile_Raw(t *testing.T) {
	c, err := Compile(Clause("  WHERE amount > ? ORDER BY amount DESC ", 10.0), expenseColumns)
	require.NoError(t, err)

	assert.True(t, c.Raw)
	assert.Equal(t, "WHERE amount > ? ORDER BY amount DESC", c.SQL)
	assert.Equal(t, []Arg{{Value: 10.0}}, c.Args)
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		pred Predicate
		want error
	}{
		{"unknown column", Eq("nope", 1), ErrUnknownColumn},
		{"unknown column in null", Null("nope"), ErrUnknownColumn},
		{"bad operator", Cmp("amount", Op("LIKE"), "x"), ErrInvalidFilter},
		{"nil value", Eq("amount", nil), ErrInvalidFilter},
		{"nested raw", All(Clause("WHERE 1")), ErrInvalidFilter},
		{"nil inside and", All(nil), ErrInvalidFilter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.pred, expenseColumns)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
