package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bookkeeper/internal/record"
	"github.com/roach88/bookkeeper/internal/validation"
)

var jan1 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestDescriptors(t *testing.T) {
	tests := []struct {
		describe func() (*record.Descriptor, error)
		table    string
		columns  []string
	}{
		{record.Describe[Category], "category", []string{"name", "parent"}},
		{record.Describe[Expense], "expense", []string{"amount", "category", "expense_date", "comment"}},
		{record.Describe[Budget], "budget", []string{"amount", "limits", "duration", "start_date", "expiration_date"}},
	}

	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			d, err := tt.describe()
			require.NoError(t, err)
			assert.Equal(t, tt.table, d.Table)
			assert.Equal(t, "pk", d.Key.Column)
			assert.Equal(t, tt.columns, d.Columns())
		})
	}
}

func TestColumnNames(t *testing.T) {
	assert.Equal(t, "name", ColumnCategoryName)
	assert.Equal(t, "expense_date", ColumnExpenseDate)
	assert.Equal(t, "category", ColumnExpenseCat)
	assert.Equal(t, "duration", ColumnBudgetDuration)
	assert.Equal(t, "start_date", ColumnBudgetStart)
	assert.Equal(t, "expiration_date", ColumnBudgetExpiry)
}

func TestCategory_Validation(t *testing.T) {
	zero := int64(0)
	parent := int64(3)

	tests := []struct {
		name   string
		cat    Category
		fields []string
	}{
		{"valid", Category{Name: "Food"}, nil},
		{"valid with parent", Category{Name: "Food", Parent: &parent}, nil},
		{"empty name", Category{}, []string{"name"}},
		{"blank name", Category{Name: "   "}, []string{"name"}},
		{"zero parent", Category{Name: "Food", Parent: &zero}, []string{"parent"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertFields(t, validation.Validate(tt.cat), tt.fields)
		})
	}
}

func TestExpense_Validation(t *testing.T) {
	valid := Expense{Amount: 9.5, Category: "Food", ExpenseDate: jan1}

	tests := []struct {
		name   string
		mutate func(e *Expense)
		fields []string
	}{
		{"valid", func(*Expense) {}, nil},
		{"zero amount", func(e *Expense) { e.Amount = 0 }, []string{"amount"}},
		{"negative amount", func(e *Expense) { e.Amount = -1 }, []string{"amount"}},
		{"no category", func(e *Expense) { e.Category = "" }, []string{"category"}},
		{"no date", func(e *Expense) { e.ExpenseDate = time.Time{} }, []string{"expense_date"}},
		{"several", func(e *Expense) { *e = Expense{} }, []string{"amount", "category", "expense_date"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			assertFields(t, validation.Validate(e), tt.fields)
		})
	}
}

func TestBudget_Validation(t *testing.T) {
	valid := Budget{Limits: 100, Duration: PeriodWeek, StartDate: jan1, ExpirationDate: jan1.AddDate(0, 0, 7)}

	tests := []struct {
		name   string
		mutate func(b *Budget)
		fields []string
	}{
		{"valid", func(*Budget) {}, nil},
		{"spent", func(b *Budget) { b.Amount = 150 }, nil},
		{"negative spent", func(b *Budget) { b.Amount = -1 }, []string{"amount"}},
		{"no limit", func(b *Budget) { b.Limits = 0 }, []string{"limits"}},
		{"bad period", func(b *Budget) { b.Duration = "year" }, []string{"duration"}},
		{"expires before start", func(b *Budget) { b.ExpirationDate = jan1.Add(-time.Hour) }, []string{"expiration_date"}},
		{"expires at start", func(b *Budget) { b.ExpirationDate = jan1 }, []string{"expiration_date"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := valid
			tt.mutate(&b)
			assertFields(t, validation.Validate(b), tt.fields)
		})
	}
}

func TestBudget_Spending(t *testing.T) {
	b := Budget{Amount: 40, Limits: 100}
	assert.Equal(t, 60.0, b.Remaining())
	assert.False(t, b.Exceeded())

	b.Amount = 100
	assert.False(t, b.Exceeded())

	b.Amount = 120
	assert.Equal(t, -20.0, b.Remaining())
	assert.True(t, b.Exceeded())
}

func TestBudget_ActiveAt(t *testing.T) {
	b := Budget{StartDate: jan1, ExpirationDate: jan1.AddDate(0, 0, 1)}

	assert.False(t, b.ActiveAt(jan1), "start is exclusive")
	assert.True(t, b.ActiveAt(jan1.Add(time.Second)))
	assert.True(t, b.ActiveAt(jan1.AddDate(0, 0, 1)), "expiration is inclusive")
	assert.False(t, b.ActiveAt(jan1.AddDate(0, 0, 1).Add(time.Nanosecond)))
}

func assertFields(t *testing.T, err error, fields []string) {
	t.Helper()
	if fields == nil {
		assert.NoError(t, err)
		return
	}
	var errs validation.ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, fields, errs.Fields())
}
