package models

import (
	"time"

	"github.com/roach88/bookkeeper/internal/record"
)

// Budget periods.
const (
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

// Periods lists the valid Budget.Duration values, shortest first.
var Periods = []string{PeriodDay, PeriodWeek, PeriodMonth}

// Category is an expense category. Parent, when set, is the key of another
// category.
type Category struct {
	Name   string `validate:"required,notblank,max=64"`
	Parent *int64 `validate:"omitnil,gt=0"`
	PK     int64
}

// Expense is one spending entry. Category holds the category name.
type Expense struct {
	Amount      float64   `validate:"gt=0"`
	Category    string    `validate:"required,notblank"`
	ExpenseDate time.Time `validate:"required"`
	Comment     string    `validate:"max=256"`
	PK          int64
}

// Budget caps spending over one period. Amount is what has been spent so
// far; Limits is the cap.
type Budget struct {
	Amount         float64   `validate:"gte=0"`
	Limits         float64   `validate:"gt=0"`
	Duration       string    `validate:"oneof=day week month"`
	StartDate      time.Time `validate:"required"`
	ExpirationDate time.Time `validate:"required,gtfield=StartDate"`
	PK             int64
}

// Remaining returns how much of the limit is left, negative when overspent.
func (b Budget) Remaining() float64 { return b.Limits - b.Amount }

// Exceeded reports whether spending has gone past the limit.
func (b Budget) Exceeded() bool { return b.Amount > b.Limits }

// ActiveAt reports whether at falls in (StartDate, ExpirationDate].
func (b Budget) ActiveAt(at time.Time) bool {
	return b.StartDate.Before(at) && !b.ExpirationDate.Before(at)
}

// Column names used by typed filters.
var (
	ColumnCategoryName   = mustColumn[Category]("Name")
	ColumnExpenseDate    = mustColumn[Expense]("ExpenseDate")
	ColumnExpenseCat     = mustColumn[Expense]("Category")
	ColumnBudgetDuration = mustColumn[Budget]("Duration")
	ColumnBudgetStart    = mustColumn[Budget]("StartDate")
	ColumnBudgetExpiry   = mustColumn[Budget]("ExpirationDate")
)

func mustColumn[T any](field string) string {
	d, err := record.Describe[T]()
	if err != nil {
		panic(err)
	}
	for _, f := range d.Fields {
		if f.Name == field {
			return f.Column
		}
	}
	panic("models: no column for field " + field)
}
