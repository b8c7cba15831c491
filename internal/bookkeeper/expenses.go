package bookkeeper

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/roach88/bookkeeper/internal/filter"
	"github.com/roach88/bookkeeper/internal/models"
	"github.com/roach88/bookkeeper/internal/validation"
)

// AddExpense records an expense. A zero date means now; the category name
// is capitalized like category names are.
func (s *Service) AddExpense(ctx context.Context, amount float64, date time.Time, category, comment string) (models.Expense, error) {
	if date.IsZero() {
		date = s.clock.Now()
	}
	e := models.Expense{
		Amount:      amount,
		Category:    Capitalize(category),
		ExpenseDate: date.UTC(),
		Comment:     comment,
	}
	if err := validation.Validate(e); err != nil {
		return e, fmt.Errorf("add expense: %w", err)
	}
	if _, err := s.repos.Expenses.Add(ctx, &e); err != nil {
		return e, err
	}
	s.logger.Info("expense added", "pk", e.PK, "amount", e.Amount, "category", e.Category)
	return e, nil
}

// EditExpense overwrites a stored expense. If its category does not exist
// yet, the category is created first.
func (s *Service) EditExpense(ctx context.Context, e models.Expense) (models.Expense, error) {
	e.Category = Capitalize(e.Category)
	e.ExpenseDate = e.ExpenseDate.UTC()
	if err := validation.Validate(e); err != nil {
		return e, fmt.Errorf("edit expense: %w", err)
	}

	names, err := s.CategoryNames(ctx)
	if err != nil {
		return e, err
	}
	if !slices.Contains(names, e.Category) {
		if _, err := s.AddCategory(ctx, e.Category, nil); err != nil {
			return e, err
		}
	}

	if err := s.repos.Expenses.Update(ctx, &e); err != nil {
		return e, err
	}
	s.logger.Info("expense edited", "pk", e.PK, "amount", e.Amount, "category", e.Category)
	return e, nil
}

// Expense returns expense pk, or ErrNotFound.
func (s *Service) Expense(ctx context.Context, pk int64) (models.Expense, error) {
	e, err := s.repos.Expenses.Get(ctx, pk)
	if err != nil {
		return models.Expense{}, err
	}
	if e == nil {
		return models.Expense{}, fmt.Errorf("expense %d: %w", pk, ErrNotFound)
	}
	return *e, nil
}

// Expenses returns every expense in insertion order.
func (s *Service) Expenses(ctx context.Context) ([]models.Expense, error) {
	return s.repos.Expenses.GetAll(ctx, nil)
}

// ExpensesBetween returns the expenses dated in (from, to].
func (s *Service) ExpensesBetween(ctx context.Context, from, to time.Time) ([]models.Expense, error) {
	return s.repos.Expenses.GetAll(ctx, filter.All(
		filter.Cmp(models.ColumnExpenseDate, filter.OpGreater, from),
		filter.Cmp(models.ColumnExpenseDate, filter.OpLessEq, to),
	))
}

// DeleteExpense removes expense pk. Budgets it was applied to keep the
// amount.
func (s *Service) DeleteExpense(ctx context.Context, pk int64) error {
	if err := s.repos.Expenses.Delete(ctx, pk); err != nil {
		return err
	}
	s.logger.Info("expense deleted", "pk", pk)
	return nil
}

// Total sums the amounts of expenses.
func Total(expenses []models.Expense) float64 {
	var sum float64
	for _, e := range expenses {
		sum += e.Amount
	}
	return sum
}
