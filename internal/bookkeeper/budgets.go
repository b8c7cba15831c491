package bookkeeper

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/roach88/bookkeeper/internal/filter"
	"github.com/roach88/bookkeeper/internal/models"
	"github.com/roach88/bookkeeper/internal/record"
	"github.com/roach88/bookkeeper/internal/validation"
)

// latestBudgetClause selects the budgets of one period that expire last.
var latestBudgetClause = func() string {
	d, err := record.Describe[models.Budget]()
	if err != nil {
		panic(err)
	}
	expiry := record.QuoteIdent(models.ColumnBudgetExpiry)
	return fmt.Sprintf("WHERE %s = (SELECT MAX(%s) FROM %s WHERE %s = ?) ORDER BY %s ASC",
		expiry, expiry, record.QuoteIdent(d.Table),
		record.QuoteIdent(models.ColumnBudgetDuration), record.QuoteIdent(d.Key.Column))
}()

// PeriodEnd returns when a budget of the given period starting at start
// expires.
func PeriodEnd(start time.Time, period string) (time.Time, error) {
	switch period {
	case models.PeriodDay:
		return start.AddDate(0, 0, 1), nil
	case models.PeriodWeek:
		return start.AddDate(0, 0, 7), nil
	case models.PeriodMonth:
		return start.AddDate(0, 1, 0), nil
	}
	return time.Time{}, fmt.Errorf("%w %q (want one of %v)", ErrUnknownPeriod, period, models.Periods)
}

// SetBudget stores b as given. The caller chooses its period bounds and
// starting amount.
func (s *Service) SetBudget(ctx context.Context, b models.Budget) (models.Budget, error) {
	b.StartDate = b.StartDate.UTC()
	b.ExpirationDate = b.ExpirationDate.UTC()
	if err := validation.Validate(b); err != nil {
		return b, fmt.Errorf("set budget: %w", err)
	}
	if _, err := s.repos.Budgets.Add(ctx, &b); err != nil {
		return b, err
	}
	s.logger.Info("budget set", "pk", b.PK, "duration", b.Duration, "limits", b.Limits,
		"start", b.StartDate, "expiration", b.ExpirationDate)
	return b, nil
}

// OpenBudget starts a budget of limits for one period from now. Expenses
// already recorded inside the new period count towards it.
func (s *Service) OpenBudget(ctx context.Context, limits float64, period string) (models.Budget, error) {
	start := s.clock.Now().UTC()
	end, err := PeriodEnd(start, period)
	if err != nil {
		return models.Budget{}, fmt.Errorf("open budget: %w", err)
	}
	spent, err := s.ExpensesBetween(ctx, start, end)
	if err != nil {
		return models.Budget{}, err
	}
	return s.SetBudget(ctx, models.Budget{
		Amount:         Total(spent),
		Limits:         limits,
		Duration:       period,
		StartDate:      start,
		ExpirationDate: end,
	})
}

// Budgets returns every budget in insertion order.
func (s *Service) Budgets(ctx context.Context) ([]models.Budget, error) {
	return s.repos.Budgets.GetAll(ctx, nil)
}

// ActiveBudgets returns the budgets whose period contains at: started
// strictly before at and expiring at or after it.
func (s *Service) ActiveBudgets(ctx context.Context, at time.Time) ([]models.Budget, error) {
	return s.repos.Budgets.GetAll(ctx, filter.All(
		filter.Cmp(models.ColumnBudgetStart, filter.OpLess, at),
		filter.Cmp(models.ColumnBudgetExpiry, filter.OpGreaterEq, at),
	))
}

// ApplyExpense adds amount to every budget active at at and returns the
// updated budgets. Each budget is updated by its own call.
func (s *Service) ApplyExpense(ctx context.Context, amount float64, at time.Time) ([]models.Budget, error) {
	budgets, err := s.ActiveBudgets(ctx, at)
	if err != nil {
		return nil, err
	}
	for i := range budgets {
		b := &budgets[i]
		b.Amount += amount
		if err := s.repos.Budgets.Update(ctx, b); err != nil {
			return budgets[:i], err
		}
		if b.Exceeded() {
			s.logger.Warn("budget exceeded", "pk", b.PK, "duration", b.Duration,
				"amount", b.Amount, "limits", b.Limits)
		}
	}
	s.logger.Debug("expense applied to budgets", "amount", amount, "at", at, "budgets", len(budgets))
	return budgets, nil
}

// LatestBudget returns the budgets of period with the latest expiration
// date; several when they share it, none when the period has no budget.
func (s *Service) LatestBudget(ctx context.Context, period string) ([]models.Budget, error) {
	if !slices.Contains(models.Periods, period) {
		return nil, fmt.Errorf("latest budget: %w %q (want one of %v)", ErrUnknownPeriod, period, models.Periods)
	}
	return s.repos.Budgets.GetAll(ctx, filter.Clause(latestBudgetClause, period))
}

// CurrentBudgets returns the latest budget of every period, day first.
func (s *Service) CurrentBudgets(ctx context.Context) ([]models.Budget, error) {
	var out []models.Budget
	for _, period := range models.Periods {
		budgets, err := s.LatestBudget(ctx, period)
		if err != nil {
			return nil, err
		}
		out = append(out, budgets...)
	}
	return out, nil
}
