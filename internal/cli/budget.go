package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/bookkeeper/internal/bookkeeper"
	"github.com/roach88/bookkeeper/internal/models"
)

// BudgetView is the output shape of a budget.
type BudgetView struct {
	PK             int64     `json:"pk"`
	Duration       string    `json:"duration"`
	Amount         float64   `json:"amount"`
	Limits         float64   `json:"limits"`
	Remaining      float64   `json:"remaining"`
	Exceeded       bool      `json:"exceeded"`
	StartDate      time.Time `json:"start_date"`
	ExpirationDate time.Time `json:"expiration_date"`
}

func budgetViews(budgets []models.Budget) []BudgetView {
	out := make([]BudgetView, len(budgets))
	for i, b := range budgets {
		out[i] = BudgetView{
			PK:             b.PK,
			Duration:       b.Duration,
			Amount:         b.Amount,
			Limits:         b.Limits,
			Remaining:      b.Remaining(),
			Exceeded:       b.Exceeded(),
			StartDate:      b.StartDate,
			ExpirationDate: b.ExpirationDate,
		}
	}
	return out
}

// NewBudgetCommand creates the budget command group.
func NewBudgetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Set and track spending budgets",
	}

	cmd.AddCommand(newBudgetSetCommand(rootOpts))
	cmd.AddCommand(newBudgetListCommand(rootOpts))
	cmd.AddCommand(newBudgetActiveCommand(rootOpts))

	return cmd
}

func newBudgetSetCommand(rootOpts *RootOptions) *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:   "set <limit> <day|week|month>",
		Short: "Start a budget",
		Long: `Start a budget for one period. Without --start the period begins now.
--end defaults to one period after the start. Expenses already recorded
inside the period count towards the new budget.

Examples:
  bookkeeper budget set 50 day
  bookkeeper budget set 1200 month --start 2024-03-01`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			limits, err := parseAmount(args[0])
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			period := args[1]
			if start == "" && end != "" {
				return rootOpts.fail(cmd, NewExitError(ExitCommandError, "--end requires --start"))
			}

			s, err := rootOpts.open(cmd)
			if err != nil {
				return rootOpts.fail(cmd, err)
			}

			var b models.Budget
			if start == "" {
				b, err = s.svc.OpenBudget(cmd.Context(), limits, period)
			} else {
				b, err = setBudgetBetween(cmd, s, limits, period, start, end)
			}
			if err != nil {
				return rootOpts.fail(cmd, err)
			}

			view := budgetViews([]models.Budget{b})[0]
			return rootOpts.formatter(cmd).Render(view, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Budget %d (%s): %s of %s spent, %s to %s\n",
					b.PK, b.Duration, formatAmount(b.Amount), formatAmount(b.Limits),
					formatDate(b.StartDate), formatDate(b.ExpirationDate))
				return err
			})
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "period start (default now)")
	cmd.Flags().StringVar(&end, "end", "", "period end (default one period after start)")

	return cmd
}

// setBudgetBetween stores a budget with explicit bounds, counting the
// expenses already inside them.
func setBudgetBetween(cmd *cobra.Command, s *session, limits float64, period, start, end string) (models.Budget, error) {
	from, err := parseDate(start)
	if err != nil {
		return models.Budget{}, err
	}
	to, err := bookkeeper.PeriodEnd(from, period)
	if err != nil {
		return models.Budget{}, err
	}
	if end != "" {
		if to, err = parseDate(end); err != nil {
			return models.Budget{}, err
		}
	}

	spent, err := s.svc.ExpensesBetween(cmd.Context(), from, to)
	if err != nil {
		return models.Budget{}, err
	}
	return s.svc.SetBudget(cmd.Context(), models.Budget{
		Amount:         bookkeeper.Total(spent),
		Limits:         limits,
		Duration:       period,
		StartDate:      from,
		ExpirationDate: to,
	})
}

func newBudgetListCommand(rootOpts *RootOptions) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List budgets",
		Long: `List the latest budget of each period (day, week, month). With --all,
list every budget ever set.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.open(cmd)
			if err != nil {
				return rootOpts.fail(cmd, err)
			}

			var budgets []models.Budget
			if all {
				budgets, err = s.svc.Budgets(cmd.Context())
			} else {
				budgets, err = s.svc.CurrentBudgets(cmd.Context())
			}
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			return renderBudgets(rootOpts.formatter(cmd), budgets)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "list every budget")

	return cmd
}

func newBudgetActiveCommand(rootOpts *RootOptions) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:           "active",
		Short:         "List budgets whose period contains a moment",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.open(cmd)
			if err != nil {
				return rootOpts.fail(cmd, err)
			}

			moment := rootOpts.Clock.Now()
			if at != "" {
				if moment, err = parseDate(at); err != nil {
					return rootOpts.fail(cmd, err)
				}
			}

			budgets, err := s.svc.ActiveBudgets(cmd.Context(), moment)
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			return renderBudgets(rootOpts.formatter(cmd), budgets)
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "moment to check (default now)")

	return cmd
}

func renderBudgets(f *OutputFormatter, budgets []models.Budget) error {
	views := budgetViews(budgets)
	rows := make([][]string, len(views))
	for i, b := range views {
		state := ""
		if b.Exceeded {
			state = "exceeded"
		}
		rows[i] = []string{
			strconv.FormatInt(b.PK, 10), b.Duration,
			formatAmount(b.Amount), formatAmount(b.Limits), formatAmount(b.Remaining),
			formatDate(b.StartDate), formatDate(b.ExpirationDate), state,
		}
	}
	return f.Render(views, func(io.Writer) error {
		return f.Table([]string{"PK", "PERIOD", "SPENT", "LIMIT", "REMAINING", "START", "END", ""}, rows)
	})
}
