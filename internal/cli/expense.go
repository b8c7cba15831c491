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

// ExpenseView is the output shape of an expense.
type ExpenseView struct {
	PK       int64     `json:"pk"`
	Amount   float64   `json:"amount"`
	Category string    `json:"category"`
	Date     time.Time `json:"date"`
	Comment  string    `json:"comment,omitempty"`
}

// ExpenseList is the payload of expense list.
type ExpenseList struct {
	Expenses []ExpenseView `json:"expenses"`
	Total    float64       `json:"total"`
}

// AddedExpense is the payload of expense add.
type AddedExpense struct {
	Expense ExpenseView  `json:"expense"`
	Budgets []BudgetView `json:"budgets"`
}

func expenseView(e models.Expense) ExpenseView {
	return ExpenseView{
		PK:       e.PK,
		Amount:   e.Amount,
		Category: e.Category,
		Date:     e.ExpenseDate,
		Comment:  e.Comment,
	}
}

// NewExpenseCommand creates the expense command group.
func NewExpenseCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expense",
		Short: "Record and review expenses",
	}

	cmd.AddCommand(newExpenseAddCommand(rootOpts))
	cmd.AddCommand(newExpenseListCommand(rootOpts))
	cmd.AddCommand(newExpenseEditCommand(rootOpts))
	cmd.AddCommand(newExpenseDeleteCommand(rootOpts))

	return cmd
}

func newExpenseAddCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		date     string
		comment  string
		noBudget bool
	)

	cmd := &cobra.Command{
		Use:   "add <amount> <category>",
		Short: "Record an expense",
		Long: `Record an expense and add its amount to every budget whose period
contains the expense date.

Examples:
  bookkeeper expense add 12.50 food
  bookkeeper expense add 900 rent --date 2024-03-01 --comment march
  bookkeeper expense add 3 coffee --no-budget`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			var at time.Time
			if date != "" {
				if at, err = parseDate(date); err != nil {
					return rootOpts.fail(cmd, err)
				}
			}

			s, err := rootOpts.open(cmd)
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			e, err := s.svc.AddExpense(cmd.Context(), amount, at, args[1], comment)
			if err != nil {
				return rootOpts.fail(cmd, err)
			}

			var budgets []models.Budget
			if !noBudget {
				if budgets, err = s.svc.ApplyExpense(cmd.Context(), e.Amount, e.ExpenseDate); err != nil {
					return rootOpts.fail(cmd, err)
				}
			}

			out := AddedExpense{Expense: expenseView(e), Budgets: budgetViews(budgets)}
			return rootOpts.formatter(cmd).Render(out, func(w io.Writer) error {
				fmt.Fprintf(w, "Added expense %d: %s %s on %s\n", e.PK, formatAmount(e.Amount), e.Category, formatDate(e.ExpenseDate))
				for _, b := range budgets {
					if b.Exceeded() {
						fmt.Fprintf(w, "Budget %d (%s) exceeded: %s of %s\n", b.PK, b.Duration, formatAmount(b.Amount), formatAmount(b.Limits))
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "expense date (default now)")
	cmd.Flags().StringVar(&comment, "comment", "", "free-form comment")
	cmd.Flags().BoolVar(&noBudget, "no-budget", false, "do not add the amount to active budgets")

	return cmd
}

func newExpenseListCommand(rootOpts *RootOptions) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses",
		Long: `List expenses in the order they were recorded.

With --from or --to only expenses dated after --from and up to and
including --to are listed. --to defaults to now.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.open(cmd)
			if err != nil {
				return rootOpts.fail(cmd, err)
			}

			var expenses []models.Expense
			if from == "" && to == "" {
				expenses, err = s.svc.Expenses(cmd.Context())
			} else {
				var lo, hi time.Time
				if from != "" {
					if lo, err = parseDate(from); err != nil {
						return rootOpts.fail(cmd, err)
					}
				}
				hi = rootOpts.Clock.Now()
				if to != "" {
					if hi, err = parseDate(to); err != nil {
						return rootOpts.fail(cmd, err)
					}
				}
				expenses, err = s.svc.ExpensesBetween(cmd.Context(), lo, hi)
			}
			if err != nil {
				return rootOpts.fail(cmd, err)
			}

			out := ExpenseList{Expenses: make([]ExpenseView, len(expenses)), Total: bookkeeper.Total(expenses)}
			rows := make([][]string, len(expenses))
			for i, e := range expenses {
				out.Expenses[i] = expenseView(e)
				rows[i] = []string{strconv.FormatInt(e.PK, 10), formatDate(e.ExpenseDate), formatAmount(e.Amount), e.Category, e.Comment}
			}

			f := rootOpts.formatter(cmd)
			return f.Render(out, func(w io.Writer) error {
				if err := f.Table([]string{"PK", "DATE", "AMOUNT", "CATEGORY", "COMMENT"}, rows); err != nil {
					return err
				}
				_, err := fmt.Fprintf(w, "Total: %s\n", formatAmount(out.Total))
				return err
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "list expenses dated after this date")
	cmd.Flags().StringVar(&to, "to", "", "list expenses dated up to this date")

	return cmd
}

func newExpenseEditCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		amount   float64
		category string
		date     string
		comment  string
	)

	cmd := &cobra.Command{
		Use:   "edit <pk>",
		Short: "Change an expense",
		Long: `Change the given fields of an expense. A category that does not exist
yet is created. Budgets are not adjusted.

Example:
  bookkeeper expense edit 3 --amount 14 --category snacks`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			pk, err := parseKey(args[0])
			if err != nil {
				return rootOpts.fail(cmd, err)
			}

			s, err := rootOpts.open(cmd)
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			e, err := s.svc.Expense(cmd.Context(), pk)
			if err != nil {
				return rootOpts.fail(cmd, err)
			}

			flags := cmd.Flags()
			if flags.Changed("amount") {
				e.Amount = amount
			}
			if flags.Changed("category") {
				e.Category = category
			}
			if flags.Changed("comment") {
				e.Comment = comment
			}
			if flags.Changed("date") {
				if e.ExpenseDate, err = parseDate(date); err != nil {
					return rootOpts.fail(cmd, err)
				}
			}

			e, err = s.svc.EditExpense(cmd.Context(), e)
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			return rootOpts.formatter(cmd).Render(expenseView(e), func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Updated expense %d: %s %s on %s\n", e.PK, formatAmount(e.Amount), e.Category, formatDate(e.ExpenseDate))
				return err
			})
		},
	}

	cmd.Flags().Float64Var(&amount, "amount", 0, "new amount")
	cmd.Flags().StringVar(&category, "category", "", "new category")
	cmd.Flags().StringVar(&date, "date", "", "new date")
	cmd.Flags().StringVar(&comment, "comment", "", "new comment")

	return cmd
}

func newExpenseDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <pk>",
		Short:         "Delete an expense",
		Long:          "Delete an expense. Budgets keep the amount; deleting a missing key is not an error.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			pk, err := parseKey(args[0])
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			s, err := rootOpts.open(cmd)
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			if err := s.svc.DeleteExpense(cmd.Context(), pk); err != nil {
				return rootOpts.fail(cmd, err)
			}
			return rootOpts.formatter(cmd).Render(map[string]int64{"deleted": pk}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Deleted expense %d\n", pk)
				return err
			})
		},
	}
}
