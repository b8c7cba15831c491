// Package validation checks models against their validate struct tags
// before they reach a repository.
//
// Rejected fields are named by column (expense_date, not ExpenseDate) so
// messages line up with what the store and the CLI show:
//
//	if err := validation.Validate(expense); err != nil {
//		// err is ValidationErrors{{Field: "amount", Message: "must be greater than 0"}}
//	}
package validation
