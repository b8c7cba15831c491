// Package bookkeeper implements personal bookkeeping over three
// repositories: categories, expenses and budgets.
//
// The Service validates input, normalizes names and composes repository
// calls. Nothing here is transactional: ApplyExpense updates each active
// budget with its own call, and a failure part way leaves the earlier
// updates in place.
//
// Budget periods are half-open on the left. A budget is active at t when
// StartDate < t <= ExpirationDate, and ExpensesBetween(from, to) returns
// expenses dated in (from, to].
package bookkeeper
