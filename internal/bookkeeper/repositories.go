package bookkeeper

import (
	"context"

	"github.com/roach88/bookkeeper/internal/models"
	"github.com/roach88/bookkeeper/internal/repository"
	"github.com/roach88/bookkeeper/internal/store"
)

// Repositories holds one repository per model.
type Repositories struct {
	Categories repository.Repository[models.Category]
	Expenses   repository.Repository[models.Expense]
	Budgets    repository.Repository[models.Budget]
}

// Models lists the record types the bookkeeper stores, in table creation
// order.
func Models() []store.Model {
	return []store.Model{
		store.Register[models.Category](),
		store.Register[models.Expense](),
		store.Register[models.Budget](),
	}
}

// NewRepositories fetches the model repositories from a registry opened
// with Models.
func NewRepositories(reg *store.Registry) (*Repositories, error) {
	categories, err := store.For[models.Category](reg)
	if err != nil {
		return nil, err
	}
	expenses, err := store.For[models.Expense](reg)
	if err != nil {
		return nil, err
	}
	budgets, err := store.For[models.Budget](reg)
	if err != nil {
		return nil, err
	}
	return &Repositories{
		Categories: categories,
		Expenses:   expenses,
		Budgets:    budgets,
	}, nil
}

// Open creates every bookkeeping table on the database at path and returns
// the registry together with its repositories.
func Open(ctx context.Context, path string, opts store.Options) (*store.Registry, *Repositories, error) {
	reg, err := store.Open(ctx, path, opts, Models()...)
	if err != nil {
		return nil, nil, err
	}
	repos, err := NewRepositories(reg)
	if err != nil {
		return nil, nil, err
	}
	return reg, repos, nil
}
