package bookkeeper

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/bookkeeper/internal/models"
	"github.com/roach88/bookkeeper/internal/validation"
)

// CategoryNode is a category with its sub-categories.
type CategoryNode struct {
	Category models.Category `json:"category"`
	Children []*CategoryNode `json:"children,omitempty"`
}

// AddCategory stores a new category under a capitalized name. A non-nil
// parent must name an existing category.
func (s *Service) AddCategory(ctx context.Context, name string, parent *int64) (models.Category, error) {
	c := models.Category{Name: Capitalize(name), Parent: parent}
	if err := validation.Validate(c); err != nil {
		return c, fmt.Errorf("add category: %w", err)
	}
	if err := s.checkParent(ctx, parent); err != nil {
		return c, fmt.Errorf("add category: %w", err)
	}
	if _, err := s.repos.Categories.Add(ctx, &c); err != nil {
		return c, err
	}
	s.logger.Info("category added", "pk", c.PK, "name", c.Name)
	return c, nil
}

// RenameCategory replaces the name and parent of category pk. An empty
// name keeps the current one; parent is always replaced, so nil detaches
// the category.
func (s *Service) RenameCategory(ctx context.Context, pk int64, name string, parent *int64) (models.Category, error) {
	cur, err := s.category(ctx, pk)
	if err != nil {
		return models.Category{}, fmt.Errorf("rename category: %w", err)
	}
	if strings.TrimSpace(name) == "" {
		name = cur.Name
	}
	c := models.Category{Name: Capitalize(name), Parent: parent, PK: pk}
	if err := validation.Validate(c); err != nil {
		return c, fmt.Errorf("rename category: %w", err)
	}
	if parent != nil && *parent == pk {
		return c, fmt.Errorf("rename category %d: %w", pk, ErrCategoryCycle)
	}
	if err := s.checkParent(ctx, parent); err != nil {
		return c, fmt.Errorf("rename category: %w", err)
	}
	if err := s.repos.Categories.Update(ctx, &c); err != nil {
		return c, err
	}
	s.logger.Info("category renamed", "pk", pk, "from", cur.Name, "to", c.Name)
	return c, nil
}

// DeleteCategory removes category pk. Expenses keep their category name.
func (s *Service) DeleteCategory(ctx context.Context, pk int64) error {
	if err := s.repos.Categories.Delete(ctx, pk); err != nil {
		return err
	}
	s.logger.Info("category deleted", "pk", pk)
	return nil
}

// Categories returns every category in insertion order.
func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	return s.repos.Categories.GetAll(ctx, nil)
}

// CategoryNames returns the category names in insertion order.
func (s *Service) CategoryNames(ctx context.Context) ([]string, error) {
	cats, err := s.Categories(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.Name
	}
	return names, nil
}

// CategoryTree arranges the categories by parent. Categories whose parent
// no longer exists are returned as roots.
func (s *Service) CategoryTree(ctx context.Context) ([]*CategoryNode, error) {
	cats, err := s.Categories(ctx)
	if err != nil {
		return nil, err
	}
	return buildTree(cats), nil
}

func buildTree(cats []models.Category) []*CategoryNode {
	parents := make(map[int64]*int64, len(cats))
	nodes := make(map[int64]*CategoryNode, len(cats))
	for _, c := range cats {
		parents[c.PK] = c.Parent
		nodes[c.PK] = &CategoryNode{Category: c}
	}

	var roots []*CategoryNode
	for _, c := range cats {
		node := nodes[c.PK]
		if c.Parent != nil && !inCycle(parents, c.PK) {
			if parent, ok := nodes[*c.Parent]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}

// inCycle reports whether following parents from pk leads back to pk.
func inCycle(parents map[int64]*int64, pk int64) bool {
	seen := map[int64]bool{pk: true}
	for p := parents[pk]; p != nil; p = parents[*p] {
		if seen[*p] {
			return *p == pk
		}
		seen[*p] = true
	}
	return false
}

func (s *Service) category(ctx context.Context, pk int64) (*models.Category, error) {
	c, err := s.repos.Categories.Get(ctx, pk)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("category %d: %w", pk, ErrNotFound)
	}
	return c, nil
}

func (s *Service) checkParent(ctx context.Context, parent *int64) error {
	if parent == nil {
		return nil
	}
	if _, err := s.category(ctx, *parent); err != nil {
		return fmt.Errorf("parent: %w", err)
	}
	return nil
}
