package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/bookkeeper/internal/bookkeeper"
	"github.com/roach88/bookkeeper/internal/models"
)

// CategoryView is the output shape of a category.
type CategoryView struct {
	PK     int64  `json:"pk"`
	Name   string `json:"name"`
	Parent *int64 `json:"parent"`
}

// CategoryNodeView is a category with its sub-categories.
type CategoryNodeView struct {
	CategoryView
	Children []CategoryNodeView `json:"children,omitempty"`
}

func categoryView(c models.Category) CategoryView {
	return CategoryView{PK: c.PK, Name: c.Name, Parent: c.Parent}
}

func categoryNodeViews(nodes []*bookkeeper.CategoryNode) []CategoryNodeView {
	out := make([]CategoryNodeView, len(nodes))
	for i, n := range nodes {
		out[i] = CategoryNodeView{
			CategoryView: categoryView(n.Category),
			Children:     categoryNodeViews(n.Children),
		}
	}
	return out
}

// NewCategoryCommand creates the category command group.
func NewCategoryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage expense categories",
	}

	cmd.AddCommand(newCategoryAddCommand(rootOpts))
	cmd.AddCommand(newCategoryListCommand(rootOpts))
	cmd.AddCommand(newCategoryRenameCommand(rootOpts))
	cmd.AddCommand(newCategoryDeleteCommand(rootOpts))

	return cmd
}

// parentFlag turns an optional --parent value into a key pointer.
func parentFlag(cmd *cobra.Command, value int64) *int64 {
	if !cmd.Flags().Changed("parent") {
		return nil
	}
	return &value
}

func newCategoryAddCommand(rootOpts *RootOptions) *cobra.Command {
	var parent int64

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Long: `Add a category. The name is stored capitalized: "food" becomes "Food".

Examples:
  bookkeeper category add food
  bookkeeper category add snacks --parent 1`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.open(cmd)
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			c, err := s.svc.AddCategory(cmd.Context(), args[0], parentFlag(cmd, parent))
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			return rootOpts.formatter(cmd).Render(categoryView(c), func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Added category %d: %s\n", c.PK, c.Name)
				return err
			})
		},
	}

	cmd.Flags().Int64Var(&parent, "parent", 0, "key of the parent category")

	return cmd
}

func newCategoryListCommand(rootOpts *RootOptions) *cobra.Command {
	var tree bool

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List categories",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.open(cmd)
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			f := rootOpts.formatter(cmd)

			if tree {
				nodes, err := s.svc.CategoryTree(cmd.Context())
				if err != nil {
					return rootOpts.fail(cmd, err)
				}
				views := categoryNodeViews(nodes)
				return f.Render(views, func(w io.Writer) error {
					writeTree(w, views, 0)
					return nil
				})
			}

			cats, err := s.svc.Categories(cmd.Context())
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			views := make([]CategoryView, len(cats))
			rows := make([][]string, len(cats))
			for i, c := range cats {
				views[i] = categoryView(c)
				parent := "-"
				if c.Parent != nil {
					parent = strconv.FormatInt(*c.Parent, 10)
				}
				rows[i] = []string{strconv.FormatInt(c.PK, 10), c.Name, parent}
			}
			return f.Render(views, func(io.Writer) error {
				return f.Table([]string{"PK", "NAME", "PARENT"}, rows)
			})
		},
	}

	cmd.Flags().BoolVar(&tree, "tree", false, "show categories nested under their parents")

	return cmd
}

func writeTree(w io.Writer, nodes []CategoryNodeView, depth int) {
	for _, n := range nodes {
		fmt.Fprintf(w, "%s%s (%d)\n", strings.Repeat("  ", depth), n.Name, n.PK)
		writeTree(w, n.Children, depth+1)
	}
}

func newCategoryRenameCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		parent int64
		detach bool
	)

	cmd := &cobra.Command{
		Use:   "rename <pk> [name]",
		Short: "Rename a category or move it under another parent",
		Long: `Rename a category or move it. Without a name the current name is
kept; without --parent or --detach the current parent is kept.

Examples:
  bookkeeper category rename 2 treats
  bookkeeper category rename 2 --parent 1
  bookkeeper category rename 2 --detach`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			pk, err := parseKey(args[0])
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			if detach && cmd.Flags().Changed("parent") {
				return rootOpts.fail(cmd, NewExitError(ExitCommandError, "--parent and --detach are mutually exclusive"))
			}
			var name string
			if len(args) == 2 {
				name = args[1]
			}

			s, err := rootOpts.open(cmd)
			if err != nil {
				return rootOpts.fail(cmd, err)
			}

			newParent := parentFlag(cmd, parent)
			if newParent == nil && !detach {
				newParent, err = currentParent(cmd, s, pk)
				if err != nil {
					return rootOpts.fail(cmd, err)
				}
			}

			c, err := s.svc.RenameCategory(cmd.Context(), pk, name, newParent)
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			return rootOpts.formatter(cmd).Render(categoryView(c), func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Updated category %d: %s\n", c.PK, c.Name)
				return err
			})
		},
	}

	cmd.Flags().Int64Var(&parent, "parent", 0, "key of the new parent category")
	cmd.Flags().BoolVar(&detach, "detach", false, "make the category top-level")

	return cmd
}

// currentParent returns the parent category pk has now. A missing
// category yields nil; RenameCategory reports it.
func currentParent(cmd *cobra.Command, s *session, pk int64) (*int64, error) {
	cats, err := s.svc.Categories(cmd.Context())
	if err != nil {
		return nil, err
	}
	for _, c := range cats {
		if c.PK == pk {
			return c.Parent, nil
		}
	}
	return nil, nil
}

func newCategoryDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <pk>",
		Short:         "Delete a category",
		Long:          "Delete a category. Expenses keep their category name; deleting a missing key is not an error.",
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
			if err := s.svc.DeleteCategory(cmd.Context(), pk); err != nil {
				return rootOpts.fail(cmd, err)
			}
			return rootOpts.formatter(cmd).Render(map[string]int64{"deleted": pk}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Deleted category %d\n", pk)
				return err
			})
		},
	}
}
