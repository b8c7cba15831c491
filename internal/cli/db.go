package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// DatabaseInfo is the payload of init and reset.
type DatabaseInfo struct {
	Path   string   `json:"path"`
	Driver string   `json:"driver"`
	Tables []string `json:"tables"`
}

// TableInfo describes one registered table.
type TableInfo struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database and its tables",
		Long: `Create the database file and the category, expense and budget tables.

Running init on an existing database changes nothing.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.open(cmd)
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			info := databaseInfo(s)
			return rootOpts.formatter(cmd).Render(info, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Initialized %s (tables: %s)\n", info.Path, strings.Join(info.Tables, ", "))
				return err
			})
		},
	}
}

// NewTablesCommand creates the tables command.
func NewTablesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "tables",
		Short:         "List tables and their columns",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.open(cmd)
			if err != nil {
				return rootOpts.fail(cmd, err)
			}

			var tables []TableInfo
			for _, name := range s.reg.Tables() {
				cols, _ := s.reg.Columns(name)
				tables = append(tables, TableInfo{Name: name, Columns: append([]string{"pk"}, cols...)})
			}

			f := rootOpts.formatter(cmd)
			return f.Render(tables, func(io.Writer) error {
				rows := make([][]string, len(tables))
				for i, t := range tables {
					rows[i] = []string{t.Name, strings.Join(t.Columns, ", ")}
				}
				return f.Table([]string{"TABLE", "COLUMNS"}, rows)
			})
		},
	}
}

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every record and restart keys",
		Long: `Drop and recreate every table. All records are lost and keys
start again at 1. Requires --yes.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return rootOpts.fail(cmd, NewExitError(ExitCommandError, "reset deletes every record; pass --yes to confirm"))
			}
			s, err := rootOpts.open(cmd)
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			if err := s.reg.Reset(cmd.Context()); err != nil {
				return rootOpts.fail(cmd, err)
			}
			rootOpts.logger.Info("database reset", "path", s.reg.Store().Path())

			info := databaseInfo(s)
			return rootOpts.formatter(cmd).Render(info, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Reset %s\n", info.Path)
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting every record")

	return cmd
}

func databaseInfo(s *session) DatabaseInfo {
	return DatabaseInfo{
		Path:   s.reg.Store().Path(),
		Driver: s.reg.Store().Driver(),
		Tables: s.reg.Tables(),
	}
}
