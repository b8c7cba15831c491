package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/bookkeeper/internal/bookkeeper"
	"github.com/roach88/bookkeeper/internal/config"
	"github.com/roach88/bookkeeper/internal/runid"
)

// RootOptions holds global flags for all commands, plus the configuration
// and logger resolved from them before any command runs.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	DB      string // overrides database.path
	Driver  string // overrides database.driver
	Config  string // explicit config file

	// Injectable for tests; nil means the process environment, UUIDv7 run
	// ids and the system clock.
	Getenv func(string) string
	RunIDs runid.Generator
	Clock  bookkeeper.Clock

	cfg       *config.Config
	cfgSource string
	logger    *slog.Logger
	runID     string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the bookkeeper CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookkeeper",
		Short: "Personal expense bookkeeping on SQLite",
		Long: `Record expenses, organise them in categories and track spending
against daily, weekly and monthly budgets. Everything is stored in one
SQLite file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.setup(cmd.ErrOrStderr())
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (debug logging)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "database file (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "sqlite driver: sqlite3 or sqlite (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "config file (.yaml or .toml)")

	// Add subcommands
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewTablesCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewCategoryCommand(opts))
	cmd.AddCommand(NewExpenseCommand(opts))
	cmd.AddCommand(NewBudgetCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// setup loads the configuration, applies flag overrides and installs the
// run logger. It runs once per invocation.
func (o *RootOptions) setup(stderr io.Writer) error {
	if o.cfg != nil {
		return nil
	}

	cfg, source, err := config.Load(o.Config, o.Getenv)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if o.DB != "" {
		cfg.Database.Path = o.DB
	}
	if o.Driver != "" {
		cfg.Database.Driver = o.Driver
	}
	if o.DB != "" || o.Driver != "" {
		if err := config.Validate(cfg); err != nil {
			return WrapExitError(ExitCommandError, "invalid flags", err)
		}
	}

	if o.RunIDs == nil {
		o.RunIDs = runid.UUIDv7Generator{}
	}
	if o.Clock == nil {
		o.Clock = bookkeeper.SystemClock{}
	}
	o.runID = o.RunIDs.Generate()
	o.logger = newLogger(stderr, cfg, o.Verbose).With("run_id", o.runID)
	o.cfg, o.cfgSource = cfg, source

	o.logger.Debug("config loaded",
		"source", source,
		"db", cfg.Database.Path,
		"driver", cfg.Database.Driver,
	)
	return nil
}

// newLogger builds the slog handler selected by the log section.
func newLogger(w io.Writer, cfg *config.Config, verbose bool) *slog.Logger {
	level := cfg.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
