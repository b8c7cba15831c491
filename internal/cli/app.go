package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/bookkeeper/internal/bookkeeper"
	"github.com/roach88/bookkeeper/internal/repository"
	"github.com/roach88/bookkeeper/internal/store"
	"github.com/roach88/bookkeeper/internal/validation"
)

// session is the database opened for one command.
type session struct {
	reg *store.Registry
	svc *bookkeeper.Service
}

// open creates the bookkeeping tables if needed and returns the service
// over them.
func (o *RootOptions) open(cmd *cobra.Command) (*session, error) {
	if err := o.setup(cmd.ErrOrStderr()); err != nil {
		return nil, err
	}
	reg, repos, err := bookkeeper.Open(cmd.Context(), o.cfg.Database.Path, o.cfg.StoreOptions(o.logger))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	svc := bookkeeper.New(repos,
		bookkeeper.WithClock(o.Clock),
		bookkeeper.WithLogger(o.logger),
	)
	return &session{reg: reg, svc: svc}, nil
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
		RunID:     o.runID,
	}
}

// fail reports err in the output format and returns it with an exit code.
func (o *RootOptions) fail(cmd *cobra.Command, err error) error {
	code, message, exit := classify(err)

	var details any
	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		details = verrs
	}
	if o.Format == "json" {
		_ = o.formatter(cmd).Error(code, err.Error(), details)
	}
	if o.logger != nil {
		o.logger.Debug("command failed", "command", cmd.CommandPath(), "code", code, "error", err)
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	return WrapExitError(exit, message, err)
}

// classify maps an error to its response code, summary and exit code.
func classify(err error) (code, message string, exit int) {
	var exitErr *ExitError
	switch {
	case errors.As(err, &exitErr):
		return "COMMAND_ERROR", exitErr.Message, exitErr.Code
	case validation.IsValidationError(err):
		return "VALIDATION", "invalid input", ExitFailure
	case errors.Is(err, bookkeeper.ErrNotFound):
		return "NOT_FOUND", "not found", ExitFailure
	case errors.Is(err, bookkeeper.ErrCategoryCycle):
		return "CATEGORY_CYCLE", "invalid parent", ExitFailure
	case errors.Is(err, bookkeeper.ErrUnknownPeriod):
		return "UNKNOWN_PERIOD", "invalid period", ExitCommandError
	}
	if rc := repository.CodeOf(err); rc != "" {
		return string(rc), "rejected", ExitFailure
	}
	return "INTERNAL", "command failed", ExitFailure
}

// dateLayouts are accepted wherever a date argument is taken. Dates
// without a zone are UTC.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, NewExitError(ExitCommandError,
		fmt.Sprintf("invalid date %q: want YYYY-MM-DD, YYYY-MM-DD HH:MM or RFC 3339", s))
}

func parseKey(s string) (int64, error) {
	pk, err := strconv.ParseInt(s, 10, 64)
	if err != nil || pk <= 0 {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid key %q: want a positive integer", s))
	}
	return pk, nil
}

func parseAmount(s string) (float64, error) {
	x, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid amount %q", s))
	}
	return x, nil
}

// formatAmount renders money with two decimals.
func formatAmount(x float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64)
}

// formatDate renders a stored time in the text output format.
func formatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04")
}
