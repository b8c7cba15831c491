package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/roach88/bookkeeper/internal/bookkeeper"
	"github.com/roach88/bookkeeper/internal/canonical"
	"github.com/roach88/bookkeeper/internal/filter"
	"github.com/roach88/bookkeeper/internal/models"
	"github.com/roach88/bookkeeper/internal/repository"
	"github.com/roach88/bookkeeper/internal/store"
	"github.com/roach88/bookkeeper/internal/testutil"
)

// binders build the scenario tables from a registry, probe first.
var binders = []func(*store.Registry) (table, error){
	bind[Probe],
	bind[models.Category],
	bind[models.Expense],
	bind[models.Budget],
}

// Harness is the scenario execution engine.
// It runs scenarios with a deterministic clock and a fixed run id.
type Harness struct {
	store  *store.Store
	tables map[string]table
	clock  *testutil.DeterministicClock
	logger *slog.Logger
}

// Option configures Run.
type Option func(*config)

type config struct {
	dir    string
	logger *slog.Logger
}

// WithDir places the scenario database in dir instead of a fresh
// temporary directory. The file is named after the scenario.
func WithDir(dir string) Option {
	return func(c *config) { c.dir = dir }
}

// WithLogger routes store and harness logs to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// Run executes a scenario and returns the result.
//
// Each scenario runs on a fresh database file. Step expectations and
// final assertions that do not hold are reported in Result.Errors; the
// returned error is reserved for failures of the harness itself.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := config{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}

	dir := cfg.dir
	if dir == "" {
		tmp, err := os.MkdirTemp("", "bookkeeper-harness-*")
		if err != nil {
			return nil, fmt.Errorf("failed to create scenario directory: %w", err)
		}
		defer os.RemoveAll(tmp)
		dir = tmp
	}

	st, err := store.NewStore(filepath.Join(dir, scenario.Name+".db"), store.Options{
		Driver: scenario.Driver,
		Logger: cfg.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	h := &Harness{
		store:  st,
		clock:  testutil.NewDeterministicClock(time.Time{}, time.Second),
		logger: cfg.logger,
	}
	if err := h.open(ctx); err != nil {
		return nil, err
	}

	result := NewResult(testutil.NewFixedRunIDGenerator(scenario.RunID).Generate())
	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		}
	}

	for _, msg := range h.evaluateAssertions(ctx, scenario.Assertions) {
		result.AddError(msg)
	}

	h.logger.Debug("scenario finished",
		"scenario", scenario.Name,
		"run_id", result.RunID,
		"steps", len(scenario.Steps),
		"pass", result.Pass,
	)
	return result, nil
}

// open (re)builds the registry over the harness store, creating any
// missing tables.
func (h *Harness) open(ctx context.Context) error {
	all := append(bookkeeper.Models(), store.Register[Probe]())
	reg, err := store.OpenStore(ctx, h.store, all...)
	if err != nil {
		return fmt.Errorf("failed to open repositories: %w", err)
	}

	h.tables = make(map[string]table, len(binders))
	for _, b := range binders {
		t, err := b(reg)
		if err != nil {
			return err
		}
		h.tables[t.name()] = t
	}
	return nil
}

func (h *Harness) table(name string) (table, error) {
	t, ok := h.tables[name]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", name)
	}
	return t, nil
}

// executeStep runs one step, records it in the trace and checks its
// expectations.
func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) error {
	event := TraceEvent{At: h.clock.Now(), Op: step.Op, Table: step.Table, Key: step.Key}

	if step.Op == OpReopen {
		if err := h.open(ctx); err != nil {
			return err
		}
		event.Outcome = OutcomeOK
		result.addTrace(event)
		return nil
	}

	t, err := h.table(step.Table)
	if err != nil {
		return err
	}

	var (
		opErr   error
		records []map[string]any
		absent  bool
	)
	switch step.Op {
	case OpAdd:
		var key int64
		key, opErr = t.add(ctx, step.Record)
		event.Record = step.Record
		event.Key = key
	case OpGet:
		var rec map[string]any
		rec, opErr = t.get(ctx, step.Key)
		if rec != nil {
			records = []map[string]any{rec}
		}
		absent = opErr == nil && rec == nil
	case OpGetAll:
		var where filter.Predicate
		where, opErr = h.where(t, step.Where)
		if opErr == nil {
			records, opErr = t.getAll(ctx, where)
		}
		if records == nil && opErr == nil {
			records = []map[string]any{}
		}
	case OpUpdate:
		opErr = t.update(ctx, step.Record)
		event.Record = step.Record
	case OpDelete:
		opErr = t.delete(ctx, step.Key)
	case OpDrop:
		opErr = t.drop(ctx)
	}

	event.Outcome = outcomeOf(opErr)
	event.Records = records
	result.addTrace(event)

	if opErr != nil {
		h.logger.Debug("step failed", "index", index, "op", step.Op, "table", step.Table, "error", opErr)
	}

	for _, msg := range h.checkExpect(t, step, event, absent, opErr) {
		result.AddError(fmt.Sprintf("steps[%d] %s %s: %s", index, step.Op, step.Table, msg))
	}
	return nil
}

// where converts a scenario filter into a predicate.
func (h *Harness) where(t table, w *Where) (filter.Predicate, error) {
	if w == nil {
		return nil, nil
	}
	if w.Raw != "" {
		return filter.Clause(w.Raw, w.Args...), nil
	}

	preds := make([]filter.Predicate, 0, len(w.Eq))
	for _, col := range canonical.SortedKeys(w.Eq) {
		f, ok := t.field(col)
		if !ok {
			return nil, fmt.Errorf("%w: %s", filter.ErrUnknownColumn, col)
		}
		v, err := coerce(f, w.Eq[col])
		if err != nil {
			return nil, err
		}
		if v == nil {
			preds = append(preds, filter.Null(col))
			continue
		}
		preds = append(preds, filter.Eq(col, v))
	}
	return filter.All(preds...), nil
}

// outcomeOf maps an operation error to its trace outcome.
func outcomeOf(err error) string {
	if err == nil {
		return OutcomeOK
	}
	if code := repository.CodeOf(err); code != "" {
		return string(code)
	}
	return OutcomeError
}

// checkExpect compares a step's observed outcome with its expect clause.
// A step without expect must succeed.
func (h *Harness) checkExpect(t table, step Step, event TraceEvent, absent bool, opErr error) []string {
	exp := step.Expect
	if exp == nil {
		if opErr != nil {
			return []string{fmt.Sprintf("unexpected error: %v", opErr)}
		}
		return nil
	}

	if exp.Error != "" {
		if event.Outcome != exp.Error {
			return []string{fmt.Sprintf("expected error %s, got %s", exp.Error, event.Outcome)}
		}
		return nil
	}
	if opErr != nil {
		return []string{fmt.Sprintf("unexpected error: %v", opErr)}
	}

	var errs []string
	if exp.Key != nil && *exp.Key != event.Key {
		errs = append(errs, fmt.Sprintf("expected key %d, got %d", *exp.Key, event.Key))
	}
	if exp.Absent && !absent {
		errs = append(errs, "expected no record")
	}
	if exp.Records != nil {
		errs = append(errs, matchRecords(t, exp.Records, event.Records)...)
	}
	return errs
}

// matchRecords compares records in order. Only the columns listed in each
// expected record are checked.
func matchRecords(t table, want, got []map[string]any) []string {
	if len(want) != len(got) {
		return []string{fmt.Sprintf("expected %d records, got %d", len(want), len(got))}
	}

	var errs []string
	for i := range want {
		for _, col := range canonical.SortedKeys(want[i]) {
			f, ok := t.field(col)
			if !ok {
				errs = append(errs, fmt.Sprintf("records[%d]: unknown column %q", i, col))
				continue
			}
			same, err := sameValue(f, want[i][col], got[i][col])
			if err != nil {
				errs = append(errs, fmt.Sprintf("records[%d].%s: %v", i, col, err))
				continue
			}
			if !same {
				errs = append(errs, fmt.Sprintf("records[%d].%s: expected %v, got %v", i, col, want[i][col], got[i][col]))
			}
		}
	}
	return errs
}
