package harness

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Table    string
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s on %s\n", e.Type, e.Table)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// evaluateAssertions runs every assertion against the final table state
// and returns one message per failure.
func (h *Harness) evaluateAssertions(ctx context.Context, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := h.evaluateAssertion(ctx, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func (h *Harness) evaluateAssertion(ctx context.Context, a Assertion) error {
	keys, err := h.keys(ctx, a.Table)
	if err != nil {
		return err
	}

	switch a.Type {
	case AssertRowCount:
		return assertRowCount(a, keys)
	case AssertKeys:
		return assertKeys(a, keys)
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

// keys reads every key of table in storage order.
func (h *Harness) keys(ctx context.Context, name string) ([]int64, error) {
	t, err := h.table(name)
	if err != nil {
		return nil, err
	}
	records, err := t.getAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	keys := make([]int64, len(records))
	for i, rec := range records {
		keys[i] = rec["pk"].(int64)
	}
	return keys, nil
}

func assertRowCount(a Assertion, keys []int64) error {
	if len(keys) == *a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertRowCount,
		Table:    a.Table,
		Expected: fmt.Sprintf("%d rows", *a.Count),
		Actual:   fmt.Sprintf("%d rows", len(keys)),
	}
}

func assertKeys(a Assertion, keys []int64) error {
	if slices.Equal(keys, a.Keys) {
		return nil
	}
	return &AssertionError{
		Type:     AssertKeys,
		Table:    a.Table,
		Expected: fmt.Sprintf("keys %v", a.Keys),
		Actual:   fmt.Sprintf("keys %v", keys),
	}
}
