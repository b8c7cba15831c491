package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func TestRun_MinimalScenario(t *testing.T) {
	scenario := &Scenario{
		Name:        "minimal",
		Description: "One add",
		Steps: []Step{
			{Op: OpAdd, Table: "probe", Record: map[string]any{"f": 7}, Expect: &Expect{Key: int64Ptr(1)}},
		},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.Pass, result.Errors)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "test-run-default", result.RunID)

	require.Len(t, result.Trace, 1)
	event := result.Trace[0]
	assert.Equal(t, int64(1), event.Seq)
	assert.Equal(t, OpAdd, event.Op)
	assert.Equal(t, int64(1), event.Key)
	assert.Equal(t, OutcomeOK, event.Outcome)
}

func TestRun_TraceIsDeterministic(t *testing.T) {
	scenario := &Scenario{
		Name:        "deterministic",
		Description: "Same trace twice",
		RunID:       "run-fixed",
		Steps: []Step{
			{Op: OpAdd, Table: "probe", Record: map[string]any{"f": 1}},
			{Op: OpGetAll, Table: "probe"},
		},
	}

	first, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	second, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	a, err := Snapshot(scenario.Name, first)
	require.NoError(t, err)
	b, err := Snapshot(scenario.Name, second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
	assert.True(t, first.Trace[1].At.After(first.Trace[0].At))
}

func TestRun_ExpectationFailuresAreReported(t *testing.T) {
	scenario := &Scenario{
		Name:        "failing",
		Description: "Every expectation is wrong",
		Steps: []Step{
			{Op: OpAdd, Table: "probe", Record: map[string]any{"f": 1}, Expect: &Expect{Key: int64Ptr(5)}},
			{Op: OpGet, Table: "probe", Key: 1, Expect: &Expect{Absent: true}},
			{Op: OpGetAll, Table: "probe", Expect: &Expect{Records: []map[string]any{{"f": 2}}}},
			{Op: OpDelete, Table: "probe", Key: 1, Expect: &Expect{Error: "UNKNOWN_KEY"}},
			{Op: OpUpdate, Table: "probe", Record: map[string]any{"f": 3}},
		},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 5)
	assert.Contains(t, result.Errors[0], "expected key 5, got 1")
	assert.Contains(t, result.Errors[1], "expected no record")
	assert.Contains(t, result.Errors[2], "records[0].f: expected 2, got 1")
	assert.Contains(t, result.Errors[3], "expected error UNKNOWN_KEY, got ok")
	assert.Contains(t, result.Errors[4], "unexpected error")
}

func TestRun_ErrorOutcomes(t *testing.T) {
	scenario := &Scenario{
		Name:        "errors",
		Description: "Error codes land in the trace",
		Steps: []Step{
			{Op: OpAdd, Table: "probe", Record: map[string]any{"pk": 3, "f": 1}, Expect: &Expect{Error: "ALREADY_PERSISTED"}},
			{Op: OpDelete, Table: "probe", Expect: &Expect{Error: "UNKNOWN_KEY"}},
			{Op: OpAdd, Table: "probe", Record: map[string]any{"nope": 1}, Expect: &Expect{Error: OutcomeError}},
			{Op: OpGetAll, Table: "probe", Where: &Where{Raw: "WHERE f =="}, Expect: &Expect{Error: OutcomeError}},
		},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)

	outcomes := make([]string, len(result.Trace))
	for i, e := range result.Trace {
		outcomes[i] = e.Outcome
	}
	assert.Equal(t, []string{"ALREADY_PERSISTED", "UNKNOWN_KEY", OutcomeError, OutcomeError}, outcomes)
}

func TestRun_TypedWhere(t *testing.T) {
	scenario := &Scenario{
		Name:        "typed_where",
		Description: "Equality filters on every column type",
		Steps: []Step{
			{Op: OpAdd, Table: "category", Record: map[string]any{"name": "Food"}},
			{Op: OpAdd, Table: "category", Record: map[string]any{"name": "Snacks", "parent": 1}},
			{
				Op: OpGetAll, Table: "category", Where: &Where{Eq: map[string]any{"parent": nil}},
				Expect: &Expect{Records: []map[string]any{{"pk": 1}}},
			},
			{
				Op: OpGetAll, Table: "category", Where: &Where{Eq: map[string]any{"parent": 1, "name": "Snacks"}},
				Expect: &Expect{Records: []map[string]any{{"pk": 2, "parent": 1}}},
			},
			{
				Op: OpGetAll, Table: "category", Where: &Where{Eq: map[string]any{"name": "None"}},
				Expect: &Expect{Records: []map[string]any{}},
			},
		},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}

func TestRun_UnknownTable(t *testing.T) {
	scenario := &Scenario{
		Name:        "unknown_table",
		Description: "Tables outside the registry fail the run",
		Steps:       []Step{{Op: OpGetAll, Table: "ledger"}},
	}

	_, err := Run(context.Background(), scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown table "ledger"`)
}

func TestRun_WithDirKeepsDatabase(t *testing.T) {
	dir := t.TempDir()
	scenario := &Scenario{
		Name:        "kept",
		Description: "Database stays in dir",
		Steps:       []Step{{Op: OpAdd, Table: "probe", Record: map[string]any{"f": 1}}},
	}

	_, err := Run(context.Background(), scenario, WithDir(dir))
	require.NoError(t, err)
	assert.FileExists(t, dir+"/kept.db")
}

func TestCoerce(t *testing.T) {
	scenario := &Scenario{
		Name:        "coerce",
		Description: "YAML values convert to column types",
		Steps: []Step{
			{Op: OpAdd, Table: "budget", Record: map[string]any{
				"amount": 0, "limits": 10.5, "duration": "day",
				"start_date": "2024-01-01", "expiration_date": "2024-01-02T00:00:00Z",
			}},
			{Op: OpAdd, Table: "budget", Record: map[string]any{"limits": "ten"}, Expect: &Expect{Error: OutcomeError}},
			{Op: OpAdd, Table: "budget", Record: map[string]any{"start_date": "yesterday"}, Expect: &Expect{Error: OutcomeError}},
			{
				Op: OpGet, Table: "budget", Key: 1,
				Expect: &Expect{Records: []map[string]any{{
					"amount": 0, "limits": 10.5, "start_date": "2024-01-01 00:00:00",
				}}},
			},
		},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}
