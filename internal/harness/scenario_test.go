package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario_Valid(t *testing.T) {
	path := writeScenario(t, `
name: valid
description: "A valid scenario"
run_id: run-1
driver: sqlite
steps:
  - op: add
    table: probe
    record: { f: 1 }
    expect: { key: 1 }
  - op: get_all
    table: probe
    where: { raw: "WHERE f > ?", args: [0] }
  - op: reopen
assertions:
  - type: row_count
    table: probe
    count: 1
`)

	s, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "valid", s.Name)
	assert.Equal(t, "run-1", s.RunID)
	assert.Equal(t, "sqlite", s.Driver)
	require.Len(t, s.Steps, 3)
	assert.Equal(t, OpAdd, s.Steps[0].Op)
	assert.Equal(t, map[string]any{"f": 1}, s.Steps[0].Record)
	require.NotNil(t, s.Steps[0].Expect.Key)
	assert.Equal(t, int64(1), *s.Steps[0].Expect.Key)
	assert.Equal(t, "WHERE f > ?", s.Steps[1].Where.Raw)
	assert.Equal(t, []any{0}, s.Steps[1].Where.Args)
	assert.Equal(t, OpReopen, s.Steps[2].Op)
	require.Len(t, s.Assertions, 1)
	assert.Equal(t, 1, *s.Assertions[0].Count)
}

func TestLoadScenario_UnknownFieldRejected(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: "Misspelled key"
steps:
  - op: add
    table: probe
    record: { f: 1 }
assertion:
  - type: row_count
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestValidateScenario(t *testing.T) {
	count := 1
	key := int64(1)

	tests := []struct {
		name     string
		scenario Scenario
		wantErr  string
	}{
		{"missing name", Scenario{Description: "d", Steps: []Step{{Op: OpReopen}}}, "name is required"},
		{"missing description", Scenario{Name: "n", Steps: []Step{{Op: OpReopen}}}, "description is required"},
		{"no steps", Scenario{Name: "n", Description: "d"}, "steps list is required"},
		{"missing op", Scenario{Name: "n", Description: "d", Steps: []Step{{Table: "probe"}}}, "op is required"},
		{"unknown op", Scenario{Name: "n", Description: "d", Steps: []Step{{Op: "upsert", Table: "probe"}}}, `unknown op "upsert"`},
		{"missing table", Scenario{Name: "n", Description: "d", Steps: []Step{{Op: OpGet}}}, "table is required"},
		{"reopen with table", Scenario{Name: "n", Description: "d", Steps: []Step{{Op: OpReopen, Table: "probe"}}}, "reopen takes no table"},
		{"add without record", Scenario{Name: "n", Description: "d", Steps: []Step{{Op: OpAdd, Table: "probe"}}}, "record is required"},
		{
			"where on get",
			Scenario{Name: "n", Description: "d", Steps: []Step{{Op: OpGet, Table: "probe", Where: &Where{Raw: "x"}}}},
			"where is only valid for get_all",
		},
		{
			"eq and raw",
			Scenario{Name: "n", Description: "d", Steps: []Step{{
				Op: OpGetAll, Table: "probe", Where: &Where{Raw: "x", Eq: map[string]any{"f": 1}},
			}}},
			"mutually exclusive",
		},
		{
			"key on get",
			Scenario{Name: "n", Description: "d", Steps: []Step{{Op: OpGet, Table: "probe", Expect: &Expect{Key: &key}}}},
			"key is only valid for add",
		},
		{
			"absent on get_all",
			Scenario{Name: "n", Description: "d", Steps: []Step{{Op: OpGetAll, Table: "probe", Expect: &Expect{Absent: true}}}},
			"absent is only valid for get",
		},
		{
			"error with records",
			Scenario{Name: "n", Description: "d", Steps: []Step{{
				Op: OpGetAll, Table: "probe", Expect: &Expect{Error: "ERROR", Records: []map[string]any{}},
			}}},
			"error excludes other expectations",
		},
		{
			"assertion without type",
			Scenario{Name: "n", Description: "d", Steps: []Step{{Op: OpReopen}}, Assertions: []Assertion{{Table: "probe"}}},
			"type is required",
		},
		{
			"assertion without table",
			Scenario{Name: "n", Description: "d", Steps: []Step{{Op: OpReopen}}, Assertions: []Assertion{{Type: AssertKeys}}},
			"table is required",
		},
		{
			"row_count without count",
			Scenario{Name: "n", Description: "d", Steps: []Step{{Op: OpReopen}}, Assertions: []Assertion{{Type: AssertRowCount, Table: "probe"}}},
			"row_count requires count",
		},
		{
			"unknown assertion",
			Scenario{Name: "n", Description: "d", Steps: []Step{{Op: OpReopen}}, Assertions: []Assertion{{Type: "final_state", Table: "probe", Count: &count}}},
			"unknown assertion type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateScenario(&tt.scenario)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenarios_SortedByFileName(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b", "a"} {
		content := "name: " + name + "\ndescription: d\nsteps:\n  - op: reopen\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".yaml"), []byte(content), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	scenarios, err := LoadScenarios(dir)
	require.NoError(t, err)
	require.Len(t, scenarios, 2)
	assert.Equal(t, "a", scenarios[0].Name)
	assert.Equal(t, "b", scenarios[1].Name)
}

func TestLoadScenarios_ReportsFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("name: x\n"), 0o644))

	_, err := LoadScenarios(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.yaml")
}
