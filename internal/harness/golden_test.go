package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_ScenarioFiles(t *testing.T) {
	for _, name := range []string{"probe_lifecycle", "expense_window"} {
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(scenarioPath(name))
			require.NoError(t, err)

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, result.Errors)
		})
	}
}

func TestSnapshot_Format(t *testing.T) {
	result := NewResult("run-x")
	result.addTrace(TraceEvent{At: testEpoch, Op: OpReopen, Outcome: OutcomeOK})

	data, err := Snapshot("tiny", result)
	require.NoError(t, err)

	want := `{
  "run_id": "run-x",
  "scenario_name": "tiny",
  "trace": [
    {
      "at": "2024-01-01T00:00:00Z",
      "op": "reopen",
      "outcome": "ok",
      "seq": 1
    }
  ]
}
`
	assert.Equal(t, want, string(data))
}
