package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bookkeeper/internal/testutil"
)

var testEpoch = testutil.Epoch

// scenarioPath resolves a scenario in the project-level testdata directory.
func scenarioPath(name string) string {
	return filepath.Join("..", "..", "testdata", "scenarios", name+".yaml")
}

// TestScenarioFiles runs every bundled scenario; they double as usage
// examples for the scenario format.
func TestScenarioFiles(t *testing.T) {
	scenarios, err := LoadScenarios(filepath.Join("..", "..", "testdata", "scenarios"))
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			result, err := Run(context.Background(), s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestScenarioFiles_KeyErrorsTrace(t *testing.T) {
	s, err := LoadScenario(scenarioPath("key_errors"))
	require.NoError(t, err)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)

	var outcomes []string
	for _, e := range result.Trace {
		outcomes = append(outcomes, e.Outcome)
	}
	assert.Equal(t, []string{"ok", "ALREADY_PERSISTED", "UNKNOWN_KEY", "UNKNOWN_KEY", "ok", "ok", "ok"}, outcomes)
}
