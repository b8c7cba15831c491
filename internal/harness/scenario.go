package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario is a repository conformance test loaded from YAML.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	Description string `yaml:"description"`

	// RunID is stamped on the result. Empty means "test-run-default".
	RunID string `yaml:"run_id,omitempty"`

	// Driver selects the sqlite driver; empty uses the store default.
	Driver string `yaml:"driver,omitempty"`

	Steps      []Step      `yaml:"steps"`
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one repository operation.
type Step struct {
	// Op is one of the Op* constants.
	Op string `yaml:"op"`

	// Table names the target record type (probe, category, expense, budget).
	Table string `yaml:"table,omitempty"`

	// Record holds column values for add and update. For update it must
	// carry "pk".
	Record map[string]any `yaml:"record,omitempty"`

	// Key is the record key for get and delete.
	Key int64 `yaml:"key,omitempty"`

	// Where filters get_all; nil selects every record.
	Where *Where `yaml:"where,omitempty"`

	Expect *Expect `yaml:"expect,omitempty"`
}

// Where is either a set of column equalities or a trusted raw clause.
type Where struct {
	Eq   map[string]any `yaml:"eq,omitempty"`
	Raw  string         `yaml:"raw,omitempty"`
	Args []any          `yaml:"args,omitempty"`
}

// Expect describes the expected outcome of a step.
type Expect struct {
	// Key is the key add must return.
	Key *int64 `yaml:"key,omitempty"`

	// Absent expects get to find nothing.
	Absent bool `yaml:"absent,omitempty"`

	// Error is the expected error code ("ALREADY_PERSISTED", "UNKNOWN_KEY")
	// or "ERROR" for any other failure.
	Error string `yaml:"error,omitempty"`

	// Records are compared in order against get or get_all results.
	// Only the listed columns are checked.
	Records []map[string]any `yaml:"records,omitempty"`
}

// Assertion checks final table state after all steps ran.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	Table string `yaml:"table"`

	// Count is the expected row count (row_count).
	Count *int `yaml:"count,omitempty"`

	// Keys are the expected keys in read order (keys).
	Keys []int64 `yaml:"keys,omitempty"`
}

// Step operations.
const (
	OpAdd    = "add"
	OpGet    = "get"
	OpGetAll = "get_all"
	OpUpdate = "update"
	OpDelete = "delete"
	OpDrop   = "drop"
	OpReopen = "reopen"
)

// Assertion type constants.
const (
	AssertRowCount = "row_count"
	AssertKeys     = "keys"
)

var tableOps = map[string]bool{
	OpAdd: true, OpGet: true, OpGetAll: true, OpUpdate: true, OpDelete: true, OpDrop: true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict decoding catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml file in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, st *Step) error {
	switch {
	case st.Op == "":
		return fmt.Errorf("steps[%d]: op is required", index)
	case st.Op == OpReopen:
		if st.Table != "" {
			return fmt.Errorf("steps[%d]: reopen takes no table", index)
		}
		return nil
	case !tableOps[st.Op]:
		return fmt.Errorf("steps[%d]: unknown op %q", index, st.Op)
	case st.Table == "":
		return fmt.Errorf("steps[%d]: table is required for %s", index, st.Op)
	}

	if (st.Op == OpAdd || st.Op == OpUpdate) && st.Record == nil {
		return fmt.Errorf("steps[%d]: record is required for %s", index, st.Op)
	}
	if st.Where != nil && st.Op != OpGetAll {
		return fmt.Errorf("steps[%d]: where is only valid for get_all", index)
	}
	if st.Where != nil && st.Where.Raw != "" && len(st.Where.Eq) > 0 {
		return fmt.Errorf("steps[%d].where: eq and raw are mutually exclusive", index)
	}
	if e := st.Expect; e != nil {
		if e.Key != nil && st.Op != OpAdd {
			return fmt.Errorf("steps[%d].expect: key is only valid for add", index)
		}
		if e.Absent && st.Op != OpGet {
			return fmt.Errorf("steps[%d].expect: absent is only valid for get", index)
		}
		if e.Error != "" && (e.Key != nil || e.Absent || e.Records != nil) {
			return fmt.Errorf("steps[%d].expect: error excludes other expectations", index)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Table == "" {
		return fmt.Errorf("assertions[%d]: table is required", index)
	}

	switch a.Type {
	case AssertRowCount:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: row_count requires count", index)
		}
	case AssertKeys:
		if a.Keys == nil {
			return fmt.Errorf("assertions[%d]: keys requires keys", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
