package harness

import "time"

// Probe is the minimal record scenarios use to exercise the repository
// contract without any domain meaning.
type Probe struct {
	F  int64
	PK int64
}

// Outcome values recorded in the trace.
const (
	OutcomeOK    = "ok"
	OutcomeError = "ERROR" // failure without a repository error code
)

// TraceEvent records one executed step.
type TraceEvent struct {
	Seq     int64            `json:"seq"`
	At      time.Time        `json:"at"`
	Op      string           `json:"op"`
	Table   string           `json:"table,omitempty"`
	Key     int64            `json:"key,omitempty"`
	Record  map[string]any   `json:"record,omitempty"`
	Outcome string           `json:"outcome"`
	Records []map[string]any `json:"records,omitempty"`
}

// canonicalMap converts the event for canonical JSON serialization.
func (e TraceEvent) canonicalMap() map[string]any {
	m := map[string]any{
		"seq":     e.Seq,
		"at":      e.At,
		"op":      e.Op,
		"outcome": e.Outcome,
	}
	if e.Table != "" {
		m["table"] = e.Table
	}
	if e.Key != 0 {
		m["key"] = e.Key
	}
	if e.Record != nil {
		m["record"] = e.Record
	}
	if e.Records != nil {
		m["records"] = e.Records
	}
	return m
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	// RunID identifies the execution; fixed by the scenario for golden runs.
	RunID string `json:"run_id"`

	Trace  []TraceEvent `json:"trace"`
	Errors []string     `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(runID string) *Result {
	return &Result{
		Pass:   true,
		RunID:  runID,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

func (r *Result) addTrace(e TraceEvent) {
	e.Seq = int64(len(r.Trace) + 1)
	r.Trace = append(r.Trace, e)
}
