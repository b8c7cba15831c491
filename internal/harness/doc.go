// Package harness runs repository conformance scenarios.
//
// A scenario is a YAML file listing repository operations against the
// bookkeeper tables (category, expense, budget) or the probe table, a
// minimal record with one integer column. Every scenario gets a fresh
// database file, so keys always start at 1.
//
// # Scenario Format
//
//	name: probe_lifecycle
//	description: "Add, update and delete one record"
//	run_id: run-probe
//	steps:
//	  - op: add
//	    table: probe
//	    record: { f: 2 }
//	    expect: { key: 1 }
//	  - op: get
//	    table: probe
//	    key: 1
//	    expect:
//	      records: [{ pk: 1, f: 2 }]
//	  - op: get_all
//	    table: expense
//	    where: { raw: "WHERE amount > ?", args: [10] }
//	  - op: update
//	    table: probe
//	    record: { pk: 1, f: 1 }
//	  - op: delete
//	    table: probe
//	    key: 1
//	assertions:
//	  - type: row_count
//	    table: probe
//	    count: 0
//
// Ops are add, get, get_all, update, delete, drop and reopen. reopen
// rebuilds every repository over the same file, which checks that data
// and key sequences survive a new factory call. Expect clauses check the
// returned key, absence, the error code or the returned records (only the
// listed columns). A step without expect must succeed.
//
// # Traces
//
// Each step is recorded with a deterministic timestamp and its outcome.
// Traces render as canonical JSON and are compared with golden files in
// testdata/golden.
package harness
