// Package config loads bookkeeper settings.
//
// Settings come from, in increasing priority: built-in defaults, one YAML
// or TOML file, and BOOKKEEPER_* environment variables. Command-line flags
// are applied by the CLI on top. The merged result is checked against an
// embedded CUE schema before use.
//
//	database:
//	  path: ~/books.db
//	  driver: sqlite3        # or "sqlite" for the pure-Go driver
//	  busy_timeout_ms: 5000
//	  journal_mode: WAL
//	  foreign_keys: true
//	log:
//	  level: warn            # debug | info | warn | error
//	  format: text           # text | json
package config
