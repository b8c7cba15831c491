// Package repository defines the storage contract shared by every record type.
//
// The contract has five operations: Add, Get, GetAll, Update and Delete.
// Implementations live elsewhere (package store provides the SQLite one);
// presenters and the CLI depend only on this package.
//
// # Key lifecycle
//
// A record whose key field is 0 is transient. Add is the only operation that
// assigns a key, and it refuses records that already have one. Update and
// Delete refuse records without one. Both refusals happen before any
// statement reaches the store, so they never mutate data.
//
// # Absent records
//
// Get reports a missing key as (nil, nil). That is a normal outcome, not an
// error, and callers must check for it.
//
// # Errors
//
// Contract violations are *Error values matching ErrAlreadyPersisted or
// ErrUnknownKey through errors.Is. Anything else comes from the store and is
// returned wrapped, never retried.
package repository
