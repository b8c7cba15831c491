package repository

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes contract violations.
type ErrorCode string

const (
	// CodeAlreadyPersisted: Add was given a record that already has a key.
	CodeAlreadyPersisted ErrorCode = "ALREADY_PERSISTED"

	// CodeUnknownKey: Update or Delete was given a zero key.
	CodeUnknownKey ErrorCode = "UNKNOWN_KEY"
)

// Sentinels for errors.Is. An *Error matches the sentinel of its code.
var (
	ErrAlreadyPersisted = errors.New("record already persisted")
	ErrUnknownKey       = errors.New("record key is unset")
)

// Error is a contract violation detected before any statement runs.
// Store failures are not Errors; they are returned wrapped as they come
// from the driver.
type Error struct {
	Code  ErrorCode
	Op    string // "add", "update", "delete"
	Table string
	Key   int64
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Code {
	case CodeAlreadyPersisted:
		return fmt.Sprintf("%s %s: %s: key %d already assigned", e.Op, e.Table, e.Code, e.Key)
	case CodeUnknownKey:
		return fmt.Sprintf("%s %s: %s: key must be non-zero", e.Op, e.Table, e.Code)
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.Table, e.Code)
}

// Is reports whether target is the sentinel for e's code.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrAlreadyPersisted:
		return e.Code == CodeAlreadyPersisted
	case ErrUnknownKey:
		return e.Code == CodeUnknownKey
	}
	return false
}

// NewAlreadyPersisted reports an Add on a persisted record.
func NewAlreadyPersisted(op, table string, key int64) *Error {
	return &Error{Code: CodeAlreadyPersisted, Op: op, Table: table, Key: key}
}

// NewUnknownKey reports an Update or Delete without a key.
func NewUnknownKey(op, table string) *Error {
	return &Error{Code: CodeUnknownKey, Op: op, Table: table}
}

// IsAlreadyPersisted reports whether err is, or wraps, an already-persisted error.
func IsAlreadyPersisted(err error) bool {
	return errors.Is(err, ErrAlreadyPersisted)
}

// IsUnknownKey reports whether err is, or wraps, an unknown-key error.
func IsUnknownKey(err error) bool {
	return errors.Is(err, ErrUnknownKey)
}

// CodeOf returns the ErrorCode carried by err, or "" if err is not an *Error.
func CodeOf(err error) ErrorCode {
	var re *Error
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}
