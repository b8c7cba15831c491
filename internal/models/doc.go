// Package models defines the bookkeeping records: categories, expenses and
// budgets. Each is a plain struct with an int64 PK, stored through
// store.Repository; validate tags are enforced by package validation.
package models
