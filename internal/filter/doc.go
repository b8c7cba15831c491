// Package filter builds the optional narrowing clause for GetAll.
//
// Typed predicates (Equals, Compare, IsNull, And) compile to a WHERE clause
// with ? placeholders and a list of bound arguments; the store appends a
// deterministic ORDER BY on the key column. Raw keeps the escape hatch of
// appending a backend-specific clause verbatim, for trusted internal callers
// only.
package filter
