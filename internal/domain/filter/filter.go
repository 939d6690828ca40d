// Package filter builds search service filter expressions.
package filter

import "strings"

// DateRange is an optional, inclusive bound on the document "date" field.
// Bounds are passed through verbatim; empty means unbounded.
type DateRange struct {
	Start string
	End   string
}

// IsEmpty reports whether neither bound is set.
func (d DateRange) IsEmpty() bool {
	return d.Start == "" && d.End == ""
}

// Expression renders the range as a search filter, e.g. "date>=2024-01-01 AND date<=2024-12-31".
// Returns "" when the range is empty.
func (d DateRange) Expression() string {
	clauses := make([]string, 0, 2)
	if d.Start != "" {
		clauses = append(clauses, "date>="+d.Start)
	}
	if d.End != "" {
		clauses = append(clauses, "date<="+d.End)
	}
	return strings.Join(clauses, " AND ")
}
