// Package temporal is the version-correction engine: pure functions that
// compute the row transitions required by each mutation and the time-window
// predicates required by each read. It performs no I/O; callers apply the
// returned transitions inside a storage transaction.
package temporal
