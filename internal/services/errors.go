// Package services implements the quote expiration and reminder engines.
// This file centralizes the internal error taxonomy used by the engines.
//
// The engines never propagate errors to callers: every failure is captured in
// the Errors slice of the returned result as a human-readable string, and the
// scheduler/trigger layers log and alert on non-empty slices rather than
// branching on error kind. Internally each failure is tagged with its kind
// and the affected quote so the flattened strings stay consistent and a
// structured boundary can be added later without reshaping the engines.
package services

import "fmt"

// errKind classifies an engine failure.
type errKind string

const (
	// errFetch marks a failed store read (query/connectivity). A fetch
	// failure is terminal for that scan: no quotes were retrieved, so no
	// per-quote work is attempted.
	errFetch errKind = "fetch"

	// errWrite marks a failed per-quote write (status update, history or
	// activity append, marker insert). Isolated to the one quote.
	errWrite errKind = "write"

	// errSend marks a failed notifier call for one quote.
	errSend errKind = "send"

	// errPanic marks an unexpected panic recovered at an entry-point
	// boundary and converted into a single error entry.
	errPanic errKind = "panic"
)

// opError is one tagged engine failure. QuoteID is empty for fetch and panic
// failures, which are not attributable to a single quote.
type opError struct {
	Kind    errKind
	QuoteID string
	Err     error
}

// Error renders the failure as the human-readable string exposed in results,
// e.g. "write failed for quote 3f1c...: UNIQUE constraint failed".
func (e opError) Error() string {
	if e.Kind == errPanic {
		return fmt.Sprintf("unexpected panic: %v", e.Err)
	}
	if e.QuoteID == "" {
		return fmt.Sprintf("%s failed: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s failed for quote %s: %v", e.Kind, e.QuoteID, e.Err)
}
