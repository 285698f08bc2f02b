package sbn

import (
	"errors"
	"fmt"
)

var (
	// ErrNoTreesLoaded is returned when an operation requires loaded
	// topologies and none are present.
	ErrNoTreesLoaded = errors.New("sbn: no topologies loaded")

	// ErrMapsNotAvailable is returned when an operation requires the
	// subsplit maps and ProcessLoadedTrees has not been called.
	ErrMapsNotAvailable = errors.New("sbn: subsplit maps not built, call ProcessLoadedTrees first")

	// ErrMapsStale is returned when topologies were loaded after the subsplit
	// maps were built, so the maps no longer cover the full collection.
	ErrMapsStale = errors.New("sbn: subsplit maps are stale, call ProcessLoadedTrees again")
)

// ErrTaxonCountMismatch indicates a topology over a different taxon set
// than the one the instance was built over.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrTaxonCountMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrTaxonCountMismatch) Error() string {
	return fmt.Sprintf("sbn: taxon count mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrTaxonCountMismatch) Unwrap() error { return e.cause }

// RangeError indicates an empty or out-of-bounds sampling range. It is an
// internal invariant violation rather than bad input: the caller should not
// retry.
type RangeError struct {
	Start int
	End   int
	Len   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("sbn: invalid sample range [%d,%d) over %d parameters", e.Start, e.End, e.Len)
}
