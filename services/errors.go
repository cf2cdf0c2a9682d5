// backend/services/errors.go
package services

import "fmt"

// The pipeline distinguishes four failure classes. Transport failures are
// per-item and recoverable: the item is skipped and the run report gains a
// warning. Validation input failures are surfaced to the caller with no
// state mutated. Integrity violations (duplicate version pair) are no-ops,
// handled at the store layer via database.ErrDuplicate. Storage failures
// abort the current step and halt the run.

// TransportError marks a retrieval or classification call that failed to
// complete (network error, timeout, bad status).
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ValidationInputError marks a review decision submitted with missing or
// invalid required fields.
type ValidationInputError struct {
	Reason string
}

func (e *ValidationInputError) Error() string { return e.Reason }

// FatalStorageError marks a persistence failure that prevents a step from
// making any further progress.
type FatalStorageError struct {
	Op  string
	Err error
}

func (e *FatalStorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FatalStorageError) Unwrap() error { return e.Err }
