package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent error conditions in the docsave domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrNotInitialized is returned when a save is requested before Init()
	// has completed.
	ErrNotInitialized = errors.New("docsave: not initialized")

	// ErrAlreadyInitialized is returned when Init() is called twice.
	ErrAlreadyInitialized = errors.New("docsave: already initialized")

	// ErrSaverFailed is returned when the saver is in the Failed state; no
	// saves are accepted until the saver is re-initialized.
	ErrSaverFailed = errors.New("docsave: saver failed")

	// ErrDestroyed is returned when an operation is attempted after Destroy().
	ErrDestroyed = errors.New("docsave: saver destroyed")

	// ErrStaleCommit signals a commit for a generation that does not advance
	// the committed one. It indicates a broken single-writer discipline and
	// is surfaced, never swallowed.
	ErrStaleCommit = errors.New("docsave: stale commit")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("docsave: invalid configuration")
)

// FailureKind classifies save and recovery failures. Backends translate raw
// transport errors into this taxonomy at their boundary; the orchestrator
// never inspects transport errors directly.
type FailureKind int

const (
	FailureNone FailureKind = iota

	// FailureInitialization puts the saver in the Failed state until
	// re-initialized.
	FailureInitialization

	// FailureConflict means the store holds a newer generation than the
	// client believes. Recoverable through the recovery protocol.
	FailureConflict

	// FailureConnectivity is a transient transport failure. The orchestrator
	// does not retry on its own; the next save request retries.
	FailureConnectivity

	// FailureRejected means the store refused the save for a non-conflict,
	// non-transport reason (authorization, payload, quota).
	FailureRejected

	// FailureRecovery means recovery itself failed; the saver is Failed
	// until re-initialized.
	FailureRecovery

	// FailureStaleCommit is the assertion-style signal for ErrStaleCommit.
	FailureStaleCommit
)

// String returns a human-readable representation of the failure kind.
func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "None"
	case FailureInitialization:
		return "Initialization"
	case FailureConflict:
		return "Conflict"
	case FailureConnectivity:
		return "Connectivity"
	case FailureRejected:
		return "Rejected"
	case FailureRecovery:
		return "Recovery"
	case FailureStaleCommit:
		return "StaleCommit"
	default:
		return "Unknown"
	}
}

// SaveError is the error type backends return from Save. It carries the
// failure classification alongside the underlying cause.
type SaveError struct {
	Kind FailureKind
	Err  error
}

// Error implements the error interface.
func (e *SaveError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("docsave: save failed (%s)", e.Kind)
	}
	return fmt.Sprintf("docsave: save failed (%s): %v", e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *SaveError) Unwrap() error { return e.Err }

// Conflict wraps err as a conflict failure.
func Conflict(err error) *SaveError {
	return &SaveError{Kind: FailureConflict, Err: err}
}

// Connectivity wraps err as a transient transport failure.
func Connectivity(err error) *SaveError {
	return &SaveError{Kind: FailureConnectivity, Err: err}
}

// Rejected wraps err as a non-recoverable store rejection.
func Rejected(err error) *SaveError {
	return &SaveError{Kind: FailureRejected, Err: err}
}

// Classify extracts the failure kind from an error returned by a backend.
// Errors that are not SaveError values classify as connectivity failures,
// matching the most conservative retry behavior.
func Classify(err error) FailureKind {
	if err == nil {
		return FailureNone
	}
	var se *SaveError
	if errors.As(err, &se) {
		return se.Kind
	}
	return FailureConnectivity
}
