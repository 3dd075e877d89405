// Package errs defines the error-kind taxonomy shared across the indexer
// core. Kinds satisfy the error interface directly so callers can use
// errors.Is(err, errs.NotFound) without a sentinel per package.
package errs

// Kind identifies a category of error. Kinds support errors.Is/errors.As
// through the standard error interface.
type Kind string

const (
	// NotFound is returned when a requested row or entity does not exist.
	NotFound = Kind("not found")
	// InvalidArgument is returned when caller-supplied input fails validation.
	InvalidArgument = Kind("invalid argument")
	// Unsupported is returned when a configured option has no implementation.
	Unsupported = Kind("unsupported")
	// Conflict is returned when a write would violate a uniqueness or state invariant.
	Conflict = Kind("conflict")
	// Internal marks a fatal, non-retryable condition: schema mismatch or
	// a rollback request for an unknown height.
	Internal = Kind("internal error")
	// InvariantViolation marks a fatal condition where the ledger's own
	// invariants no longer hold — e.g. a row the Engine just read has
	// disappeared by the time it writes. Always a bug, never retryable.
	InvariantViolation = Kind("invariant violation")
	// Transient marks a retryable store error: deadlock, connection loss.
	Transient = Kind("transient store error")
)

// Error implements the error interface.
func (k Kind) Error() string {
	return string(k)
}
