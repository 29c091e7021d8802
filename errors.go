package cryptex

import (
	"errors"
	"fmt"
)

// Sentinel errors returned (wrapped in *Error) by the registry, the engine,
// and call guards. Match with errors.Is.
var (
	// ErrPatternNotFound reports a declared secret category with no
	// registered pattern. It surfaces at guard validation or call setup,
	// always before the wrapped function runs.
	ErrPatternNotFound = errors.New("pattern not found")

	// ErrInvalidPattern reports a detection regex that does not compile.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrInvalidPlaceholder reports an empty placeholder.
	ErrInvalidPlaceholder = errors.New("invalid placeholder")

	// ErrInvalidName reports a pattern name outside the accepted form
	// (lowercase snake_case, letter first, at most 64 characters).
	ErrInvalidName = errors.New("invalid pattern name")

	// ErrDuplicatePattern reports registration of a name that already
	// exists. Use Override to replace an existing pattern.
	ErrDuplicatePattern = errors.New("pattern already registered")

	// ErrContextNotFound reports a sanitization context that was never
	// created, expired, or was evicted.
	ErrContextNotFound = errors.New("sanitization context not found")

	// ErrEngineClosed reports use of an engine after Close.
	ErrEngineClosed = errors.New("engine closed")

	// ErrNoMatch reports a declared pattern that matched none of the call
	// arguments while the guard required full coverage.
	ErrNoMatch = errors.New("declared pattern matched no argument")
)

// Error is the base type for every error returned by this library. Callers
// can single out specific failures with errors.Is against the sentinels
// above, or catch any library failure with errors.As:
//
//	var cerr *cryptex.Error
//	if errors.As(err, &cerr) { ... }
type Error struct {
	Op   string // failing operation, e.g. "register" or "sanitize"
	Name string // pattern name or context ID, when known
	Err  error  // underlying cause
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("cryptex: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("cryptex: %s %s: %v", e.Op, e.Name, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }
