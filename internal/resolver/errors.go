package resolver

import (
	"errors"
	"fmt"
)

// Sentinel errors for package resolution.
var (
	// ErrInvalidSpec indicates a specifier that cannot be parsed.
	ErrInvalidSpec = errors.New("invalid package specifier")

	// ErrUnsupportedConstraint indicates a version operator other than "==".
	ErrUnsupportedConstraint = errors.New("unsupported version constraint")

	// ErrNotFound indicates the index or URL has no such package or version.
	ErrNotFound = errors.New("package not found")

	// ErrNoCompatibleWheel indicates a release with no wheel the browser runtime can install.
	ErrNoCompatibleWheel = errors.New("no compatible wheel")

	// ErrIncompatible indicates a wheel whose tags target a native platform.
	ErrIncompatible = errors.New("incompatible wheel")

	// ErrInvalidWheel indicates bytes that are not a well-formed wheel archive.
	ErrInvalidWheel = errors.New("invalid wheel")

	// ErrMismatch indicates wheel metadata that disagrees with the requested spec.
	ErrMismatch = errors.New("wheel does not match specifier")

	// ErrTransient indicates a failure that exhausted its retries.
	ErrTransient = errors.New("transient fetch failure")
)

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.Code)
}

// Temporary reports whether the status is worth retrying.
func (e *StatusError) Temporary() bool {
	return e.Code == 429 || e.Code >= 500
}
