package notebook

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for notebook collection.
var (
	ErrFormat         = errors.New("invalid notebook format")
	ErrNameCollision  = errors.New("notebook name collision")
	ErrNotFound       = errors.New("notebook not found")
	ErrInvalidPattern = errors.New("invalid notebook pattern")
)

// FormatError reports a source whose content is not an nbformat document.
type FormatError struct {
	Origin string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrFormat, e.Origin, e.Reason)
}

func (e *FormatError) Unwrap() error { return ErrFormat }

// CollisionError reports distinct origins mapping to one logical name.
type CollisionError struct {
	Name    string
	Origins []string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("%s: %q claimed by %s", ErrNameCollision, e.Name, strings.Join(e.Origins, " and "))
}

func (e *CollisionError) Unwrap() error { return ErrNameCollision }
