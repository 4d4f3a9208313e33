package site

import "errors"

var (
	// ErrDuplicateFile is returned when a path is already registered.
	ErrDuplicateFile = errors.New("file already registered")

	// ErrInvalidPath is returned for paths that are empty, absolute or escape the root.
	ErrInvalidPath = errors.New("invalid file path")
)
