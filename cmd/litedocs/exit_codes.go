package main

import (
	"context"
	"errors"
	"os"

	jupyterlite "github.com/alnah/go-jupyterlite"
	"github.com/alnah/go-jupyterlite/internal/config"
	"github.com/alnah/go-jupyterlite/internal/hints"
	"github.com/alnah/go-jupyterlite/internal/sitebuild"
)

// Exit codes for the litedocs CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess    = 0 // Site built or server stopped cleanly
	ExitGeneral    = 1 // General/unexpected error
	ExitUsage      = 2 // Invalid flags, config, notebooks or template
	ExitIO         = 3 // File not found, permission denied
	ExitResolution = 4 // Package index or wheel download failures
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Resolution errors (exit 4)
	if errors.Is(err, jupyterlite.ErrSpecResolution) {
		return ExitResolution
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, errUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidField) ||
		errors.Is(err, sitebuild.ErrUnsafeSiteDir) ||
		errors.Is(err, jupyterlite.ErrConfiguration) ||
		errors.Is(err, jupyterlite.ErrNotebookFormat) ||
		errors.Is(err, jupyterlite.ErrNameCollision) ||
		errors.Is(err, jupyterlite.ErrTemplateLoad) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) {
		return ExitIO
	}

	return ExitGeneral
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, jupyterlite.ErrSpecResolution):
		return hints.ForResolution()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(config.SearchPaths(config.DefaultName))
	case errors.Is(err, jupyterlite.ErrTemplateLoad):
		return hints.ForTemplate()
	case errors.Is(err, jupyterlite.ErrNotebookFormat):
		return hints.ForNotebook()
	case errors.Is(err, os.ErrPermission):
		return hints.ForOutputDirectory()
	}
	return ""
}
