package jupyterlite

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alnah/go-jupyterlite/internal/assemble"
	"github.com/alnah/go-jupyterlite/internal/assets"
	"github.com/alnah/go-jupyterlite/internal/notebook"
	"github.com/alnah/go-jupyterlite/internal/pipeline"
	"github.com/alnah/go-jupyterlite/internal/resolver"
	"github.com/alnah/go-jupyterlite/site"
)

// Sentinel errors for plugin operations.
var (
	ErrSpecResolution    = errors.New("package resolution failed")
	ErrNotebookFormat    = errors.New("invalid notebook")
	ErrNameCollision     = errors.New("name collision")
	ErrTemplateLoad      = errors.New("runtime template load failed")
	ErrConfiguration     = errors.New("invalid configuration")
	ErrInvalidTransition = errors.New("build event out of order")
)

// ResolutionFailure records one specifier that could not be resolved.
type ResolutionFailure struct {
	Spec   string
	Reason string
}

// SpecResolutionError lists every specifier that failed in one build.
type SpecResolutionError struct {
	Failures []ResolutionFailure
}

func (e *SpecResolutionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d specifier(s)", ErrSpecResolution, len(e.Failures))
	for _, f := range e.Failures {
		fmt.Fprintf(&b, "\n  %s: %s", f.Spec, f.Reason)
	}
	return b.String()
}

func (e *SpecResolutionError) Unwrap() error { return ErrSpecResolution }

// Specs returns the failed specifiers in input order.
func (e *SpecResolutionError) Specs() []string {
	out := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f.Spec
	}
	return out
}

func newSpecResolutionError(failures []resolver.Failure) *SpecResolutionError {
	e := &SpecResolutionError{Failures: make([]ResolutionFailure, len(failures))}
	for i, f := range failures {
		e.Failures[i] = ResolutionFailure{Spec: f.Spec.Raw, Reason: f.Err.Error()}
	}
	return e
}

// convertError maps internal errors to public sentinels.
func convertError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case isError(err, resolver.ErrInvalidSpec),
		isError(err, resolver.ErrUnsupportedConstraint),
		isError(err, notebook.ErrInvalidPattern),
		isError(err, notebook.ErrNotFound),
		isError(err, assemble.ErrSettings),
		isError(err, pipeline.ErrEmbedSyntax),
		isError(err, pipeline.ErrFrontMatter):
		return wrapError(ErrConfiguration, err)
	case isError(err, notebook.ErrFormat):
		return wrapError(ErrNotebookFormat, err)
	case isError(err, notebook.ErrNameCollision),
		isError(err, assemble.ErrNameCollision),
		isError(err, site.ErrDuplicateFile):
		return wrapError(ErrNameCollision, err)
	case isError(err, assemble.ErrTemplateLoad),
		isError(err, assets.ErrTemplateNotFound),
		isError(err, assets.ErrInvalidTemplate),
		isError(err, assets.ErrInvalidBasePath),
		isError(err, assets.ErrPathTraversal),
		isError(err, assets.ErrScriptNotFound),
		isError(err, assets.ErrAssetRead):
		return wrapError(ErrTemplateLoad, err)
	default:
		return err
	}
}

// isError checks if err wraps or equals target using errors.Is semantics.
func isError(err, target error) bool {
	return errors.Is(err, target)
}

// wrapError creates a new error that wraps the original with a public sentinel.
// The resulting error preserves the original message via Error() and supports
// errors.Is() matching against the public sentinel via Unwrap().
func wrapError(sentinel, original error) error {
	return &wrappedError{sentinel: sentinel, original: original}
}

type wrappedError struct {
	sentinel error
	original error
}

func (e *wrappedError) Error() string {
	return e.original.Error()
}

// Unwrap returns the public sentinel for errors.Is() matching.
// Internal errors are not exposed since they're in internal/ packages.
func (e *wrappedError) Unwrap() error {
	return e.sentinel
}
