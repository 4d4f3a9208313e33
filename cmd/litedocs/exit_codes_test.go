package main

// Notes:
// - exitCodeFor: we test the public sentinels of the root package, config
//   and sitebuild, plus wrapped errors to verify errors.Is() chain works.
// - hintFor: we test which errors carry a hint.
// - Exit code constants: we verify Unix conventions (0=success, 1=general, 2=usage)
//   and custom codes are below 126.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	jupyterlite "github.com/alnah/go-jupyterlite"
	"github.com/alnah/go-jupyterlite/internal/config"
	"github.com/alnah/go-jupyterlite/internal/sitebuild"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error to exit code mapping
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		// Success
		{"nil error", nil, ExitSuccess},

		// Resolution errors (exit 4)
		{"spec resolution", jupyterlite.ErrSpecResolution, ExitResolution},
		{"typed resolution", &jupyterlite.SpecResolutionError{Failures: []jupyterlite.ResolutionFailure{{Spec: "bad", Reason: "404"}}}, ExitResolution},
		{"wrapped resolution", fmt.Errorf("plugin jupyterlite: %w", jupyterlite.ErrSpecResolution), ExitResolution},

		// Usage/config/validation errors (exit 2)
		{"usage", errUsage, ExitUsage},
		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"empty config name", config.ErrEmptyConfigName, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"field too long", config.ErrFieldTooLong, ExitUsage},
		{"invalid field", config.ErrInvalidField, ExitUsage},
		{"unsafe site dir", sitebuild.ErrUnsafeSiteDir, ExitUsage},
		{"configuration", jupyterlite.ErrConfiguration, ExitUsage},
		{"notebook format", jupyterlite.ErrNotebookFormat, ExitUsage},
		{"name collision", jupyterlite.ErrNameCollision, ExitUsage},
		{"template load", jupyterlite.ErrTemplateLoad, ExitUsage},
		{"wrapped config not found", fmt.Errorf("loading config: %w", config.ErrConfigNotFound), ExitUsage},

		// I/O errors (exit 3)
		{"file not exist", os.ErrNotExist, ExitIO},
		{"permission denied", os.ErrPermission, ExitIO},
		{"wrapped file not exist", fmt.Errorf("writing index.html: %w", os.ErrNotExist), ExitIO},

		// General errors (exit 1)
		{"unknown error", errors.New("boom"), ExitGeneral},
		{"cancelled", context.Canceled, ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitCodeConstants(t *testing.T) {
	t.Parallel()

	if ExitSuccess != 0 || ExitGeneral != 1 || ExitUsage != 2 {
		t.Errorf("Unix conventions broken: success=%d general=%d usage=%d", ExitSuccess, ExitGeneral, ExitUsage)
	}
	for _, code := range []int{ExitIO, ExitResolution} {
		if code >= 126 {
			t.Errorf("custom exit code %d must be below 126", code)
		}
	}
}

// ---------------------------------------------------------------------------
// TestHintFor - Actionable hints
// ---------------------------------------------------------------------------

func TestHintFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want string // substring, "" = no hint
	}{
		{"resolution", jupyterlite.ErrSpecResolution, "on_failure: skip"},
		{"timeout", fmt.Errorf("build: %w", context.DeadlineExceeded), "--timeout"},
		{"config not found", config.ErrConfigNotFound, "--config"},
		{"template", jupyterlite.ErrTemplateLoad, "template_dir"},
		{"notebook", jupyterlite.ErrNotebookFormat, "nbformat 4"},
		{"permission", os.ErrPermission, "writable"},
		{"other", errors.New("boom"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := hintFor(tt.err)
			if tt.want == "" {
				if got != "" {
					t.Errorf("hintFor() = %q, want none", got)
				}
				return
			}
			if !strings.HasPrefix(got, "\n  hint: ") || !strings.Contains(got, tt.want) {
				t.Errorf("hintFor() = %q, want hint containing %q", got, tt.want)
			}
		})
	}
}
