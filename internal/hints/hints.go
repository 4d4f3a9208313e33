// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"
)

// ForResolution returns hints for package resolution failures.
// Detects proxy settings and suggests index and policy overrides.
func ForResolution() string {
	var hints []string

	if os.Getenv("HTTPS_PROXY") == "" && os.Getenv("https_proxy") == "" {
		hints = append(hints, "behind a proxy, set HTTPS_PROXY")
	}
	if os.Getenv("LITEDOCS_INDEX_URL") == "" {
		hints = append(hints, "set LITEDOCS_INDEX_URL to use a mirror")
	}
	hints = append(hints, "set on_failure: skip to build without failed packages")

	return formatHints(hints)
}

// ForTimeout returns a hint about increasing timeout for slow operations.
func ForTimeout() string {
	return format("for slow indexes, use --timeout flag")
}

// ForConfigNotFound returns hints for config file not found errors.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/litedocs.yml"
	if len(searchedPaths) > 0 {
		hint += " (searched " + strings.Join(searchedPaths, ", ") + ")"
	}
	return format(hint)
}

// ForTemplate returns hints for runtime template load errors.
func ForTemplate() string {
	return format("template_dir must point at a built JupyterLite site containing index.html")
}

// ForNotebook returns hints for malformed notebooks.
func ForNotebook() string {
	return format("notebooks must be nbformat 4 JSON; re-save them from Jupyter")
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
