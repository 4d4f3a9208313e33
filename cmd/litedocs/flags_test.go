package main

// Notes:
// - parseBuildFlags/parseServeFlags: we test defaults, short and long forms,
//   and rejection of bad values and positional arguments.
// - mergeFlags: we test that only set flags override.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	jupyterlite "github.com/alnah/go-jupyterlite"
	"github.com/alnah/go-jupyterlite/internal/config"
	"github.com/alnah/go-jupyterlite/internal/watch"
)

// ---------------------------------------------------------------------------
// TestParseBuildFlags - Build command flags
// ---------------------------------------------------------------------------

func TestParseBuildFlags(t *testing.T) {
	t.Parallel()

	t.Run("all flags", func(t *testing.T) {
		t.Parallel()

		var stderr bytes.Buffer
		got, err := parseBuildFlags([]string{
			"-c", "my.yml", "-q", "-d", "pages", "-o", "public",
			"--index-url", "https://mirror.example", "--on-failure", "skip",
			"-w", "4", "--clean", "-t", "90s",
		}, &stderr)
		if err != nil {
			t.Fatalf("parseBuildFlags() error = %v", err)
		}

		want := &buildFlags{
			common: commonFlags{config: "my.yml", quiet: true},
			site: siteFlags{
				docsDir:   "pages",
				siteDir:   "public",
				indexURL:  "https://mirror.example",
				onFailure: "skip",
				workers:   4,
			},
			clean:   true,
			timeout: 90 * time.Second,
		}
		if diff := cmp.Diff(want, got, cmp.AllowUnexported(buildFlags{}, commonFlags{}, siteFlags{})); diff != "" {
			t.Errorf("flags mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		got, err := parseBuildFlags(nil, &bytes.Buffer{})
		if err != nil {
			t.Fatalf("parseBuildFlags() error = %v", err)
		}
		if got.clean || got.timeout != 0 || got.common.config != "" {
			t.Errorf("unexpected defaults: %+v", got)
		}
	})

	t.Run("errors", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name string
			args []string
			want error
		}{
			{"help", []string{"-h"}, errHelp},
			{"unknown flag", []string{"--style", "dark"}, errUsage},
			{"bad int", []string{"-w", "many"}, errUsage},
			{"negative timeout", []string{"--timeout", "-1s"}, errUsage},
			{"positional", []string{"docs"}, errUsage},
		}
		for _, tt := range tests {
			var stderr bytes.Buffer
			_, err := parseBuildFlags(tt.args, &stderr)
			if !errors.Is(err, tt.want) {
				t.Errorf("%s: error = %v, want %v", tt.name, err, tt.want)
			}
		}
	})
}

// ---------------------------------------------------------------------------
// TestParseServeFlags - Serve command flags
// ---------------------------------------------------------------------------

func TestParseServeFlags(t *testing.T) {
	t.Parallel()

	got, err := parseServeFlags([]string{"-a", ":9000", "--delay", "1s", "-v"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseServeFlags() error = %v", err)
	}
	if got.addr != ":9000" || got.delay != time.Second || !got.common.verbose {
		t.Errorf("flags = %+v", got)
	}

	got, err = parseServeFlags(nil, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseServeFlags() error = %v", err)
	}
	if got.addr != "" || got.delay != watch.DefaultDelay {
		t.Errorf("defaults = addr %q, delay %v; want empty, %v", got.addr, got.delay, watch.DefaultDelay)
	}

	if _, err := parseServeFlags([]string{"--delay", "-5ms"}, &bytes.Buffer{}); !errors.Is(err, errUsage) {
		t.Errorf("negative delay error = %v, want errUsage", err)
	}
}

// ---------------------------------------------------------------------------
// TestMergeFlags - CLI wins
// ---------------------------------------------------------------------------

func TestMergeFlags(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{DocsDir: "docs", SiteDir: "site"}
	plugin := &jupyterlite.Config{IndexURL: "https://file.example", OnFailure: "fatal", Workers: 2}

	mergeFlags(&siteFlags{siteDir: "public", onFailure: "skip"}, cfg, plugin)

	if cfg.DocsDir != "docs" || cfg.SiteDir != "public" {
		t.Errorf("dirs = %q, %q; want docs, public", cfg.DocsDir, cfg.SiteDir)
	}
	want := &jupyterlite.Config{IndexURL: "https://file.example", OnFailure: "skip", Workers: 2}
	if diff := cmp.Diff(want, plugin); diff != "" {
		t.Errorf("plugin mismatch (-want +got):\n%s", diff)
	}

	// A nil plugin leaves site overrides working.
	mergeFlags(&siteFlags{docsDir: "pages", workers: 3}, cfg, nil)
	if cfg.DocsDir != "pages" {
		t.Errorf("DocsDir = %q, want pages", cfg.DocsDir)
	}
}
