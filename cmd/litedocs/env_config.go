package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	jupyterlite "github.com/alnah/go-jupyterlite"
	"github.com/alnah/go-jupyterlite/internal/config"
)

// envPrefix starts every recognized variable.
const envPrefix = "LITEDOCS_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without editing litedocs.yml.
type envConfig struct {
	// Site
	ConfigPath string        // LITEDOCS_CONFIG: config file name or path
	DocsDir    string        // LITEDOCS_DOCS_DIR: docs directory
	SiteDir    string        // LITEDOCS_SITE_DIR: output directory
	Timeout    time.Duration // LITEDOCS_TIMEOUT: whole build timeout

	// Notebook runtime
	IndexURL  string // LITEDOCS_INDEX_URL: package index mirror
	OnFailure string // LITEDOCS_ON_FAILURE: fatal or skip
	Workers   int    // LITEDOCS_WORKERS: parallel downloads

	// Dev server
	Addr string // LITEDOCS_ADDR: listen address
}

// knownEnvVars lists valid LITEDOCS_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"LITEDOCS_CONFIG":     true,
	"LITEDOCS_DOCS_DIR":   true,
	"LITEDOCS_SITE_DIR":   true,
	"LITEDOCS_TIMEOUT":    true,
	"LITEDOCS_INDEX_URL":  true,
	"LITEDOCS_ON_FAILURE": true,
	"LITEDOCS_WORKERS":    true,
	"LITEDOCS_ADDR":       true,
}

// loadEnvConfig reads configuration from environment variables.
// Malformed numbers and durations are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("LITEDOCS_CONFIG"),
		DocsDir:    os.Getenv("LITEDOCS_DOCS_DIR"),
		SiteDir:    os.Getenv("LITEDOCS_SITE_DIR"),
		IndexURL:   os.Getenv("LITEDOCS_INDEX_URL"),
		OnFailure:  os.Getenv("LITEDOCS_ON_FAILURE"),
		Addr:       os.Getenv("LITEDOCS_ADDR"),
	}

	if timeout := os.Getenv("LITEDOCS_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := os.Getenv("LITEDOCS_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized LITEDOCS_* variables.
// Helps catch typos like LITEDOCS_INDEX instead of LITEDOCS_INDEX_URL.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, envPrefix) {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies set environment values over the config file.
// Precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags).
// plugin may be nil when the site does not enable the notebook runtime.
func applyEnvConfig(env *envConfig, cfg *config.Config, plugin *jupyterlite.Config) {
	if env.DocsDir != "" {
		cfg.DocsDir = env.DocsDir
	}
	if env.SiteDir != "" {
		cfg.SiteDir = env.SiteDir
	}

	if plugin == nil {
		return
	}
	if env.IndexURL != "" {
		plugin.IndexURL = env.IndexURL
	}
	if env.OnFailure != "" {
		plugin.OnFailure = env.OnFailure
	}
	if env.Workers > 0 {
		plugin.Workers = env.Workers
	}
}
