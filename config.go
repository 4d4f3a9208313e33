package jupyterlite

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/alnah/go-jupyterlite/internal/fileutil"
	"github.com/alnah/go-jupyterlite/internal/resolver"
	"github.com/alnah/go-jupyterlite/internal/yamlutil"
)

// Failure policies.
const (
	OnFailureFatal = "fatal"
	OnFailureSkip  = "skip"
)

// DefaultOutputDir is where the runtime is placed inside the site.
const DefaultOutputDir = "jupyterlite"

// Config is the plugin section of the site configuration.
type Config struct {
	Enabled           *bool       `yaml:"enabled"`
	Notebooks         []string    `yaml:"notebooks"`
	PipURLs           []string    `yaml:"pip_urls"`
	OutputDir         string      `yaml:"output_dir"`
	TemplateDir       string      `yaml:"template_dir"`       // prebuilt runtime tree, empty = embedded
	IndexURL          string      `yaml:"index_url"`          // PyPI-compatible JSON API
	SettingsOverrides string      `yaml:"settings_overrides"` // JSONC file, emitted as overrides.json
	OnFailure         string      `yaml:"on_failure"`         // fatal or skip
	Workers           int         `yaml:"workers"`            // 0 = auto
	Retry             RetryConfig `yaml:"retry"`
}

// RetryConfig controls retries of transient fetch failures.
type RetryConfig struct {
	Attempts int    `yaml:"attempts"`
	Backoff  string `yaml:"backoff"` // Go duration, e.g. "250ms"
}

// ParseConfig decodes a plugin section. Unknown keys are rejected.
// Empty input yields the defaults.
func ParseConfig(data []byte) (*Config, error) {
	cfg := &Config{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return cfg, nil
}

// IsEnabled reports whether the plugin runs. Unset means enabled.
func (c *Config) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// Output returns the output directory, defaulting to DefaultOutputDir.
func (c *Config) Output() string {
	if c.OutputDir == "" {
		return DefaultOutputDir
	}
	return path.Clean(strings.Trim(c.OutputDir, "/"))
}

// Policy returns the failure policy, defaulting to fatal.
func (c *Config) Policy() string {
	if c.OnFailure == "" {
		return OnFailureFatal
	}
	return strings.ToLower(c.OnFailure)
}

// RetryPolicy returns the resolver retry policy.
// Call Validate first; an unparsable backoff falls back to the default.
func (c *Config) RetryPolicy() resolver.RetryPolicy {
	p := resolver.DefaultRetryPolicy()
	if c.Retry.Attempts > 0 {
		p.MaxAttempts = c.Retry.Attempts
	}
	if d, err := time.ParseDuration(c.Retry.Backoff); err == nil && d > 0 {
		p.BaseBackoff = d
	}
	return p
}

// Specs parses PipURLs.
func (c *Config) Specs() ([]resolver.Spec, error) {
	specs, err := resolver.ParseSpecs(c.PipURLs)
	if err != nil {
		return nil, fmt.Errorf("%w: pip_urls: %v", ErrConfiguration, err)
	}
	return specs, nil
}

// Validate checks every field and reports all problems together.
// A disabled config is never an error.
func (c *Config) Validate() error {
	if !c.IsEnabled() {
		return nil
	}

	var errs []error

	out := strings.Trim(c.OutputDir, "/")
	if c.OutputDir != "" && (out == "" || !fileutil.IsSafeRelative(out) || path.Clean(out) == ".") {
		errs = append(errs, fmt.Errorf("output_dir: %q must be a relative path inside the site", c.OutputDir))
	}

	for i, nb := range c.Notebooks {
		if strings.TrimSpace(nb) == "" {
			errs = append(errs, fmt.Errorf("notebooks[%d]: empty pattern", i))
		}
	}
	if _, err := resolver.ParseSpecs(c.PipURLs); err != nil {
		errs = append(errs, fmt.Errorf("pip_urls: %v", err))
	}
	switch c.Policy() {
	case OnFailureFatal, OnFailureSkip:
	default:
		errs = append(errs, fmt.Errorf("on_failure: invalid value %q (must be fatal or skip)", c.OnFailure))
	}
	if c.IndexURL != "" && !fileutil.IsURL(c.IndexURL) {
		errs = append(errs, fmt.Errorf("index_url: %q is not an http(s) URL", c.IndexURL))
	}
	if c.Workers < 0 || c.Workers > resolver.MaxWorkers {
		errs = append(errs, fmt.Errorf("workers: must be between 0 and %d, got %d", resolver.MaxWorkers, c.Workers))
	}
	if c.Retry.Attempts < 0 {
		errs = append(errs, fmt.Errorf("retry.attempts: must not be negative, got %d", c.Retry.Attempts))
	}
	if c.Retry.Backoff != "" {
		if d, err := time.ParseDuration(c.Retry.Backoff); err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("retry.backoff: invalid duration %q", c.Retry.Backoff))
		}
	}

	return joinConfigErrors(errs)
}

func joinConfigErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrConfiguration, errors.Join(errs...))
}
