// Package config loads the site configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-jupyterlite/internal/fileutil"
	"github.com/alnah/go-jupyterlite/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidField    = errors.New("invalid config field")
)

// DefaultName is the config name searched when none is given.
const DefaultName = "litedocs"

// Field length limits.
const (
	MaxSiteNameLength = 200
	MaxURLLength      = 2048 // Browser limit
	MaxDirLength      = 1024
	MaxStyleLength    = 50 // chroma style names are short
)

// Defaults.
const (
	DefaultDocsDir        = "docs"
	DefaultSiteDir        = "site"
	DefaultHighlightStyle = "github"
)

// Config is the site configuration, usually litedocs.yml.
type Config struct {
	SiteName         string         `yaml:"site_name"`
	SiteURL          string         `yaml:"site_url"`
	DocsDir          string         `yaml:"docs_dir"`
	SiteDir          string         `yaml:"site_dir"`
	UseDirectoryURLs *bool          `yaml:"use_directory_urls"`
	HighlightStyle   string         `yaml:"highlight_style"` // chroma style name
	Plugins          map[string]any `yaml:"plugins"`         // keyed by plugin name

	// Path is the file the config was read from. Empty for DefaultConfig.
	Path string `yaml:"-"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		DocsDir:        DefaultDocsDir,
		SiteDir:        DefaultSiteDir,
		HighlightStyle: DefaultHighlightStyle,
	}
}

// applyDefaults fills empty fields.
func (c *Config) applyDefaults() {
	if c.DocsDir == "" {
		c.DocsDir = DefaultDocsDir
	}
	if c.SiteDir == "" {
		c.SiteDir = DefaultSiteDir
	}
	if c.HighlightStyle == "" {
		c.HighlightStyle = DefaultHighlightStyle
	}
}

// DirectoryURLs reports whether pages get directory URLs. Unset means true.
func (c *Config) DirectoryURLs() bool {
	return c.UseDirectoryURLs == nil || *c.UseDirectoryURLs
}

// Dir returns the directory relative paths are resolved against.
func (c *Config) Dir() string {
	if c.Path == "" {
		return "."
	}
	return filepath.Dir(c.Path)
}

// Resolve returns p relative to the config directory, made absolute.
func (c *Config) Resolve(p string) (string, error) {
	if !filepath.IsAbs(p) {
		p = filepath.Join(c.Dir(), p)
	}
	return filepath.Abs(p)
}

// Plugin returns the YAML of the named plugin section.
// ok is false when the section is absent.
func (c *Config) Plugin(name string) (data []byte, ok bool, err error) {
	section, ok := c.Plugins[name]
	if !ok {
		return nil, false, nil
	}
	if section == nil {
		return nil, true, nil
	}
	data, err = yamlutil.Marshal(section)
	if err != nil {
		return nil, true, fmt.Errorf("%w: plugins.%s: %v", ErrConfigParse, name, err)
	}
	return data, true, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := validateFieldLength("site_name", c.SiteName, MaxSiteNameLength); err != nil {
		return err
	}
	if err := validateFieldLength("site_url", c.SiteURL, MaxURLLength); err != nil {
		return err
	}
	if c.SiteURL != "" && !fileutil.IsURL(c.SiteURL) {
		return fmt.Errorf("%w: site_url: %q is not an http(s) URL", ErrInvalidField, c.SiteURL)
	}
	if err := validateFieldLength("docs_dir", c.DocsDir, MaxDirLength); err != nil {
		return err
	}
	if err := validateFieldLength("site_dir", c.SiteDir, MaxDirLength); err != nil {
		return err
	}
	if err := validateFieldLength("highlight_style", c.HighlightStyle, MaxStyleLength); err != nil {
		return err
	}
	if c.DocsDir != "" && c.SiteDir != "" && filepath.Clean(c.DocsDir) == filepath.Clean(c.SiteDir) {
		return fmt.Errorf("%w: docs_dir and site_dir must differ (both %q)", ErrInvalidField, c.DocsDir)
	}
	for name, section := range c.Plugins {
		if section == nil {
			continue
		}
		if _, ok := section.(map[string]any); !ok {
			return fmt.Errorf("%w: plugins.%s must be a mapping", ErrInvalidField, name)
		}
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// Parse decodes a configuration, rejecting unknown keys, applies defaults
// and validates it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator or a YAML extension, it's treated
// as a file path. Otherwise, it's treated as a config name and searched in
// standard locations. Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	cfg.Path = configPath
	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\") || strings.HasSuffix(s, ".yml") || strings.HasSuffix(s, ".yaml")
}

// SearchPaths lists where a config name is looked up, in order:
// current directory then the user config directory, .yml before .yaml.
func SearchPaths(name string) []string {
	extensions := []string{".yml", ".yaml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, "litedocs", name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing file of SearchPaths.
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
