package notebook

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
)

// Collector reads notebooks from a filesystem rooted at the site config directory.
type Collector struct {
	fsys   fs.FS
	logger *zap.Logger
}

// Option configures a Collector.
type Option func(*Collector)

// WithLogger sets the logger used for per-notebook debug output.
func WithLogger(l *zap.Logger) Option {
	return func(c *Collector) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCollector creates a Collector over fsys.
func NewCollector(fsys fs.FS, opts ...Option) *Collector {
	c := &Collector{fsys: fsys, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// match is one file selected by a pattern.
type match struct {
	origin  string
	logical string
}

// Collect expands patterns, validates every match and assigns logical names.
// Results follow pattern order, then lexical order within a glob. Every error
// found during the pass is returned joined; no partial result is returned.
func (c *Collector) Collect(patterns []string) ([]*Source, error) {
	var (
		errs    []error
		matches []match
	)

	for _, pattern := range patterns {
		found, err := c.expand(pattern)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		matches = append(matches, found...)
	}

	byOrigin := make(map[string]bool)
	byName := make(map[string]string)
	var sources []*Source

	for _, m := range matches {
		if byOrigin[m.origin] {
			continue
		}
		byOrigin[m.origin] = true

		if prev, ok := byName[m.logical]; ok {
			errs = append(errs, &CollisionError{Name: m.logical, Origins: []string{prev, m.origin}})
			continue
		}
		byName[m.logical] = m.origin

		raw, err := fs.ReadFile(c.fsys, m.origin)
		if err != nil {
			errs = append(errs, fmt.Errorf("reading notebook %s: %w", m.origin, err))
			continue
		}
		if err := Validate(m.origin, raw); err != nil {
			errs = append(errs, err)
			continue
		}

		c.logger.Debug("collected notebook",
			zap.String("origin", m.origin),
			zap.String("name", m.logical),
			zap.Int("bytes", len(raw)))
		sources = append(sources, &Source{Origin: m.origin, LogicalName: m.logical, Raw: raw})
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return sources, nil
}

// expand resolves one pattern to matches with logical names relative to the
// pattern's static base directory.
func (c *Collector) expand(pattern string) ([]match, error) {
	clean, err := cleanPattern(pattern)
	if err != nil {
		return nil, err
	}

	base, _ := doublestar.SplitPattern(clean)

	if !hasMeta(clean) {
		info, err := fs.Stat(c.fsys, clean)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, pattern)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%w: %s is a directory", ErrInvalidPattern, pattern)
		}
		return []match{{origin: clean, logical: logicalName(base, clean)}}, nil
	}

	names, err := doublestar.Glob(c.fsys, clean, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPattern, pattern, err)
	}
	sort.Strings(names)

	found := make([]match, 0, len(names))
	for _, name := range names {
		if !strings.HasSuffix(name, Extension) {
			continue
		}
		found = append(found, match{origin: name, logical: logicalName(base, name)})
	}
	if len(found) == 0 {
		c.logger.Warn("notebook pattern matched nothing", zap.String("pattern", pattern))
	}
	return found, nil
}

func cleanPattern(pattern string) (string, error) {
	if pattern == "" {
		return "", fmt.Errorf("%w: empty pattern", ErrInvalidPattern)
	}
	clean := path.Clean(strings.TrimPrefix(pattern, "./"))
	if !fs.ValidPath(clean) || clean == "." {
		return "", fmt.Errorf("%w: %q must be relative and stay inside the site directory", ErrInvalidPattern, pattern)
	}
	if !doublestar.ValidatePattern(clean) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
	}
	return clean, nil
}

func hasMeta(p string) bool {
	return strings.ContainsAny(p, "*?[{")
}

func logicalName(base, name string) string {
	rel := name
	if base != "." && base != "" {
		rel = strings.TrimPrefix(name, base+"/")
	}
	return strings.TrimSuffix(rel, Extension)
}
