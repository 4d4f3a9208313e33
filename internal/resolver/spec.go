package resolver

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Kind classifies how a specifier locates its artifact.
type Kind int

const (
	// KindPinned is "name==version".
	KindPinned Kind = iota
	// KindLatest is a bare project name.
	KindLatest
	// KindURL is an http(s) URL to a .whl file.
	KindURL
	// KindLocal is a file:// URL or filesystem path to a .whl file.
	KindLocal
)

func (k Kind) String() string {
	switch k {
	case KindPinned:
		return "pinned"
	case KindLatest:
		return "latest"
	case KindURL:
		return "url"
	case KindLocal:
		return "local"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Spec is a parsed package specifier. Immutable after ParseSpec.
type Spec struct {
	Raw      string
	Kind     Kind
	Name     string // project name as written, empty for URL/local until resolved
	Version  string // pinned version, empty otherwise
	Location string // URL or filesystem path for KindURL/KindLocal
}

func (s Spec) String() string { return s.Raw }

var (
	namePattern    = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9._-]*[A-Za-z0-9])?$`)
	versionPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9.+!_-]*$`)
	normalizeRun   = regexp.MustCompile(`[-_.]+`)
)

// otherOperators are PEP 440 comparison operators this resolver rejects.
var otherOperators = []string{"===", "~=", "!=", ">=", "<=", ">", "<"}

// ParseSpec parses one user-supplied specifier.
func ParseSpec(raw string) (Spec, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Spec{}, fmt.Errorf("%w: empty specifier", ErrInvalidSpec)
	}

	switch {
	case strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://"):
		u, err := url.Parse(s)
		if err != nil || u.Host == "" {
			return Spec{}, fmt.Errorf("%w: %q: malformed URL", ErrInvalidSpec, raw)
		}
		if !strings.HasSuffix(u.Path, ".whl") {
			return Spec{}, fmt.Errorf("%w: %q: URL must point to a .whl file", ErrInvalidSpec, raw)
		}
		return Spec{Raw: s, Kind: KindURL, Location: s}, nil

	case strings.HasPrefix(s, "file://"):
		u, err := url.Parse(s)
		if err != nil || !strings.HasSuffix(u.Path, ".whl") {
			return Spec{}, fmt.Errorf("%w: %q: file URL must point to a .whl file", ErrInvalidSpec, raw)
		}
		return Spec{Raw: s, Kind: KindLocal, Location: u.Path}, nil

	case strings.HasSuffix(s, ".whl"):
		return Spec{Raw: s, Kind: KindLocal, Location: s}, nil
	}

	name, version, pinned := strings.Cut(s, "==")
	name = strings.TrimSpace(name)
	version = strings.TrimSpace(version)

	if !pinned {
		for _, op := range otherOperators {
			if strings.Contains(s, op) {
				return Spec{}, fmt.Errorf("%w: %q: only name==version or a bare name is supported", ErrUnsupportedConstraint, raw)
			}
		}
	}
	if strings.ContainsAny(name, "[];@ ") || !namePattern.MatchString(name) {
		return Spec{}, fmt.Errorf("%w: %q: invalid project name", ErrInvalidSpec, raw)
	}
	if !pinned {
		return Spec{Raw: s, Kind: KindLatest, Name: name}, nil
	}
	if strings.Contains(version, "*") || strings.Contains(version, "=") || strings.Contains(version, ",") {
		return Spec{}, fmt.Errorf("%w: %q: only exact versions are supported", ErrUnsupportedConstraint, raw)
	}
	if !versionPattern.MatchString(version) {
		return Spec{}, fmt.Errorf("%w: %q: invalid version", ErrInvalidSpec, raw)
	}
	return Spec{Raw: s, Kind: KindPinned, Name: name, Version: version}, nil
}

// ParseSpecs parses every specifier and reports all failures together.
func ParseSpecs(raws []string) ([]Spec, error) {
	specs := make([]Spec, 0, len(raws))
	var errs []error
	for _, raw := range raws {
		spec, err := ParseSpec(raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		specs = append(specs, spec)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return specs, nil
}

// NormalizeName applies PEP 503 normalization.
func NormalizeName(name string) string {
	return strings.ToLower(normalizeRun.ReplaceAllString(name, "-"))
}

// escapeName is the wheel-filename form of a project name.
func escapeName(name string) string {
	return strings.ToLower(normalizeRun.ReplaceAllString(name, "_"))
}
