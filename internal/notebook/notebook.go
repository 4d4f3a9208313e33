// Package notebook collects and validates Jupyter notebooks for a site build.
package notebook

import (
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
)

const (
	// Extension is the notebook file suffix.
	Extension = ".ipynb"

	// ContentType is the media type recorded for notebooks in the manifest.
	ContentType = "application/x-ipynb+json"

	// MinFormat is the oldest nbformat major version accepted.
	MinFormat = 4
)

// Source is a validated notebook. Raw is kept verbatim.
type Source struct {
	Origin      string // slash path relative to the collector root
	LogicalName string // slash path without extension, unique per build
	Raw         []byte
}

// Path returns the notebook's location inside the runtime tree.
func (s *Source) Path() string {
	return path.Join("notebooks", s.LogicalName+Extension)
}

// document is the subset of nbformat checked during validation.
type document struct {
	Cells    json.RawMessage `json:"cells"`
	Metadata json.RawMessage `json:"metadata"`
	NBFormat json.RawMessage `json:"nbformat"`
}

type cell struct {
	CellType string          `json:"cell_type"`
	Source   json.RawMessage `json:"source"`
}

// Validate checks that raw is an nbformat 4+ document.
func Validate(origin string, raw []byte) error {
	fail := func(format string, args ...any) error {
		return &FormatError{Origin: origin, Reason: fmt.Sprintf(format, args...)}
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fail("not a JSON object: %v", err)
	}

	if len(doc.Cells) == 0 || doc.Cells[0] != '[' {
		return fail("missing cells array")
	}
	var cells []json.RawMessage
	if err := json.Unmarshal(doc.Cells, &cells); err != nil {
		return fail("malformed cells: %v", err)
	}

	if len(doc.Metadata) == 0 || doc.Metadata[0] != '{' {
		return fail("missing metadata object")
	}

	var major int
	if len(doc.NBFormat) == 0 || json.Unmarshal(doc.NBFormat, &major) != nil {
		return fail("missing integer nbformat")
	}
	if major < MinFormat {
		return fail("nbformat %d is older than %d", major, MinFormat)
	}

	return nil
}

// Imports lists the top-level modules a notebook's code cells import or
// install with %pip. Names are sorted and unique.
func (s *Source) Imports() []string {
	var doc struct {
		Cells []cell `json:"cells"`
	}
	if err := json.Unmarshal(s.Raw, &doc); err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	for _, c := range doc.Cells {
		if c.CellType != "code" {
			continue
		}
		for _, line := range strings.Split(cellText(c.Source), "\n") {
			for _, name := range importsFromLine(line) {
				seen[name] = struct{}{}
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// cellText joins a cell source, which nbformat stores as a string or a list of lines.
func cellText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var lines []string
	if err := json.Unmarshal(raw, &lines); err == nil {
		return strings.Join(lines, "")
	}
	return ""
}

func importsFromLine(line string) []string {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return nil
	}

	switch fields[0] {
	case "import":
		var names []string
		for _, part := range strings.Split(strings.Join(fields[1:], " "), ",") {
			mod := strings.Fields(part)
			if len(mod) > 0 {
				names = append(names, topLevel(mod[0]))
			}
		}
		return names
	case "from":
		if strings.HasPrefix(fields[1], ".") {
			return nil
		}
		return []string{topLevel(fields[1])}
	case "%pip", "!pip", "%pip3", "!pip3":
		if fields[1] != "install" {
			return nil
		}
		var names []string
		for _, arg := range fields[2:] {
			if strings.HasPrefix(arg, "-") {
				continue
			}
			names = append(names, requirementName(arg))
		}
		return names
	}
	return nil
}

func topLevel(module string) string {
	name, _, _ := strings.Cut(module, ".")
	return name
}

// requirementName strips version constraints and extras from a pip argument.
func requirementName(arg string) string {
	if i := strings.IndexAny(arg, "=<>~![;@ "); i >= 0 {
		arg = arg[:i]
	}
	return strings.Trim(arg, `"'`)
}
