package resolver

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/zip"
)

// maxMetadataSize bounds the dist-info files read from an archive.
const maxMetadataSize = 1 << 20

// WheelInfo is the identity read from a wheel's dist-info.
type WheelInfo struct {
	Name    string
	Version string
	Tags    []string
}

// InspectWheel opens data as a wheel archive and reads its dist-info.
// Non-zip bytes, a missing WHEEL or METADATA file, and wheels with no
// browser-compatible tag are rejected.
func InspectWheel(data []byte) (*WheelInfo, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWheel, err)
	}

	var wheelFile, metaFile *zip.File
	for _, f := range zr.File {
		dir, base := path.Split(f.Name)
		if strings.Count(dir, "/") != 1 || !strings.HasSuffix(dir, ".dist-info/") {
			continue
		}
		switch base {
		case "WHEEL":
			wheelFile = f
		case "METADATA":
			metaFile = f
		}
	}
	if wheelFile == nil {
		return nil, fmt.Errorf("%w: missing .dist-info/WHEEL", ErrInvalidWheel)
	}
	if metaFile == nil {
		return nil, fmt.Errorf("%w: missing .dist-info/METADATA", ErrInvalidWheel)
	}

	meta, err := readHeaders(metaFile)
	if err != nil {
		return nil, err
	}
	wheel, err := readHeaders(wheelFile)
	if err != nil {
		return nil, err
	}

	info := &WheelInfo{
		Name:    first(meta["Name"]),
		Version: first(meta["Version"]),
		Tags:    expandTags(wheel["Tag"]),
	}
	if info.Name == "" || info.Version == "" {
		return nil, fmt.Errorf("%w: METADATA lacks Name or Version", ErrInvalidWheel)
	}
	if len(info.Tags) == 0 {
		return nil, fmt.Errorf("%w: WHEEL lists no tags", ErrInvalidWheel)
	}
	if !anyCompatible(info.Tags) {
		return nil, fmt.Errorf("%w: %s %s has tags %s", ErrIncompatible, info.Name, info.Version, strings.Join(info.Tags, ", "))
	}
	return info, nil
}

// readHeaders parses the RFC 822 style header block of a dist-info file.
func readHeaders(f *zip.File) (map[string][]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrInvalidWheel, f.Name, err)
	}
	defer func() { _ = rc.Close() }()

	headers := make(map[string][]string)
	sc := bufio.NewScanner(io.LimitReader(rc, maxMetadataSize))
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			break // body follows
		}
		if line[0] == ' ' || line[0] == '\t' {
			continue // folded continuation
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		headers[strings.TrimSpace(key)] = append(headers[strings.TrimSpace(key)], strings.TrimSpace(value))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrInvalidWheel, f.Name, err)
	}
	return headers, nil
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// expandTags splits compressed tag sets like "py2.py3-none-any".
func expandTags(tags []string) []string {
	var out []string
	for _, tag := range tags {
		parts := strings.Split(tag, "-")
		if len(parts) != 3 {
			continue
		}
		for _, py := range strings.Split(parts[0], ".") {
			for _, abi := range strings.Split(parts[1], ".") {
				for _, plat := range strings.Split(parts[2], ".") {
					out = append(out, py+"-"+abi+"-"+plat)
				}
			}
		}
	}
	return out
}

// compatibleTag reports whether a single expanded tag installs in the browser runtime.
func compatibleTag(tag string) bool {
	parts := strings.Split(tag, "-")
	if len(parts) != 3 {
		return false
	}
	py, abi, plat := parts[0], parts[1], parts[2]
	if strings.HasPrefix(plat, "emscripten_") || strings.HasPrefix(plat, "pyodide_") {
		return true
	}
	return plat == "any" && abi == "none" && strings.HasPrefix(py, "py3")
}

func anyCompatible(tags []string) bool {
	for _, tag := range tags {
		if compatibleTag(tag) {
			return true
		}
	}
	return false
}

// FilenameTags returns the expanded tags encoded in a wheel filename.
func FilenameTags(filename string) ([]string, error) {
	base := strings.TrimSuffix(filename, ".whl")
	if base == filename {
		return nil, fmt.Errorf("%w: %q is not a wheel filename", ErrInvalidWheel, filename)
	}
	parts := strings.Split(base, "-")
	if len(parts) != 5 && len(parts) != 6 {
		return nil, fmt.Errorf("%w: %q is not a wheel filename", ErrInvalidWheel, filename)
	}
	n := len(parts)
	return expandTags([]string{strings.Join(parts[n-3:], "-")}), nil
}

// CompatibleFilename reports whether a wheel filename carries a browser-compatible tag.
func CompatibleFilename(filename string) bool {
	tags, err := FilenameTags(filename)
	return err == nil && anyCompatible(tags)
}
