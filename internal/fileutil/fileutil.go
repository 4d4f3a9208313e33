// Package fileutil provides file and path utility functions.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// File permission constants.
const (
	DirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	FilePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// ErrEmptyDestination is returned when a write target is empty.
var ErrEmptyDestination = errors.New("destination path cannot be empty")

// WriteFile writes data to dest, creating parent directories as needed.
func WriteFile(dest string, data []byte) error {
	if dest == "" {
		return ErrEmptyDestination
	}
	if err := os.MkdirAll(filepath.Dir(dest), DirPermissions); err != nil {
		return fmt.Errorf("creating directory for %s: %w", dest, err)
	}
	// #nosec G306 -- site output is meant to be world-readable
	if err := os.WriteFile(dest, data, FilePermissions); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	return nil
}

// CopyFile copies src to dest, creating parent directories as needed.
func CopyFile(src, dest string) error {
	if dest == "" {
		return ErrEmptyDestination
	}
	in, err := os.Open(src) // #nosec G304 -- src comes from the collected docs tree
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dest), DirPermissions); err != nil {
		return fmt.Errorf("creating directory for %s: %w", dest, err)
	}
	out, err := os.Create(dest) // #nosec G304 -- dest is inside the site dir
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return out.Close()
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists returns true if the path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// IsFilePath returns true if the string looks like a file path rather than a name.
// A string containing path separators (/, \) is treated as a path.
//
// Examples:
//   - "numpy" -> false (name)
//   - "./wheels/a.whl" -> true (relative path)
//   - "/abs/a.whl" -> true (absolute)
//   - "C:\wheels\a.whl" -> true (Windows)
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// IsURL returns true if the string looks like an HTTP(S) URL.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// IsFileURL returns true if the string is a file:// URL.
func IsFileURL(s string) bool {
	return strings.HasPrefix(s, "file://")
}

// IsSafeRelative reports whether p is a relative, slash-separated path that
// stays inside its root once cleaned.
func IsSafeRelative(p string) bool {
	if p == "" || strings.ContainsAny(p, "\\\x00") {
		return false
	}
	if strings.HasPrefix(p, "/") || filepath.IsAbs(p) {
		return false
	}
	cleaned := filepath.ToSlash(filepath.Clean(p))
	return cleaned != ".." && !strings.HasPrefix(cleaned, "../")
}
