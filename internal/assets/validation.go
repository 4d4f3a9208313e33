package assets

import (
	"fmt"
	"strings"
)

// ValidateAssetName checks that a script name is safe for use as a filename.
// Returns ErrInvalidAssetName if the name is empty or contains path separators,
// dots, NUL bytes or whitespace.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.\x00 \t\n") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
