package assets

import (
	"fmt"
	"io/fs"
)

// defaultLoader is the package-level embedded loader.
var defaultLoader = NewEmbeddedLoader()

// LoadTemplate returns the embedded runtime template.
func LoadTemplate() (fs.FS, error) {
	return defaultLoader.LoadTemplate()
}

// LoadScript loads an embedded helper script by name.
func LoadScript(name string) ([]byte, error) {
	return defaultLoader.LoadScript(name)
}

// validateTemplate checks that fsys looks like a runtime tree.
func validateTemplate(fsys fs.FS, origin string) error {
	info, err := fs.Stat(fsys, RequiredTemplateEntry)
	if err != nil {
		return fmt.Errorf("%w: %s has no %s", ErrInvalidTemplate, origin, RequiredTemplateEntry)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s/%s is a directory", ErrInvalidTemplate, origin, RequiredTemplateEntry)
	}
	return nil
}
