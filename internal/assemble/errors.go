package assemble

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for site assembly.
var (
	// ErrTemplateLoad indicates the runtime template could not be read.
	ErrTemplateLoad = errors.New("runtime template load failed")

	// ErrNameCollision indicates two inputs claim one output path or package.
	ErrNameCollision = errors.New("name collision")

	// ErrSettings indicates invalid settings overrides.
	ErrSettings = errors.New("invalid settings overrides")
)

// CollisionError names both sides of a collision.
type CollisionError struct {
	Path    string
	Sources []string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("%s: %s claimed by %s", ErrNameCollision, e.Path, strings.Join(e.Sources, " and "))
}

func (e *CollisionError) Unwrap() error { return ErrNameCollision }
