package pipeline

import "errors"

// Sentinel errors for page processing.
var (
	ErrHTMLConversion = errors.New("HTML conversion failed")
	ErrFrontMatter    = errors.New("invalid front matter")
	ErrEmbedSyntax    = errors.New("invalid jupyterlite embed")
	ErrHTMLInjection  = errors.New("HTML injection failed")
)
