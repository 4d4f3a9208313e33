package site

import "context"

// Config is the part of the site configuration plugins may read.
type Config struct {
	SiteName         string
	DocsDir          string // absolute
	SiteDir          string // absolute
	ConfigDir        string // directory holding the config file
	UseDirectoryURLs bool
}

// Plugin receives the events of one build pass, in order:
// OnConfig, OnFiles, then OnPageMarkdown and OnPostPage per page, and
// OnPostBuild. Returning an error aborts the build.
type Plugin interface {
	Name() string
	OnConfig(ctx context.Context, cfg *Config) (*Config, error)
	OnFiles(ctx context.Context, files *Files, cfg *Config) (*Files, error)
	OnPageMarkdown(ctx context.Context, markdown string, page *Page, cfg *Config, files *Files) (string, error)
	OnPostPage(ctx context.Context, output string, page *Page, cfg *Config) (string, error)
	OnPostBuild(ctx context.Context, cfg *Config) error
}
