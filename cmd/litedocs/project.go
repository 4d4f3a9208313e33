package main

import (
	"errors"
	"fmt"
	"path/filepath"

	jupyterlite "github.com/alnah/go-jupyterlite"
	"github.com/alnah/go-jupyterlite/internal/config"
	"github.com/alnah/go-jupyterlite/site"
)

// project is a loaded site config with its optional runtime section.
type project struct {
	cfg    *config.Config
	plugin *jupyterlite.Config // nil when plugins.jupyterlite is absent
	site   site.Config
}

// loadProject reads the config, then applies env and flag overrides.
// Without an explicit config name, a missing litedocs.yml means defaults.
func loadProject(common *commonFlags, flags *siteFlags, envCfg *envConfig) (*project, error) {
	name := common.config
	if name == "" {
		name = envCfg.ConfigPath
	}
	explicit := name != ""
	if !explicit {
		name = config.DefaultName
	}

	cfg, err := config.LoadConfig(name)
	switch {
	case err == nil:
	case !explicit && errors.Is(err, config.ErrConfigNotFound):
		cfg = config.DefaultConfig()
	default:
		return nil, fmt.Errorf("loading config: %w", err)
	}

	p := &project{cfg: cfg}
	data, ok, err := cfg.Plugin(jupyterlite.PluginName)
	if err != nil {
		return nil, err
	}
	if ok {
		p.plugin, err = jupyterlite.ParseConfig(data)
		if err != nil {
			return nil, fmt.Errorf("plugins.%s: %w", jupyterlite.PluginName, err)
		}
	}

	applyEnvConfig(envCfg, cfg, p.plugin)
	mergeFlags(flags, cfg, p.plugin)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if p.site, err = siteConfig(cfg); err != nil {
		return nil, err
	}
	return p, nil
}

// siteConfig makes the host config with absolute directories.
func siteConfig(cfg *config.Config) (site.Config, error) {
	docsDir, err := cfg.Resolve(cfg.DocsDir)
	if err != nil {
		return site.Config{}, fmt.Errorf("resolving docs_dir: %w", err)
	}
	siteDir, err := cfg.Resolve(cfg.SiteDir)
	if err != nil {
		return site.Config{}, fmt.Errorf("resolving site_dir: %w", err)
	}
	configDir, err := filepath.Abs(cfg.Dir())
	if err != nil {
		return site.Config{}, fmt.Errorf("resolving config directory: %w", err)
	}
	return site.Config{
		SiteName:         cfg.SiteName,
		DocsDir:          docsDir,
		SiteDir:          siteDir,
		ConfigDir:        configDir,
		UseDirectoryURLs: cfg.DirectoryURLs(),
	}, nil
}
