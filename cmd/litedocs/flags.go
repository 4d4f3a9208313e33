package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"

	jupyterlite "github.com/alnah/go-jupyterlite"
	"github.com/alnah/go-jupyterlite/internal/config"
	"github.com/alnah/go-jupyterlite/internal/watch"
)

var (
	errUsage = errors.New("usage")
	errHelp  = errors.New("help requested")
)

// defaultAddr is where serve listens.
const defaultAddr = "127.0.0.1:8000"

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// siteFlags override litedocs.yml and the notebook runtime section.
type siteFlags struct {
	docsDir   string
	siteDir   string
	indexURL  string
	onFailure string
	workers   int
}

// buildFlags holds all build command flags.
type buildFlags struct {
	common  commonFlags
	site    siteFlags
	clean   bool
	timeout time.Duration
}

// serveFlags holds all serve command flags.
type serveFlags struct {
	common commonFlags
	site   siteFlags
	addr   string
	delay  time.Duration
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug output")
}

// addSiteFlags adds site and runtime override flags to a FlagSet.
func addSiteFlags(fs *flag.FlagSet, f *siteFlags) {
	fs.StringVarP(&f.docsDir, "docs-dir", "d", "", "docs directory")
	fs.StringVarP(&f.siteDir, "site-dir", "o", "", "output directory")
	fs.StringVar(&f.indexURL, "index-url", "", "package index URL")
	fs.StringVar(&f.onFailure, "on-failure", "", "package failure policy: fatal, skip")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel downloads (0 = auto)")
}

// parseBuildFlags parses build command flags.
func parseBuildFlags(args []string, stderr io.Writer) (*buildFlags, error) {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	f := &buildFlags{}

	addCommonFlags(fs, &f.common)
	addSiteFlags(fs, &f.site)
	fs.BoolVar(&f.clean, "clean", false, "remove the site directory first")
	fs.DurationVarP(&f.timeout, "timeout", "t", 0, "build timeout (e.g., 2m, 0 = none)")

	fs.SetOutput(io.Discard)
	fs.Usage = func() { printBuildUsage(stderr) }

	if err := parse(fs, args); err != nil {
		return nil, err
	}
	if f.timeout < 0 {
		return nil, fmt.Errorf("%w: --timeout must not be negative", errUsage)
	}
	return f, nil
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string, stderr io.Writer) (*serveFlags, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	f := &serveFlags{}

	addCommonFlags(fs, &f.common)
	addSiteFlags(fs, &f.site)
	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (default "+defaultAddr+")")
	fs.DurationVar(&f.delay, "delay", watch.DefaultDelay, "rebuild debounce delay")

	fs.SetOutput(io.Discard)
	fs.Usage = func() { printServeUsage(stderr) }

	if err := parse(fs, args); err != nil {
		return nil, err
	}
	if f.delay <= 0 {
		return nil, fmt.Errorf("%w: --delay must be positive", errUsage)
	}
	return f, nil
}

// parse runs fs and rejects positional arguments.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errHelp
		}
		fs.Usage()
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return fmt.Errorf("%w: unexpected argument %q", errUsage, fs.Arg(0))
	}
	return nil
}

// mergeFlags applies set flags over cfg and plugin (CLI wins).
// plugin may be nil.
func mergeFlags(f *siteFlags, cfg *config.Config, plugin *jupyterlite.Config) {
	if f.docsDir != "" {
		cfg.DocsDir = f.docsDir
	}
	if f.siteDir != "" {
		cfg.SiteDir = f.siteDir
	}

	if plugin == nil {
		return
	}
	if f.indexURL != "" {
		plugin.IndexURL = f.indexURL
	}
	if f.onFailure != "" {
		plugin.OnFailure = f.onFailure
	}
	if f.workers > 0 {
		plugin.Workers = f.workers
	}
}
