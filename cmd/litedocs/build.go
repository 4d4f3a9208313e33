package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	jupyterlite "github.com/alnah/go-jupyterlite"
	"github.com/alnah/go-jupyterlite/internal/sitebuild"
	"github.com/alnah/go-jupyterlite/site"
)

// runBuildCmd parses flags and builds the site once.
func runBuildCmd(ctx context.Context, args []string, env *Environment) error {
	flags, err := parseBuildFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	return runBuild(ctx, flags, env)
}

// runBuild orchestrates a single build.
func runBuild(ctx context.Context, flags *buildFlags, env *Environment) error {
	envCfg := loadEnvConfig()
	logger := newLogger(env.Stderr, flags.common)
	defer func() { _ = logger.Sync() }()

	proj, err := loadProject(&flags.common, &flags.site, envCfg)
	if err != nil {
		return err
	}

	timeout := flags.timeout
	if timeout == 0 {
		timeout = envCfg.Timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	builder, plugin := newBuilder(proj, nil, flags.clean, env, logger)
	res, err := builder.Build(ctx)
	if err != nil {
		return err
	}
	if !flags.common.quiet {
		printSummary(env.Stdout, res, plugin)
	}
	return nil
}

// newBuilder wires the host builder and, when configured, the notebook
// runtime plugin. bctx may be nil for one-shot builds.
func newBuilder(proj *project, bctx *jupyterlite.BuildContext, clean bool, env *Environment, logger *zap.Logger) (*sitebuild.Builder, *jupyterlite.Plugin) {
	opts := []sitebuild.Option{
		sitebuild.WithHighlightStyle(proj.cfg.HighlightStyle),
		sitebuild.WithClean(clean),
		sitebuild.WithLogger(logger),
	}

	var plugin *jupyterlite.Plugin
	if proj.plugin != nil {
		plugin = jupyterlite.New(*proj.plugin,
			jupyterlite.WithBuildContext(bctx),
			jupyterlite.WithHTTPClient(env.HTTPClient),
			jupyterlite.WithLogger(logger))
		opts = append(opts, sitebuild.WithPlugins(site.Plugin(plugin)))
	}
	return sitebuild.New(proj.site, opts...), plugin
}

// printSummary writes the build outcome. plugin may be nil.
func printSummary(w io.Writer, res *sitebuild.Result, plugin *jupyterlite.Plugin) {
	fmt.Fprintf(w, "Built %d page(s), %d file(s) in %s\n", res.Pages, res.Files, res.Took.Round(time.Millisecond))
	if plugin == nil {
		return
	}
	r := plugin.Report()
	if len(r.Notebooks) == 0 && len(r.Packages) == 0 && len(r.Skipped) == 0 {
		return
	}
	fmt.Fprintf(w, "JupyterLite: %d notebook(s), %d package(s), %d embed(s)\n",
		len(r.Notebooks), len(r.Packages), r.Embeds)
	for _, name := range r.Skipped {
		fmt.Fprintf(w, "  skipped notebook %s\n", name)
	}
	for _, f := range r.Failures {
		fmt.Fprintf(w, "  failed %s: %s\n", f.Spec, f.Reason)
	}
}
