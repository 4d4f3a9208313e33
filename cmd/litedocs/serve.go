package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	jupyterlite "github.com/alnah/go-jupyterlite"
	"github.com/alnah/go-jupyterlite/internal/watch"
)

// shutdownTimeout bounds the HTTP server drain on exit.
const shutdownTimeout = 5 * time.Second

// runServeCmd parses flags and runs the dev server.
func runServeCmd(ctx context.Context, args []string, env *Environment) error {
	flags, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	return runServe(ctx, flags, env)
}

// devSession rebuilds the site on change, reusing resolved packages.
type devSession struct {
	flags  *serveFlags
	env    *Environment
	envCfg *envConfig
	bctx   *jupyterlite.BuildContext
	logger *zap.Logger

	mu   sync.Mutex
	proj *project
}

// rebuild reloads the config and runs one build. Calls are serialized.
func (s *devSession) rebuild(ctx context.Context, changed []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range changed {
		if strings.EqualFold(filepath.Ext(p), ".whl") {
			n := s.bctx.InvalidateLocal()
			s.logger.Debug("local wheel changed", zap.String("path", p), zap.Int("invalidated", n))
			break
		}
	}

	proj, err := loadProject(&s.flags.common, &s.flags.site, s.envCfg)
	if err != nil {
		return err
	}
	s.proj = proj

	builder, _ := newBuilder(proj, s.bctx, false, s.env, s.logger)
	_, err = builder.Build(ctx)
	return err
}

// roots returns the trees to watch: the config directory and the docs
// directory when it lives elsewhere.
func (s *devSession) roots() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	roots := []string{s.proj.site.ConfigDir}
	docs := s.proj.site.DocsDir
	if !within(docs, s.proj.site.ConfigDir) {
		roots = append(roots, docs)
	}
	return roots
}

// within reports whether p is dir or below it.
func within(p, dir string) bool {
	rel, err := filepath.Rel(dir, p)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// runServe builds once, then serves site_dir and rebuilds on change until
// ctx is cancelled. A failed initial build is returned; later failures are
// logged and the last good site keeps being served.
func runServe(ctx context.Context, flags *serveFlags, env *Environment) error {
	envCfg := loadEnvConfig()
	logger := newLogger(env.Stderr, flags.common)
	defer func() { _ = logger.Sync() }()

	s := &devSession{
		flags:  flags,
		env:    env,
		envCfg: envCfg,
		bctx:   jupyterlite.NewBuildContext(),
		logger: logger,
	}
	if err := s.rebuild(ctx, nil); err != nil {
		return err
	}
	siteDir := s.proj.site.SiteDir

	w, err := watch.New(s.roots(), func(paths []string) {
		logger.Info("change detected", zap.Strings("paths", paths))
		if err := s.rebuild(ctx, paths); err != nil && ctx.Err() == nil {
			logger.Error("rebuild failed", zap.Error(err))
		}
	}, watch.WithIgnore(siteDir), watch.WithDelay(flags.delay), watch.WithLogger(logger))
	if err != nil {
		return err
	}

	addr := flags.addr
	if addr == "" {
		addr = envCfg.Addr
	}
	if addr == "" {
		addr = defaultAddr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	srv := &http.Server{
		Handler:           http.FileServer(http.Dir(siteDir)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Serving %s on http://%s/\n", siteDir, ln.Addr())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.Run(gctx) })
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
