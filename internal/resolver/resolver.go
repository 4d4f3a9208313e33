// Package resolver turns package specifiers into validated wheels the
// browser runtime can install.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Worker sizing constants.
const (
	// MinWorkers ensures at least one resolution runs.
	MinWorkers = 1

	// MaxWorkers caps concurrent downloads against one index.
	MaxWorkers = 8

	// defaultTimeout bounds a single HTTP exchange.
	defaultTimeout = 60 * time.Second
)

// ResolveWorkers determines the pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolveWorkers(workers int) int {
	if workers > 0 {
		return workers
	}

	n := runtime.GOMAXPROCS(0)
	if n < MinWorkers {
		return MinWorkers
	}
	if n > MaxWorkers {
		return MaxWorkers
	}
	return n
}

// Failure records one specifier that could not be resolved.
type Failure struct {
	Spec Spec
	Err  error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Spec.Raw, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

// Result holds resolved packages in input order and every failure.
type Result struct {
	Packages []*Package
	Failures []Failure
}

// Resolver resolves specifiers concurrently against an index, URLs and local files.
type Resolver struct {
	client   *http.Client
	indexURL string
	baseDir  string
	workers  int
	retry    RetryPolicy
	cache    *Cache
	logger   *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHTTPClient sets the HTTP client used for index queries and downloads.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) {
		if c != nil {
			r.client = c
		}
	}
}

// WithIndexURL sets the PyPI-compatible index root.
func WithIndexURL(u string) Option {
	return func(r *Resolver) {
		if u != "" {
			r.indexURL = u
		}
	}
}

// WithBaseDir sets the directory relative local specifiers are read from.
func WithBaseDir(dir string) Option {
	return func(r *Resolver) { r.baseDir = dir }
}

// WithWorkers sets the pool size. Zero selects a GOMAXPROCS-based size.
func WithWorkers(n int) Option {
	return func(r *Resolver) { r.workers = n }
}

// WithRetry sets the retry policy for transient failures.
func WithRetry(p RetryPolicy) Option {
	return func(r *Resolver) { r.retry = p }
}

// WithCache shares a cache across resolutions.
func WithCache(c *Cache) Option {
	return func(r *Resolver) {
		if c != nil {
			r.cache = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		client:   &http.Client{Timeout: defaultTimeout},
		indexURL: DefaultIndexURL,
		retry:    DefaultRetryPolicy(),
		cache:    NewCache(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Cache returns the resolver's cache.
func (r *Resolver) Cache() *Cache {
	return r.cache
}

// Resolve resolves every spec. One failure never stops the others.
// Packages keep input order regardless of completion order. A cancelled
// context abandons in-flight work and returns ctx.Err().
func (r *Resolver) Resolve(ctx context.Context, specs []Spec) (*Result, error) {
	if len(specs) == 0 {
		return &Result{}, nil
	}

	concurrency := ResolveWorkers(r.workers)
	if concurrency > len(specs) {
		concurrency = len(specs)
	}

	f := &fetcher{client: r.client, retry: r.retry, logger: r.logger}
	ix := &index{baseURL: r.indexURL, fetch: f}

	type outcome struct {
		pkg *Package
		err error
	}
	outcomes := make([]outcome, len(specs))
	var wg sync.WaitGroup
	jobs := make(chan int, len(specs))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					outcomes[idx] = outcome{err: ctx.Err()}
					continue
				}
				pkg, err := r.resolveOne(ctx, f, ix, specs[idx])
				outcomes[idx] = outcome{pkg: pkg, err: err}
			}
		}()
	}

	for i := range specs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{}
	for i, o := range outcomes {
		if o.err != nil {
			r.logger.Warn("package resolution failed",
				zap.String("spec", specs[i].Raw),
				zap.Error(o.err))
			result.Failures = append(result.Failures, Failure{Spec: specs[i], Err: o.err})
			continue
		}
		result.Packages = append(result.Packages, o.pkg)
	}
	return result, nil
}

func (r *Resolver) resolveOne(ctx context.Context, f *fetcher, ix *index, spec Spec) (*Package, error) {
	if p, ok := r.cache.Get(spec.Raw); ok {
		r.logger.Debug("package cache hit", zap.String("spec", spec.Raw))
		return p, nil
	}

	// A shared fetch runs under the context of whichever caller started it.
	// When that caller gives up, callers that are still live start over.
	for attempt := 1; ; attempt++ {
		pkg, err := r.cache.do(spec.Raw, func() (*Package, error) {
			return r.fetchAndStore(ctx, f, ix, spec)
		})
		if err == nil || ctx.Err() != nil || !isContextError(err) || attempt == maxSharedRetries {
			return pkg, err
		}
		r.logger.Debug("shared fetch abandoned, retrying", zap.String("spec", spec.Raw))
	}
}

const maxSharedRetries = 3

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (r *Resolver) fetchAndStore(ctx context.Context, f *fetcher, ix *index, spec Spec) (*Package, error) {
	if p, ok := r.cache.Get(spec.Raw); ok {
		return p, nil
	}

	start := time.Now()
	data, source, err := r.fetchArtifact(ctx, f, ix, spec)
	if err != nil {
		return nil, err
	}
	pkg, err := newPackage(spec, data, source)
	if err != nil {
		return nil, err
	}
	pkg = r.cache.Put(pkg)

	r.logger.Info("resolved package",
		zap.String("spec", spec.Raw),
		zap.String("name", pkg.Name),
		zap.String("version", pkg.Version),
		zap.Int("bytes", len(pkg.Data)),
		zap.Duration("took", time.Since(start)))
	return pkg, nil
}

func (r *Resolver) fetchArtifact(ctx context.Context, f *fetcher, ix *index, spec Spec) ([]byte, string, error) {
	switch spec.Kind {
	case KindPinned, KindLatest:
		u, err := ix.wheel(ctx, spec.Name, spec.Version)
		if err != nil {
			return nil, "", err
		}
		data, err := f.get(ctx, u)
		return data, u, err

	case KindURL:
		data, err := f.get(ctx, spec.Location)
		return data, spec.Location, err

	case KindLocal:
		p := filepath.FromSlash(spec.Location)
		if !filepath.IsAbs(p) && r.baseDir != "" {
			p = filepath.Join(r.baseDir, p)
		}
		data, err := os.ReadFile(p) // #nosec G304 -- user-configured wheel path
		if err != nil {
			if os.IsNotExist(err) {
				return nil, "", fmt.Errorf("%w: %s", ErrNotFound, p)
			}
			return nil, "", fmt.Errorf("reading %s: %w", p, err)
		}
		return data, p, nil
	}
	return nil, "", fmt.Errorf("%w: unknown kind %v", ErrInvalidSpec, spec.Kind)
}
