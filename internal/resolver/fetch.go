package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultMaxAttempts is the default number of fetch attempts per URL.
	DefaultMaxAttempts = 4

	// DefaultBaseBackoff is the delay before the first retry.
	DefaultBaseBackoff = 250 * time.Millisecond

	// maxArtifactSize bounds a single downloaded response.
	maxArtifactSize = 512 << 20

	userAgent = "go-jupyterlite"
)

// RetryPolicy configures retries of transient fetch failures.
type RetryPolicy struct {
	MaxAttempts int
	BaseBackoff time.Duration
}

// DefaultRetryPolicy returns the default retry configuration.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultMaxAttempts,
		BaseBackoff: DefaultBaseBackoff,
	}
}

// fetcher performs GET requests with retry.
type fetcher struct {
	client *http.Client
	retry  RetryPolicy
	logger *zap.Logger
}

// get downloads url. 404 maps to ErrNotFound without retry; network errors
// and 429/5xx retry with backoff base*2^attempt.
func (f *fetcher) get(ctx context.Context, url string) ([]byte, error) {
	attempts := f.retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		data, err := f.once(ctx, url)
		if err == nil {
			return data, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !retryable(err) {
			return nil, err
		}
		lastErr = err

		if attempt == attempts-1 {
			break
		}
		backoff := f.retry.BaseBackoff * time.Duration(1<<uint(attempt))
		f.logger.Debug("retrying fetch",
			zap.String("url", url),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", backoff),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return nil, fmt.Errorf("%w: %s after %d attempts: %v", ErrTransient, url, attempts, lastErr)
}

func (f *fetcher) once(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %v", url, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{URL: url, Code: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArtifactSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxArtifactSize {
		return nil, fmt.Errorf("%s: response exceeds %d bytes", url, maxArtifactSize)
	}
	return data, nil
}

// retryable reports whether err is a transient network or server failure.
func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	if errors.Is(err, ErrNotFound) {
		return false
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF)
}
