package openapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrHTTPDisabled is returned by Read for http(s) locations unless a client
// or WithHTTPFallback was configured.
var ErrHTTPDisabled = errors.New("openapi: http sources disabled")

// maxDocumentSize bounds remote documents.
const maxDocumentSize = 16 << 20

// ReadOption configures Read.
type ReadOption func(*readOptions)

type readOptions struct {
	fs        fs.FS
	client    *http.Client
	allowHTTP bool
	timeout   time.Duration
}

// WithFileSystem resolves non-URL locations inside files instead of the
// operating system.
func WithFileSystem(files fs.FS) ReadOption {
	return func(o *readOptions) {
		o.fs = files
	}
}

// WithHTTPClient enables http(s) locations through client.
func WithHTTPClient(client *http.Client) ReadOption {
	return func(o *readOptions) {
		o.client = client
	}
}

// WithHTTPFallback enables http(s) locations through a default client with
// the given timeout.
func WithHTTPFallback(timeout time.Duration) ReadOption {
	return func(o *readOptions) {
		o.allowHTTP = true
		o.timeout = timeout
	}
}

// Read returns the raw document at location: an http(s) URL, a path inside
// the configured fs.FS, or a local file path. Reads are offline unless HTTP
// was enabled.
func Read(ctx context.Context, location string, opts ...ReadOption) ([]byte, error) {
	var o readOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, errors.New("openapi: document location is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if isURL(location) {
		client := o.httpClient()
		if client == nil {
			return nil, fmt.Errorf("%w: %s", ErrHTTPDisabled, location)
		}
		return readHTTP(ctx, client, location)
	}
	if o.fs != nil {
		data, err := fs.ReadFile(o.fs, location)
		if err != nil {
			return nil, fmt.Errorf("openapi: read %s: %w", location, err)
		}
		return data, nil
	}
	data, err := os.ReadFile(filepath.Clean(location))
	if err != nil {
		return nil, fmt.Errorf("openapi: read %s: %w", location, err)
	}
	return data, nil
}

func (o readOptions) httpClient() *http.Client {
	switch {
	case o.client != nil:
		clone := *o.client
		if o.timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = o.timeout
		}
		return &clone
	case o.allowHTTP:
		return &http.Client{Timeout: o.timeout}
	default:
		return nil
	}
}

func isURL(location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func readHTTP(ctx context.Context, client *http.Client, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("openapi: fetch %s: %w", location, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openapi: fetch %s: %w", location, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openapi: fetch %s: status %d", location, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("openapi: fetch %s: %w", location, err)
	}
	return data, nil
}
