// Package photo resolves opaque photo references into readable bytes and
// models the platform collaborators that hand those references out.
package photo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"hairfluencer/internal/domain"
	"hairfluencer/internal/infra"
)

var (
	// ErrUnsupportedSource is returned for schemes the loader cannot open.
	ErrUnsupportedSource = errors.New("photo: unsupported source")
	// ErrTooLarge is returned once a photo exceeds the configured byte limit.
	ErrTooLarge = errors.New("photo: exceeds size limit")
)

// LoaderOptions configures a Loader.
type LoaderOptions struct {
	HTTPClient *http.Client
	MaxBytes   int64
	Logger     *infra.Logger
}

// Loader opens photo references from disk, data URIs, or HTTP.
type Loader struct {
	httpClient *http.Client
	maxBytes   int64
	logger     *infra.Logger
}

// NewLoader returns a loader with defaults applied.
func NewLoader(opts LoaderOptions) *Loader {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Loader{httpClient: client, maxBytes: opts.MaxBytes, logger: logger}
}

// Open returns a reader over the referenced bytes. Callers must close it.
func (l *Loader) Open(ctx context.Context, ref domain.PhotoRef) (io.ReadCloser, error) {
	raw := strings.TrimSpace(ref.String())
	if raw == "" {
		return nil, domain.ErrMissingSourcePhoto
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		rc  io.ReadCloser
		err error
	)
	switch {
	case IsDataURI(raw):
		rc, err = openDataURI(raw)
	case hasScheme(raw, "http://"), hasScheme(raw, "https://"):
		rc, err = l.openHTTP(ctx, raw)
	case hasScheme(raw, "file://"):
		rc, err = openFileURI(raw)
	case strings.Contains(raw, "://"), hasScheme(raw, "blob:"):
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, schemeOf(raw))
	default:
		rc, err = openFile(raw)
	}
	if err != nil {
		return nil, err
	}
	l.logger.Debug().Str("scheme", schemeOf(raw)).Msg("photo: opened reference")
	if l.maxBytes > 0 {
		rc = &cappedReader{rc: rc, limit: l.maxBytes}
	}
	return rc, nil
}

func openDataURI(raw string) (io.ReadCloser, error) {
	_, data, err := ParseDataURI(raw)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func openFileURI(raw string) (io.ReadCloser, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("photo: parse file uri: %w", err)
	}
	return openFile(u.Path)
}

func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("photo: open file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("photo: stat file: %w", err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("photo: %s is a directory", path)
	}
	return f, nil
}

func (l *Loader) openHTTP(ctx context.Context, raw string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, raw, nil)
	if err != nil {
		return nil, fmt.Errorf("photo: build request: %w", err)
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("photo: fetch: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("photo: fetch status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

type cappedReader struct {
	rc    io.ReadCloser
	limit int64
	read  int64
}

func (c *cappedReader) Read(p []byte) (int, error) {
	n, err := c.rc.Read(p)
	c.read += int64(n)
	if c.read > c.limit {
		return n, ErrTooLarge
	}
	return n, err
}

func (c *cappedReader) Close() error {
	return c.rc.Close()
}

func hasScheme(raw, scheme string) bool {
	return len(raw) >= len(scheme) && strings.EqualFold(raw[:len(scheme)], scheme)
}

func schemeOf(raw string) string {
	if IsDataURI(raw) {
		return "data"
	}
	// idx > 1 keeps drive letters such as C: out of the scheme check.
	if idx := strings.Index(raw, ":"); idx > 1 && !strings.ContainsAny(raw[:idx], `/\`) {
		return strings.ToLower(raw[:idx])
	}
	return "file"
}
