// Package storage downloads stored bill files by URL. http(s), s3:// and
// gs:// sources are supported.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/joseph-ayodele/bills-tracker/internal/common"
)

// Fetcher downloads the bytes behind a URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// Router dispatches by URL scheme. A nil backend means the scheme is not
// configured.
type Router struct {
	HTTP   Fetcher
	S3     Fetcher
	GCS    Fetcher
	Logger *slog.Logger
}

func (r *Router) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(rawURL) == "" {
		return nil, common.NewAppError("MISSING_SOURCE", "document has no source url", common.ErrInvalidState)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: parse source url: %w", common.ErrNetwork, err)
	}

	var f Fetcher
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		f = r.HTTP
	case "s3":
		f = r.S3
	case "gs":
		f = r.GCS
	}
	if f == nil {
		return nil, fmt.Errorf("%w: unsupported source scheme %q", common.ErrNetwork, u.Scheme)
	}

	data, err := f.Fetch(ctx, rawURL)
	if err != nil {
		logger.Warn("storage.fetch.failed", "scheme", u.Scheme, "host", u.Host, "error", err)
		return nil, err
	}
	logger.Debug("storage.fetch.ok", "scheme", u.Scheme, "host", u.Host, "bytes", len(data))
	return data, nil
}

// splitBucketURL turns scheme://bucket/key/parts into bucket and key.
func splitBucketURL(rawURL string) (string, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", err
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", fmt.Errorf("expected %s://bucket/key, got %q", u.Scheme, rawURL)
	}
	return u.Host, key, nil
}
