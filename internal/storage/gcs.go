package storage

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/joseph-ayodele/bills-tracker/internal/common"
)

// GCSFetcher reads gs://bucket/object files.
type GCSFetcher struct {
	client *storage.Client
}

// NewGCSFetcher uses application default credentials unless a credentials
// file is given.
func NewGCSFetcher(ctx context.Context, credentialsFile string) (*GCSFetcher, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSFetcher{client: client}, nil
}

func (f *GCSFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	bucket, object, err := splitBucketURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrNetwork, err)
	}
	r, err := f.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: open GCS object reader: %w", common.ErrNetwork, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read GCS object: %w", common.ErrNetwork, err)
	}
	return data, nil
}

func (f *GCSFetcher) Close() error {
	return f.client.Close()
}
