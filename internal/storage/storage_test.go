package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/bills-tracker/internal/common"
)

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/bill.pdf":
			_, _ = w.Write([]byte("%PDF-1.4 body"))
		case "/big.pdf":
			_, _ = w.Write(bytes.Repeat([]byte("x"), 64))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewHTTPFetcher(time.Second, 32)

	data, err := f.Fetch(context.Background(), srv.URL+"/bill.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 body", string(data))

	_, err = f.Fetch(context.Background(), srv.URL+"/missing.pdf")
	assert.ErrorIs(t, err, common.ErrNetwork)
	assert.Contains(t, err.Error(), "404")

	_, err = f.Fetch(context.Background(), srv.URL+"/big.pdf")
	assert.ErrorIs(t, err, common.ErrNetwork)
}

type fakeFetcher struct {
	data []byte
	err  error
	got  string
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) ([]byte, error) {
	f.got = rawURL
	return f.data, f.err
}

func TestRouterDispatchesByScheme(t *testing.T) {
	httpF := &fakeFetcher{data: []byte("h")}
	s3F := &fakeFetcher{data: []byte("s")}
	r := &Router{HTTP: httpF, S3: s3F}

	data, err := r.Fetch(context.Background(), "https://cdn.example.com/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "h", string(data))

	data, err = r.Fetch(context.Background(), "s3://bills/u1/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "s", string(data))
	assert.Equal(t, "s3://bills/u1/a.pdf", s3F.got)

	_, err = r.Fetch(context.Background(), "gs://bills/a.pdf")
	assert.ErrorIs(t, err, common.ErrNetwork)

	_, err = r.Fetch(context.Background(), "")
	assert.ErrorIs(t, err, common.ErrInvalidState)
}

func TestSplitBucketURL(t *testing.T) {
	bucket, key, err := splitBucketURL("gs://bills/users/u1/edesur.pdf")
	require.NoError(t, err)
	assert.Equal(t, "bills", bucket)
	assert.Equal(t, "users/u1/edesur.pdf", key)

	_, _, err = splitBucketURL("s3://bills")
	assert.Error(t, err)
}

type fakeS3 struct {
	bucket, key string
	err         error
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.bucket, f.key = *in.Bucket, *in.Key
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader([]byte("pdf")))}, nil
}

func TestS3Fetcher(t *testing.T) {
	api := &fakeS3{}
	f := &S3Fetcher{api: api}

	data, err := f.Fetch(context.Background(), "s3://bills/u1/aysa.pdf")
	require.NoError(t, err)
	assert.Equal(t, "pdf", string(data))
	assert.Equal(t, "bills", api.bucket)
	assert.Equal(t, "u1/aysa.pdf", api.key)

	f = &S3Fetcher{api: &fakeS3{err: errors.New("NoSuchKey")}}
	_, err = f.Fetch(context.Background(), "s3://bills/gone.pdf")
	assert.ErrorIs(t, err, common.ErrNetwork)
}

func TestNewS3FetcherSetsEndpoint(t *testing.T) {
	orig := newS3ClientFromConfig
	t.Cleanup(func() { newS3ClientFromConfig = orig })

	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &s3.Client{}
	}

	_, err := NewS3Fetcher(context.Background(), S3Config{
		Region: "us-east-1", Endpoint: "http://127.0.0.1:9000", AccessKey: "k", SecretKey: "s",
	})
	require.NoError(t, err)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)
}
