// Package minio stores snapshots in a MinIO (or other S3-compatible) bucket
// through the native MinIO client.
package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
	"golang.org/x/time/rate"

	"github.com/subsplit/sbn/blobstore"
)

// Store implements blobstore.Store on a MinIO bucket.
type Store struct {
	client  *minio.Client
	bucket  string
	prefix  string
	limiter *rate.Limiter
}

var _ blobstore.Store = (*Store)(nil)

// Options configures the store.
type Options struct {
	// Prefix is prepended to every blob name.
	Prefix string
	// UploadLimiter throttles upload bandwidth in bytes per second.
	// Nil disables throttling.
	UploadLimiter *rate.Limiter
}

// New returns a store writing to the given bucket.
func New(client *minio.Client, bucket string, optFns ...func(*Options)) *Store {
	var o Options
	for _, fn := range optFns {
		fn(&o)
	}
	return &Store{client: client, bucket: bucket, prefix: o.Prefix, limiter: o.UploadLimiter}
}

// WithPrefix prepends a key prefix to every blob name.
func WithPrefix(prefix string) func(*Options) {
	return func(o *Options) { o.Prefix = prefix }
}

// WithUploadRateLimit throttles uploads to bytesPerSec with the given burst.
func WithUploadRateLimit(bytesPerSec float64, burst int) func(*Options) {
	return func(o *Options) { o.UploadLimiter = rate.NewLimiter(rate.Limit(bytesPerSec), burst) }
}

func (s *Store) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// Put uploads data under name.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	if err := blobstore.ThrottleWait(ctx, s.limiter, len(data)); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, s.bucket, s.key(name), bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/octet-stream"})
	if err != nil {
		return fmt.Errorf("minio: put %s: %w", name, err)
	}
	return nil
}

// Get downloads the blob stored under name.
func (s *Store) Get(ctx context.Context, name string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key(name), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("minio: get %s: %w", name, err)
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			return nil, fmt.Errorf("%w: %s", blobstore.ErrNotFound, name)
		}
		return nil, fmt.Errorf("minio: get %s: %w", name, err)
	}
	return data, nil
}

// Delete removes the blob stored under name.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, s.key(name), minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("minio: delete %s: %w", name, err)
	}
	return nil
}
