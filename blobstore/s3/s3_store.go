// Package s3 stores snapshots in Amazon S3 (or any S3-compatible endpoint
// reachable through the AWS SDK).
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"golang.org/x/time/rate"

	"github.com/subsplit/sbn/blobstore"
)

// Store implements blobstore.Store on an S3 bucket. Uploads go through the
// transfer manager so larger snapshots use multipart uploads automatically.
type Store struct {
	client   *awss3.Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
	limiter  *rate.Limiter
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
func New(client *awss3.Client, bucket string, optFns ...func(*Options)) *Store {
	var o Options
	for _, fn := range optFns {
		fn(&o)
	}
	return &Store{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		prefix:   o.Prefix,
		limiter:  o.UploadLimiter,
	}
}

// NewFromDefaultConfig builds a client from the ambient AWS configuration
// (environment, shared config files, instance metadata).
func NewFromDefaultConfig(ctx context.Context, bucket string, optFns ...func(*Options)) (*Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}
	return New(awss3.NewFromConfig(cfg), bucket, optFns...), nil
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
	_, err := s.uploader.Upload(ctx, &awss3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("s3: put %s: %w", name, err)
	}
	return nil
}

// Get downloads the blob stored under name.
func (s *Store) Get(ctx context.Context, name string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: %s", blobstore.ErrNotFound, name)
		}
		return nil, fmt.Errorf("s3: get %s: %w", name, err)
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

// Delete removes the blob stored under name.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		return fmt.Errorf("s3: delete %s: %w", name, err)
	}
	return nil
}
