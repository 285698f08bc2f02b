// Package blobstore abstracts where model snapshots live: in memory for
// tests, on the local filesystem, or in object storage (S3, MinIO).
//
// Snapshots are small immutable blobs written once and read whole, so the
// interface is deliberately byte-slice based rather than streaming.
package blobstore

import (
	"context"
	"errors"

	"golang.org/x/time/rate"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations must return an error that satisfies
// errors.Is(err, ErrNotFound).
var ErrNotFound = errors.New("blobstore: blob not found")

// Store reads and writes immutable named blobs.
type Store interface {
	// Put stores data under name, replacing any existing blob.
	Put(ctx context.Context, name string, data []byte) error
	// Get returns the blob stored under name.
	Get(ctx context.Context, name string) ([]byte, error)
	// Delete removes the blob stored under name. Deleting a missing blob
	// is not an error.
	Delete(ctx context.Context, name string) error
}

// ThrottleWait blocks until the limiter admits n bytes, splitting requests
// larger than the burst. A nil limiter admits everything immediately.
func ThrottleWait(ctx context.Context, l *rate.Limiter, n int) error {
	if l == nil {
		return nil
	}
	for n > 0 {
		chunk := n
		if b := l.Burst(); b > 0 && chunk > b {
			chunk = b
		}
		if err := l.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}
