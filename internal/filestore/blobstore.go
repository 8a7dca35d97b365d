package filestore

import (
	"context"

	"github.com/koustreak/s3repo/internal/bytesize"
	"github.com/koustreak/s3repo/internal/encryption"
)

// StoreOptions are the bucket-level settings wrapped with a Client.
type StoreOptions struct {
	Bucket               string
	Region               string
	ServerSideEncryption bool

	// BufferSize is the multipart upload threshold. Zero means unset and
	// the I/O layer applies its own default.
	BufferSize bytesize.Size

	Encryption encryption.Material
}

// BlobStore is the handle snapshot I/O uses to reach a repository's bucket.
// It is immutable and safe to share between goroutines.
type BlobStore struct {
	client Client
	opts   StoreOptions
}

// NewBlobStore wraps client with the bucket-level options.
func NewBlobStore(client Client, opts StoreOptions) *BlobStore {
	return &BlobStore{client: client, opts: opts}
}

// Client returns the underlying client. Callers type-assert to the
// provider's concrete client for I/O.
func (s *BlobStore) Client() Client {
	return s.client
}

func (s *BlobStore) Bucket() string {
	return s.opts.Bucket
}

func (s *BlobStore) Region() string {
	return s.opts.Region
}

func (s *BlobStore) ServerSideEncryption() bool {
	return s.opts.ServerSideEncryption
}

// BufferSize returns the configured buffer size and whether one was set.
func (s *BlobStore) BufferSize() (bytesize.Size, bool) {
	return s.opts.BufferSize, s.opts.BufferSize > 0
}

func (s *BlobStore) Encryption() encryption.Material {
	return s.opts.Encryption
}

// Ping checks that the bucket is reachable.
func (s *BlobStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, s.opts.Bucket)
}

// Close releases the client.
func (s *BlobStore) Close() error {
	return s.client.Close()
}
