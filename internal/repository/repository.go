// Package repository assembles an S3 snapshot repository from layered
// settings and builds the blob store handle snapshot I/O runs against.
//
// Usage:
//
//	repo, err := repository.Open(ctx, "nightly", repository.Sources{
//	    Repository: settings.Map{"bucket": "snapshots", "base_path": "prod/es"},
//	    Node:       nodeSettings,
//	}, factory, log)
//	if err != nil { ... }
//	defer repo.Close()
//
//	store := repo.BlobStore()
package repository

import (
	"context"

	"github.com/koustreak/s3repo/internal/blobpath"
	"github.com/koustreak/s3repo/internal/bytesize"
	"github.com/koustreak/s3repo/internal/errs"
	"github.com/koustreak/s3repo/internal/filestore"
	"github.com/koustreak/s3repo/internal/logger"
)

// Repository is a constructed S3 repository. All accessors are read-only
// and safe for concurrent use.
type Repository struct {
	name   string
	config *Config
	store  *filestore.BlobStore
}

// New builds the storage client from cfg and wraps it into the blob store.
// The client connects lazily; no request is sent.
func New(ctx context.Context, name string, cfg *Config, factory filestore.ClientFactory) (*Repository, error) {
	client, err := factory.NewClient(ctx, cfg.ClientConfig())
	if err != nil {
		return nil, errs.ForRepository(name, err)
	}

	store := filestore.NewBlobStore(client, filestore.StoreOptions{
		Bucket:               cfg.Bucket,
		Region:               cfg.Region,
		ServerSideEncryption: cfg.ServerSideEncryption,
		BufferSize:           cfg.BufferSize,
		Encryption:           cfg.ClientSideEncryption,
	})

	return &Repository{name: name, config: cfg, store: store}, nil
}

// Open assembles the configuration from src and builds the repository.
// Construction is all-or-nothing.
func Open(ctx context.Context, name string, src Sources, factory filestore.ClientFactory, log *logger.Logger) (*Repository, error) {
	cfg, err := Assemble(name, src, log)
	if err != nil {
		return nil, err
	}
	return New(ctx, name, cfg, factory)
}

// Name returns the repository name.
func (r *Repository) Name() string {
	return r.name
}

// Config returns a copy of the resolved configuration.
func (r *Repository) Config() Config {
	return *r.config
}

// BlobStore returns the handle for snapshot I/O.
func (r *Repository) BlobStore() *filestore.BlobStore {
	return r.store
}

// BasePath returns the repository root inside the bucket.
func (r *Repository) BasePath() blobpath.Path {
	return r.config.BasePath
}

// Compress reports whether metadata files are stored compressed.
func (r *Repository) Compress() bool {
	return r.config.Compress
}

// ChunkSize is the size above which files are split into chunks.
func (r *Repository) ChunkSize() bytesize.Size {
	return r.config.ChunkSize
}

// Verify pings the bucket.
func (r *Repository) Verify(ctx context.Context) error {
	return errs.ForRepository(r.name, r.store.Ping(ctx))
}

// Close releases the storage client.
func (r *Repository) Close() error {
	return r.store.Close()
}
