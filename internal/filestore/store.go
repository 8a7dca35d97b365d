// Package filestore defines the object-store client contract and the blob
// store handle handed to snapshot I/O.
//
// Providers (minio-go, aws-sdk-go-v2) implement ClientFactory. Building a
// client never touches the network; connectivity problems surface on the
// first request or on an explicit Ping.
//
// Usage:
//
//	factory := filestore.Factories{
//	    filestore.ProviderMinIO: minio.Factory{},
//	    filestore.ProviderS3:    s3.Factory{},
//	}
//	client, err := factory.NewClient(ctx, &filestore.ClientConfig{Provider: filestore.ProviderMinIO})
//	store := filestore.NewBlobStore(client, filestore.StoreOptions{Bucket: "snapshots"})
package filestore

import (
	"context"

	"github.com/koustreak/s3repo/internal/errs"
)

// Client is a lazily connecting object-store client.
// Implementations must be safe for concurrent use.
type Client interface {
	// Provider names the library behind the client.
	Provider() Provider

	// Ping verifies bucket is reachable with the configured credentials.
	Ping(ctx context.Context, bucket string) error

	// Close releases any held resources.
	Close() error
}

// ClientFactory builds a Client from a ClientConfig.
type ClientFactory interface {
	NewClient(ctx context.Context, cfg *ClientConfig) (Client, error)
}

// ClientFactoryFunc adapts a function to ClientFactory.
type ClientFactoryFunc func(ctx context.Context, cfg *ClientConfig) (Client, error)

// NewClient implements ClientFactory.
func (f ClientFactoryFunc) NewClient(ctx context.Context, cfg *ClientConfig) (Client, error) {
	return f(ctx, cfg)
}

// Factories dispatches to the factory registered for cfg.Provider.
type Factories map[Provider]ClientFactory

// NewClient implements ClientFactory.
func (fs Factories) NewClient(ctx context.Context, cfg *ClientConfig) (Client, error) {
	f, ok := fs[cfg.Provider]
	if !ok {
		return nil, errs.Newf(errs.ErrKindInvalidSetting, "no client factory for provider [%s]", cfg.Provider)
	}
	return f.NewClient(ctx, cfg)
}
