// Package minio provides a minio-go implementation of filestore.ClientFactory.
//
// The client speaks to AWS S3 and any S3-compatible store (MinIO, Ceph,
// Garage, …). Construction is lazy: no request is sent until the first
// operation or Ping. Driver.PutObject and Driver.GetObject apply the
// configured client-side encryption; the raw client from Minio does not.
//
// Usage:
//
//	client, err := minio.Factory{}.NewClient(ctx, &filestore.ClientConfig{
//	    Endpoint:  "localhost:9000",
//	    Protocol:  filestore.ProtocolHTTP,
//	    AccessKey: "minioadmin",
//	    SecretKey: "minioadmin",
//	})
package minio

import (
	"context"
	"io"
	"net/http"

	"github.com/koustreak/s3repo/internal/errs"
	"github.com/koustreak/s3repo/internal/filestore"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/encrypt"
)

// DefaultEndpoint is used when the configuration names no endpoint.
const DefaultEndpoint = "s3.amazonaws.com"

// Factory builds minio-go clients.
type Factory struct {
	// Transport overrides the HTTP transport. Nil uses minio's default.
	Transport http.RoundTripper
}

// NewClient implements filestore.ClientFactory.
func (f Factory) NewClient(_ context.Context, cfg *filestore.ClientConfig) (filestore.Client, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	client, err := miniogo.New(endpoint, &miniogo.Options{
		Creds:      credentialsFor(cfg),
		Secure:     cfg.UseSSL(),
		Region:     cfg.Region,
		Transport:  f.Transport,
		MaxRetries: cfg.MaxAttempts(),
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidSetting, "failed to create minio client", err)
	}

	return &Driver{client: client, cfg: *cfg}, nil
}

// credentialsFor returns static credentials when both keys are set and the
// ambient chain otherwise.
func credentialsFor(cfg *filestore.ClientConfig) *credentials.Credentials {
	if cfg.HasStaticCredentials() {
		return credentials.NewStaticV4(cfg.AccessKey.Reveal(), cfg.SecretKey.Reveal(), "")
	}
	return credentials.NewChainCredentials([]credentials.Provider{
		&credentials.EnvAWS{},
		&credentials.EnvMinio{},
		&credentials.FileAWSCredentials{},
		&credentials.IAM{Client: &http.Client{Transport: http.DefaultTransport}},
	})
}

// Driver is a minio-go backed filestore.Client.
// It is safe for concurrent use by multiple goroutines.
type Driver struct {
	client *miniogo.Client
	cfg    filestore.ClientConfig
}

// Minio returns the underlying minio-go client for blob I/O.
func (d *Driver) Minio() *miniogo.Client {
	return d.client
}

// Config returns the configuration the client was built from.
func (d *Driver) Config() filestore.ClientConfig {
	return d.cfg
}

// Provider implements filestore.Client.
func (d *Driver) Provider() filestore.Provider {
	return filestore.ProviderMinIO
}

// Ping checks that bucket exists and is accessible.
func (d *Driver) Ping(ctx context.Context, bucket string) error {
	ok, err := d.client.BucketExists(ctx, bucket)
	if err != nil {
		return mapError(err, "ping failed")
	}
	if !ok {
		return errs.Newf(errs.ErrKindNotFound, "bucket [%s] does not exist", bucket)
	}
	return nil
}

// userMetaPrefix is how user metadata comes back in object headers.
const userMetaPrefix = "X-Amz-Meta-"

// PutObject uploads size bytes from r under key. With client-side
// encryption configured the body is sealed first and the wrapped data key
// travels as user metadata. size may be -1 when unknown.
func (d *Driver) PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts miniogo.PutObjectOptions) (miniogo.UploadInfo, error) {
	material := d.cfg.Encryption

	body, meta, err := material.Seal(r)
	if err != nil {
		return miniogo.UploadInfo{}, err
	}
	if size, err = material.SealedSize(size); err != nil {
		return miniogo.UploadInfo{}, err
	}
	if len(meta) > 0 {
		merged := make(map[string]string, len(opts.UserMetadata)+len(meta))
		for k, v := range opts.UserMetadata {
			merged[k] = v
		}
		for k, v := range meta {
			merged[k] = v
		}
		opts.UserMetadata = merged
	}

	info, err := d.client.PutObject(ctx, bucket, key, body, size, opts)
	if err != nil {
		return info, mapError(err, "put failed")
	}
	return info, nil
}

// GetObject opens key for reading and decrypts it when client-side
// encryption is configured.
func (d *Driver) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	obj, err := d.client.GetObject(ctx, bucket, key, miniogo.GetObjectOptions{})
	if err != nil {
		return nil, mapError(err, "get failed")
	}
	if !d.cfg.Encryption.Enabled() {
		return obj, nil
	}

	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, mapError(err, "get failed")
	}
	plain, err := d.cfg.Encryption.Open(obj, func(name string) string {
		return info.Metadata.Get(userMetaPrefix + name)
	})
	if err != nil {
		_ = obj.Close()
		return nil, err
	}
	return decryptedObject{Reader: plain, Closer: obj}, nil
}

type decryptedObject struct {
	io.Reader
	io.Closer
}

// Close is a no-op; the SDK client holds no persistent connections.
func (d *Driver) Close() error {
	return nil
}

// PutOptions returns the upload options for objects written to store:
// SSE-S3 when server-side encryption is on, and the buffer size as the
// multipart part size when set.
func PutOptions(store *filestore.BlobStore) miniogo.PutObjectOptions {
	var opts miniogo.PutObjectOptions
	if store.ServerSideEncryption() {
		opts.ServerSideEncryption = encrypt.NewSSE()
	}
	if size, ok := store.BufferSize(); ok {
		opts.PartSize = uint64(size.Bytes())
	}
	return opts
}
