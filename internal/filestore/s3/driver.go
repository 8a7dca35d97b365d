// Package s3 provides an aws-sdk-go-v2 implementation of
// filestore.ClientFactory.
//
// # Usage
//
//	client, err := s3.Factory{}.NewClient(ctx, &filestore.ClientConfig{
//	    Provider: filestore.ProviderS3,
//	    Region:   "eu-central-1",
//	})
//
// Credentials come from the config when both keys are set, otherwise from
// the SDK default chain. A custom endpoint switches to path-style
// addressing, which S3-compatible stores expect. Client-side encryption is
// not implemented here; configurations that carry key material are refused.
package s3

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/koustreak/s3repo/internal/errs"
	"github.com/koustreak/s3repo/internal/filestore"
)

// DefaultRegion is used when no region was resolved, matching the legacy
// us-east default.
const DefaultRegion = "us-east-1"

// Factory builds aws-sdk-go-v2 S3 clients.
type Factory struct {
	// HTTPClient overrides the SDK HTTP client. Nil uses the SDK default.
	HTTPClient aws.HTTPClient
}

// NewClient implements filestore.ClientFactory. It reads the SDK's shared
// config files but performs no network I/O.
func (f Factory) NewClient(ctx context.Context, cfg *filestore.ClientConfig) (filestore.Client, error) {
	if cfg.Encryption.Enabled() {
		return nil, errs.Newf(errs.ErrKindUnsupportedAlgorithm,
			"client-side encryption is not supported by the [%s] provider, use [%s]",
			filestore.ProviderS3, filestore.ProviderMinIO)
	}

	region := cfg.Region
	if region == "" {
		region = DefaultRegion
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
		config.WithRetryMaxAttempts(cfg.MaxAttempts()),
	}
	if cfg.HasStaticCredentials() {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey.Reveal(), cfg.SecretKey.Reveal(), ""),
		))
	}
	if f.HTTPClient != nil {
		opts = append(opts, config.WithHTTPClient(f.HTTPClient))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidSetting, "failed to load AWS config", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint := cfg.EndpointURL(); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &Driver{client: client, cfg: *cfg}, nil
}

// Driver is an aws-sdk-go-v2 backed filestore.Client.
type Driver struct {
	client *s3.Client
	cfg    filestore.ClientConfig
}

// S3 returns the underlying SDK client for blob I/O.
func (d *Driver) S3() *s3.Client {
	return d.client
}

// Config returns the configuration the client was built from.
func (d *Driver) Config() filestore.ClientConfig {
	return d.cfg
}

// Provider implements filestore.Client.
func (d *Driver) Provider() filestore.Provider {
	return filestore.ProviderS3
}

// Ping issues HeadBucket.
func (d *Driver) Ping(ctx context.Context, bucket string) error {
	_, err := d.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

// Close is a no-op.
func (d *Driver) Close() error {
	return nil
}

func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchBucket":
			return errs.Wrap(errs.ErrKindNotFound, msg, err)
		case "Forbidden", "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return errs.Wrap(errs.ErrKindPermissionDenied, msg, err)
		case "RequestTimeout", "SlowDown":
			return errs.Wrap(errs.ErrKindTimeout, msg, err)
		}
	}
	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}
