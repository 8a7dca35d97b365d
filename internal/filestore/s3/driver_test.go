package s3

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/smithy-go"
	"github.com/koustreak/s3repo/internal/encryption"
	"github.com/koustreak/s3repo/internal/errs"
	"github.com/koustreak/s3repo/internal/filestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactory_Defaults(t *testing.T) {
	c, err := Factory{}.NewClient(context.Background(), &filestore.ClientConfig{
		Provider:   filestore.ProviderS3,
		AccessKey:  "ak",
		SecretKey:  "sk",
		MaxRetries: 3,
	})
	require.NoError(t, err)

	d, ok := c.(*Driver)
	require.True(t, ok)
	assert.Equal(t, filestore.ProviderS3, d.Provider())
	assert.Equal(t, DefaultRegion, d.S3().Options().Region)
	assert.Equal(t, 4, d.S3().Options().RetryMaxAttempts)
	assert.Nil(t, d.S3().Options().BaseEndpoint)
	assert.NoError(t, d.Close())
}

func TestFactory_CustomEndpoint(t *testing.T) {
	c, err := Factory{}.NewClient(context.Background(), &filestore.ClientConfig{
		Provider:  filestore.ProviderS3,
		Endpoint:  "localhost:9000",
		Protocol:  filestore.ProtocolHTTP,
		Region:    "eu-west-1",
		AccessKey: "ak",
		SecretKey: "sk",
	})
	require.NoError(t, err)

	opts := c.(*Driver).S3().Options()
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://localhost:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)
	assert.Equal(t, "eu-west-1", opts.Region)
	assert.Equal(t, "eu-west-1", c.(*Driver).Config().Region)
}

func TestFactory_RefusesClientSideEncryption(t *testing.T) {
	c, err := Factory{}.NewClient(context.Background(), &filestore.ClientConfig{
		Provider:   filestore.ProviderS3,
		Encryption: encryption.Symmetric(make([]byte, 32)),
	})
	assert.Nil(t, c)
	assert.True(t, errs.IsUnsupportedAlgorithm(err), "%v", err)
	assert.Contains(t, err.Error(), "[minio]")
}

func TestDriver_Ping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch strings.Trim(r.URL.Path, "/") {
		case "present":
			w.WriteHeader(http.StatusOK)
		case "forbidden":
			w.WriteHeader(http.StatusForbidden)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c, err := Factory{}.NewClient(context.Background(), &filestore.ClientConfig{
		Provider:  filestore.ProviderS3,
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		Protocol:  filestore.ProtocolHTTP,
		AccessKey: "ak",
		SecretKey: "sk",
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	assert.NoError(t, c.Ping(ctx, "present"))
	assert.True(t, errs.IsNotFound(c.Ping(ctx, "missing")))
	assert.True(t, errs.IsPermissionDenied(c.Ping(ctx, "forbidden")))
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind errs.ErrKind
	}{
		{"canceled", context.Canceled, errs.ErrKindTimeout},
		{"no such bucket", &smithy.GenericAPIError{Code: "NoSuchBucket"}, errs.ErrKindNotFound},
		{"access denied", &smithy.GenericAPIError{Code: "AccessDenied"}, errs.ErrKindPermissionDenied},
		{"slow down", &smithy.GenericAPIError{Code: "SlowDown"}, errs.ErrKindTimeout},
		{"other api error", &smithy.GenericAPIError{Code: "InternalError"}, errs.ErrKindConnectionFailed},
		{"dial", errors.New("dial tcp: connection refused"), errs.ErrKindConnectionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, errs.KindOf(mapError(tt.err, "ping failed")))
		})
	}
	assert.Nil(t, mapError(nil, "ping failed"))
}
