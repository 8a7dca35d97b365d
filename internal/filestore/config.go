package filestore

import (
	"net/url"
	"strings"

	"github.com/koustreak/s3repo/internal/encryption"
	"github.com/koustreak/s3repo/internal/errs"
	"github.com/koustreak/s3repo/internal/settings"
)

// Provider identifies the client library used to talk to the object store.
type Provider string

const (
	ProviderMinIO Provider = "minio" // minio-go, works with AWS and S3-compatible stores
	ProviderS3    Provider = "s3"    // aws-sdk-go-v2
)

// DefaultProvider is used when no provider setting is present.
const DefaultProvider = ProviderMinIO

// ParseProvider validates a provider setting. "" yields DefaultProvider.
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return DefaultProvider, nil
	case ProviderMinIO, ProviderS3:
		return p, nil
	}
	return "", errs.Newf(errs.ErrKindInvalidSetting, "unknown storage provider [%s]", s)
}

// Protocol is the transport used to reach the endpoint.
type Protocol string

const (
	ProtocolHTTP  Protocol = "http"
	ProtocolHTTPS Protocol = "https"
)

// ParseProtocol validates a protocol setting. "" means unset.
func ParseProtocol(s string) (Protocol, error) {
	switch p := Protocol(strings.ToLower(strings.TrimSpace(s))); p {
	case "", ProtocolHTTP, ProtocolHTTPS:
		return p, nil
	}
	return "", errs.Newf(errs.ErrKindInvalidSetting, "protocol must be http or https, got [%s]", s)
}

// SplitEndpoint separates an optional scheme from an endpoint setting:
// "http://localhost:9000" yields ("localhost:9000", ProtocolHTTP).
func SplitEndpoint(raw string) (host string, scheme Protocol, err error) {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		return strings.TrimSuffix(raw, "/"), "", nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", errs.Wrap(errs.ErrKindInvalidSetting, "invalid endpoint", err)
	}
	scheme, err = ParseProtocol(u.Scheme)
	if err != nil {
		return "", "", err
	}
	if u.Host == "" || (u.Path != "" && u.Path != "/") {
		return "", "", errs.Newf(errs.ErrKindInvalidSetting, "endpoint [%s] must be host[:port]", raw)
	}
	return u.Host, scheme, nil
}

// ClientConfig holds everything a ClientFactory needs to build a client.
type ClientConfig struct {
	// Provider selects the ClientFactory in a Factories map.
	Provider Provider

	// Endpoint is host[:port] of the object store. Empty means the
	// provider's AWS default.
	Endpoint string

	// Protocol is http or https. Empty means https.
	Protocol Protocol

	// Region is the signing region. Empty lets the client choose.
	Region string

	// AccessKey and SecretKey are static credentials. When unset the client
	// falls back to the ambient credential chain (env, shared files, IAM).
	AccessKey settings.Secret
	SecretKey settings.Secret

	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// Encryption is the client-side envelope encryption material.
	Encryption encryption.Material
}

// UseSSL reports whether the connection uses TLS.
func (c *ClientConfig) UseSSL() bool {
	return c.Protocol != ProtocolHTTP
}

// HasStaticCredentials reports whether both access and secret key are set.
func (c *ClientConfig) HasStaticCredentials() bool {
	return c.AccessKey.IsSet() && c.SecretKey.IsSet()
}

// EndpointURL returns the endpoint with its scheme, or "" when unset.
func (c *ClientConfig) EndpointURL() string {
	if c.Endpoint == "" {
		return ""
	}
	scheme := ProtocolHTTPS
	if !c.UseSSL() {
		scheme = ProtocolHTTP
	}
	return string(scheme) + "://" + c.Endpoint
}

// MaxAttempts is MaxRetries plus the first attempt.
func (c *ClientConfig) MaxAttempts() int {
	return c.MaxRetries + 1
}
