package repository

import (
	"github.com/koustreak/s3repo/internal/blobpath"
	"github.com/koustreak/s3repo/internal/bytesize"
	"github.com/koustreak/s3repo/internal/encryption"
	"github.com/koustreak/s3repo/internal/errs"
	"github.com/koustreak/s3repo/internal/filestore"
	"github.com/koustreak/s3repo/internal/logger"
	"github.com/koustreak/s3repo/internal/region"
	"github.com/koustreak/s3repo/internal/settings"
	"github.com/rs/zerolog"
)

// Type is the repository type name.
const Type = "s3"

// Setting names.
const (
	SettingBucket               = "bucket"
	SettingRegion               = "region"
	SettingGlobalRegion         = "cloud.aws.region"
	SettingEndpoint             = "endpoint"
	SettingProtocol             = "protocol"
	SettingProvider             = "provider"
	SettingAccessKey            = "access_key"
	SettingSecretKey            = "secret_key"
	SettingServerSideEncryption = "server_side_encryption"
	SettingSymmetricKey         = "client_side_encryption_key.symmetric"
	SettingPublicKey            = "client_side_encryption_key.public"
	SettingPrivateKey           = "client_side_encryption_key.private"
	SettingBufferSize           = "buffer_size"
	SettingMaxRetries           = "max_retries"
	SettingChunkSize            = "chunk_size"
	SettingCompress             = "compress"
	SettingBasePath             = "base_path"
)

// ComponentPrefix is where component-wide defaults live in node settings.
const ComponentPrefix = "repositories." + Type + "."

// Defaults applied when neither tier sets a value.
const (
	DefaultChunkSize  = 100 * bytesize.MiB
	DefaultMaxRetries = 3
)

// MaxRetriesLimit is the largest accepted max_retries value.
const MaxRetriesLimit = 100

// Sources are the settings tiers a repository is resolved from.
type Sources struct {
	// Repository holds the repository's own settings.
	Repository settings.Provider

	// Node holds node-wide settings. Component defaults are read from its
	// ComponentPrefix keys, the legacy region alias from cloud.aws.region.
	Node settings.Provider
}

func (s Sources) scoped() settings.Layers {
	return settings.Layers{s.Repository, settings.Prefix(s.Node, ComponentPrefix)}
}

func (s Sources) global() settings.Layers {
	return settings.Layers{s.Repository, s.Node}
}

// Config is the fully resolved repository configuration. It is built once
// by Assemble; a Repository hands out copies only.
type Config struct {
	Bucket               string
	Region               string // "" is the storage service default
	Endpoint             string // host[:port], "" for the provider default
	Protocol             filestore.Protocol
	Provider             filestore.Provider
	AccessKey            settings.Secret
	SecretKey            settings.Secret
	ServerSideEncryption bool
	ClientSideEncryption encryption.Material
	ChunkSize            bytesize.Size
	Compress             bool
	BufferSize           bytesize.Size // 0 when unset
	MaxRetries           int
	BasePath             blobpath.Path
}

// Assemble resolves a Config from src. Repository settings win over
// component defaults for every field. Failures are *errs.Error values
// stamped with name; nothing is returned on failure.
func Assemble(name string, src Sources, log *logger.Logger) (*Config, error) {
	cfg, err := assemble(src)
	if err != nil {
		return nil, errs.ForRepository(name, err)
	}
	if log != nil {
		log.DebugObject("resolved s3 repository settings", "repository_config", cfg)
	}
	return cfg, nil
}

func assemble(src Sources) (*Config, error) {
	scoped := src.scoped()

	bucket := settings.String(scoped, SettingBucket)
	if bucket == "" {
		return nil, errs.New(errs.ErrKindMissingBucket, "no bucket defined for s3 repository")
	}

	material, err := encryption.Build(encryption.Keys{
		Symmetric: settings.Secret(settings.String(scoped, SettingSymmetricKey)),
		Public:    settings.Secret(settings.String(scoped, SettingPublicKey)),
		Private:   settings.Secret(settings.String(scoped, SettingPrivateKey)),
	})
	if err != nil {
		return nil, err
	}

	endpoint, scheme, err := filestore.SplitEndpoint(settings.String(scoped, SettingEndpoint))
	if err != nil {
		return nil, err
	}
	protocol, err := filestore.ParseProtocol(settings.String(scoped, SettingProtocol))
	if err != nil {
		return nil, err
	}
	if protocol == "" {
		protocol = scheme
	}
	provider, err := filestore.ParseProvider(settings.String(scoped, SettingProvider))
	if err != nil {
		return nil, err
	}

	resolvedRegion := region.Resolve(
		settings.String(scoped, SettingRegion),
		settings.String(src.global(), SettingGlobalRegion),
	)

	sse, err := settings.Bool(scoped, SettingServerSideEncryption, false)
	if err != nil {
		return nil, err
	}
	compress, err := settings.Bool(scoped, SettingCompress, false)
	if err != nil {
		return nil, err
	}

	bufferSize, hasBuffer, err := settings.ByteSize(scoped, SettingBufferSize)
	if err != nil {
		return nil, err
	}
	if hasBuffer && bufferSize <= 0 {
		return nil, errs.Newf(errs.ErrKindInvalidSetting, "%s must be positive", SettingBufferSize)
	}

	maxRetries, err := settings.Int(scoped, SettingMaxRetries, DefaultMaxRetries)
	if err != nil {
		return nil, err
	}
	if maxRetries < 0 || maxRetries > MaxRetriesLimit {
		return nil, errs.Newf(errs.ErrKindInvalidSetting, "%s must be between 0 and %d, got %d",
			SettingMaxRetries, MaxRetriesLimit, maxRetries)
	}

	chunkSize, hasChunk, err := settings.ByteSize(scoped, SettingChunkSize)
	if err != nil {
		return nil, err
	}
	if !hasChunk {
		chunkSize = DefaultChunkSize
	}
	if chunkSize <= 0 {
		return nil, errs.Newf(errs.ErrKindInvalidSetting, "%s must be positive", SettingChunkSize)
	}

	return &Config{
		Bucket:               bucket,
		Region:               resolvedRegion,
		Endpoint:             endpoint,
		Protocol:             protocol,
		Provider:             provider,
		AccessKey:            settings.Secret(settings.String(scoped, SettingAccessKey)),
		SecretKey:            settings.Secret(settings.String(scoped, SettingSecretKey)),
		ServerSideEncryption: sse,
		ClientSideEncryption: material,
		ChunkSize:            chunkSize,
		Compress:             compress,
		BufferSize:           bufferSize,
		MaxRetries:           maxRetries,
		BasePath:             blobpath.Parse(settings.String(scoped, SettingBasePath)),
	}, nil
}

// ClientConfig returns the part of c the storage client is built from.
func (c Config) ClientConfig() *filestore.ClientConfig {
	return &filestore.ClientConfig{
		Provider:   c.Provider,
		Endpoint:   c.Endpoint,
		Protocol:   c.Protocol,
		Region:     c.Region,
		AccessKey:  c.AccessKey,
		SecretKey:  c.SecretKey,
		MaxRetries: c.MaxRetries,
		Encryption: c.ClientSideEncryption,
	}
}

// MarshalZerologObject writes the non-secret fields of c. Credentials and
// key material are never written; the encryption entry carries only the
// mode and key size.
func (c Config) MarshalZerologObject(e *zerolog.Event) {
	s := c.Summary()
	e.Str("bucket", s.Bucket).
		Str("region", s.Region).
		Str("endpoint", s.Endpoint).
		Str("protocol", s.Protocol).
		Str("provider", s.Provider).
		Str("chunk_size", s.ChunkSize).
		Bool("server_side_encryption", s.ServerSideEncryption).
		Str("buffer_size", s.BufferSize).
		Int("max_retries", s.MaxRetries).
		Object("client_side_encryption", c.ClientSideEncryption).
		Bool("compress", s.Compress).
		Str("base_path", s.BasePath).
		Bool("static_credentials", s.StaticCredentials)
}

// Summary is the printable, secret-free view of a Config.
type Summary struct {
	Bucket               string `json:"bucket"`
	Region               string `json:"region"`
	Endpoint             string `json:"endpoint"`
	Protocol             string `json:"protocol"`
	Provider             string `json:"provider"`
	ChunkSize            string `json:"chunk_size"`
	Compress             bool   `json:"compress"`
	ServerSideEncryption bool   `json:"server_side_encryption"`
	ClientSideEncryption string `json:"client_side_encryption"`
	BufferSize           string `json:"buffer_size"`
	MaxRetries           int    `json:"max_retries"`
	BasePath             string `json:"base_path"`
	StaticCredentials    bool   `json:"static_credentials"`
}

// Summary returns the secret-free view of c.
func (c Config) Summary() Summary {
	s := Summary{
		Bucket:               c.Bucket,
		Region:               c.Region,
		Endpoint:             c.Endpoint,
		Protocol:             string(c.Protocol),
		Provider:             string(c.Provider),
		ChunkSize:            c.ChunkSize.String(),
		Compress:             c.Compress,
		ServerSideEncryption: c.ServerSideEncryption,
		ClientSideEncryption: c.ClientSideEncryption.Kind().String(),
		MaxRetries:           c.MaxRetries,
		BasePath:             c.BasePath.String(),
		StaticCredentials:    c.AccessKey.IsSet() && c.SecretKey.IsSet(),
	}
	if c.BufferSize > 0 {
		s.BufferSize = c.BufferSize.String()
	}
	return s
}
