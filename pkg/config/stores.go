package config

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/marmos91/depot/pkg/credentials"
	"github.com/marmos91/depot/pkg/store/blob"
	"github.com/marmos91/depot/pkg/store/blob/badger"
	"github.com/marmos91/depot/pkg/store/blob/filesystem"
	"github.com/marmos91/depot/pkg/store/blob/memory"
	"github.com/marmos91/depot/pkg/store/blob/s3"
)

// StorageConfig selects and configures the blob store backend.
//
// Backend-specific settings live in the matching subsection and are decoded
// with mapstructure when the backend is constructed, so unknown subsections
// for other backends are ignored rather than rejected.
type StorageConfig struct {
	// Backend selects the blob store implementation.
	// Valid values: memory, filesystem, s3, badger
	// Default: filesystem
	Backend string `mapstructure:"backend" validate:"required,oneof=memory filesystem s3 badger" yaml:"backend"`

	// CredentialsKey is the blob key the credential document lives under.
	// Default: "_credentials.yaml"
	CredentialsKey string `mapstructure:"credentials_key" validate:"required" yaml:"credentials_key"`

	// Filesystem contains filesystem backend settings
	Filesystem map[string]interface{} `mapstructure:"filesystem" yaml:"filesystem,omitempty"`

	// S3 contains S3 backend settings
	S3 map[string]interface{} `mapstructure:"s3" yaml:"s3,omitempty"`

	// Badger contains BadgerDB backend settings
	Badger map[string]interface{} `mapstructure:"badger" yaml:"badger,omitempty"`
}

// FilesystemStorageConfig contains filesystem backend settings.
type FilesystemStorageConfig struct {
	// Root is the directory blobs are stored under (required)
	Root string `mapstructure:"root"`
}

// S3StorageConfig contains S3 backend settings.
type S3StorageConfig struct {
	// Bucket is the S3 bucket name (required)
	Bucket string `mapstructure:"bucket"`

	// Region is the AWS region
	Region string `mapstructure:"region"`

	// Endpoint is a custom endpoint URL for S3-compatible stores (MinIO, etc.)
	Endpoint string `mapstructure:"endpoint"`

	// AccessKeyID and SecretAccessKey are static credentials for the
	// target endpoint
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`

	// KeyPrefix is an optional prefix for all object keys
	KeyPrefix string `mapstructure:"key_prefix"`

	// ForcePathStyle enables path-style addressing, required by most
	// S3-compatible endpoints
	ForcePathStyle bool `mapstructure:"force_path_style"`
}

// BadgerStorageConfig contains BadgerDB backend settings.
type BadgerStorageConfig struct {
	// Path is the directory for the BadgerDB database files (required)
	Path string `mapstructure:"path"`
}

// CreateBlobStore creates a blob store instance from configuration.
func CreateBlobStore(ctx context.Context, cfg StorageConfig) (blob.BlobStore, error) {
	switch cfg.Backend {
	case "memory":
		return memory.NewMemoryBlobStore(), nil
	case "filesystem":
		return createFilesystemBlobStore(cfg.Filesystem)
	case "s3":
		return createS3BlobStore(ctx, cfg.S3)
	case "badger":
		return createBadgerBlobStore(cfg.Badger)
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", cfg.Backend)
	}
}

// createFilesystemBlobStore creates a filesystem-backed blob store.
func createFilesystemBlobStore(raw map[string]interface{}) (blob.BlobStore, error) {
	var cfg FilesystemStorageConfig
	if err := mapstructure.Decode(raw, &cfg); err != nil {
		return nil, fmt.Errorf("invalid filesystem storage config: %w", err)
	}

	if cfg.Root == "" {
		return nil, fmt.Errorf("filesystem storage requires root to be set")
	}

	return filesystem.NewFilesystemBlobStore(cfg.Root)
}

// createS3BlobStore creates an S3-backed blob store.
func createS3BlobStore(ctx context.Context, raw map[string]interface{}) (blob.BlobStore, error) {
	var cfg S3StorageConfig
	if err := mapstructure.Decode(raw, &cfg); err != nil {
		return nil, fmt.Errorf("invalid s3 storage config: %w", err)
	}

	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 storage requires bucket to be set")
	}

	client, err := s3.NewS3ClientFromConfig(ctx,
		cfg.Endpoint,
		cfg.Region,
		cfg.AccessKeyID,
		cfg.SecretAccessKey,
		cfg.ForcePathStyle,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}

	return s3.NewS3BlobStore(s3.S3BlobStoreConfig{
		Client:    client,
		Bucket:    cfg.Bucket,
		KeyPrefix: cfg.KeyPrefix,
	})
}

// createBadgerBlobStore creates a BadgerDB-backed blob store.
func createBadgerBlobStore(raw map[string]interface{}) (blob.BlobStore, error) {
	var cfg BadgerStorageConfig
	if err := mapstructure.Decode(raw, &cfg); err != nil {
		return nil, fmt.Errorf("invalid badger storage config: %w", err)
	}

	if cfg.Path == "" {
		return nil, fmt.Errorf("badger storage requires path to be set")
	}

	return badger.NewBadgerBlobStore(cfg.Path)
}

// CreateCredentialStore creates the credential store over an already
// constructed blob store, using the configured document key.
func CreateCredentialStore(cfg StorageConfig, bs blob.BlobStore, metrics credentials.Metrics) *credentials.CredentialStore {
	return credentials.NewCredentialStore(bs, blob.Key(cfg.CredentialsKey), metrics)
}
