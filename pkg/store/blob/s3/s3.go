// Package s3 implements blob storage backed by Amazon S3 or any
// S3-compatible object store (MinIO, Ceph RGW, etc.).
//
// Key Design:
//   - blob.Key maps directly to the object key, below an optional KeyPrefix
//   - Objects are written with a single PutObject call; credential documents
//     and other control-plane blobs are far below multipart thresholds
//
// Consistency:
// S3 provides read-after-write consistency for new objects but concurrent
// PutObject calls on the same key resolve last-writer-wins, matching the
// BlobStore contract.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/marmos91/depot/internal/telemetry"
	"github.com/marmos91/depot/pkg/store/blob"
)

// S3BlobStore is an S3-backed implementation of blob.BlobStore.
//
// Thread Safety:
// The underlying s3.Client is safe for concurrent use; S3BlobStore carries
// no mutable state of its own.
type S3BlobStore struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
}

// S3BlobStoreConfig contains configuration for the S3 blob store.
type S3BlobStoreConfig struct {
	// Client is the configured S3 client (required).
	Client *s3.Client

	// Bucket is the S3 bucket name (required). The bucket must already
	// exist; this store does not create it.
	Bucket string

	// KeyPrefix is an optional prefix for all object keys.
	// Example: "depot/" results in keys like "depot/_credentials.yaml".
	KeyPrefix string
}

// NewS3ClientFromConfig creates an S3 client from configuration parameters.
// This is a helper for creating clients from YAML configuration, including
// S3-compatible endpoints that need path-style addressing.
func NewS3ClientFromConfig(
	ctx context.Context,
	endpoint,
	region,
	accessKeyID,
	secretAccessKey string,
	forcePathStyle bool,
) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID,
			secretAccessKey,
			"", // session token (empty for static credentials)
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = &endpoint
		}
		o.UsePathStyle = forcePathStyle
	})

	return client, nil
}

// NewS3BlobStore creates a new S3-backed blob store.
func NewS3BlobStore(cfg S3BlobStoreConfig) (*S3BlobStore, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("S3 client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	return &S3BlobStore{
		client:    cfg.Client,
		bucket:    cfg.Bucket,
		keyPrefix: cfg.KeyPrefix,
	}, nil
}

// objectKey prepends the configured prefix to a blob key.
func (s *S3BlobStore) objectKey(key blob.Key) string {
	return s.keyPrefix + string(key)
}

// Exists reports whether the key is present, using a HeadObject request.
func (s *S3BlobStore) Exists(ctx context.Context, key blob.Key) (bool, error) {
	ctx, span := telemetry.StartBlobSpan(ctx, "exists", string(key), telemetry.Bucket(s.bucket))
	defer span.End()

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		telemetry.RecordError(ctx, err)
		return false, fmt.Errorf("%w: %v", blob.ErrUnavailable, err)
	}
	return true, nil
}

// Get returns the full object for the key.
func (s *S3BlobStore) Get(ctx context.Context, key blob.Key) ([]byte, error) {
	ctx, span := telemetry.StartBlobSpan(ctx, "get", string(key), telemetry.Bucket(s.bucket))
	defer span.End()

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, blob.ErrNotFound
		}
		telemetry.RecordError(ctx, err)
		return nil, fmt.Errorf("%w: %v", blob.ErrUnavailable, err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return nil, fmt.Errorf("%w: %v", blob.ErrUnavailable, err)
	}
	return data, nil
}

// Put stores the full object under the key.
func (s *S3BlobStore) Put(ctx context.Context, key blob.Key, data []byte) error {
	ctx, span := telemetry.StartBlobSpan(ctx, "put", string(key), telemetry.Bucket(s.bucket))
	defer span.End()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		telemetry.RecordError(ctx, err)
		return fmt.Errorf("%w: %v", blob.ErrUnavailable, err)
	}
	return nil
}

// List returns all keys with the given prefix in lexicographic order.
func (s *S3BlobStore) List(ctx context.Context, prefix blob.Key) ([]blob.Key, error) {
	ctx, span := telemetry.StartBlobSpan(ctx, "list", string(prefix), telemetry.Bucket(s.bucket))
	defer span.End()

	var keys []blob.Key

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.keyPrefix + string(prefix)),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			telemetry.RecordError(ctx, err)
			return nil, fmt.Errorf("%w: %v", blob.ErrUnavailable, err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			k := *obj.Key
			if len(k) < len(s.keyPrefix) {
				continue
			}
			keys = append(keys, blob.Key(k[len(s.keyPrefix):]))
		}
	}

	// S3 lists in lexicographic order already; keep the guarantee explicit
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys, nil
}

// isNotFound reports whether err is an S3 absence error (NoSuchKey from
// GetObject, NotFound from HeadObject).
func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *types.NotFound
	return errors.As(err, &notFound)
}
