package output

import (
	"bytes"
	"context"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	cerrors "github.com/r3d91ll/tempchart/pkg/errors"
)

// ObjectStoreConfig describes an S3-compatible bucket.
type ObjectStoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Prefix    string
}

// objectStore is the subset of *minio.Client used by ObjectSink.
type objectStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// ObjectSink uploads artifacts to an S3-compatible bucket.
type ObjectSink struct {
	client objectStore
	bucket string
	prefix string
}

// NewObjectSink connects to the configured endpoint. The endpoint may carry
// an http:// or https:// scheme; https enables TLS.
func NewObjectSink(cfg ObjectStoreConfig) (*ObjectSink, error) {
	endpoint := sanitizeEndpoint(cfg.Endpoint)
	useSSL := strings.HasPrefix(strings.ToLower(cfg.Endpoint), "https")
	client, err := minio.New(endpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       useSSL,
		Region:       cfg.Region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, cerrors.StorageWrap(err, cerrors.ErrStorageConnectFailed, "failed to create object storage client").
			WithContext("endpoint", cfg.Endpoint)
	}
	return &ObjectSink{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func (s *ObjectSink) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err == nil && exists {
		return nil
	}
	err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
		return cerrors.StorageWrap(err, cerrors.ErrStorageBucketFailed, "failed to ensure bucket").
			WithContext("bucket", s.bucket)
	}
	return nil
}

// Key returns the object key for an artifact.
func (s *ObjectSink) Key(a Artifact) string {
	name := a.Name
	if name == "" {
		name = DefaultName
	}
	return path.Join(s.prefix, name)
}

// Write implements Sink. The returned location is s3://bucket/key.
func (s *ObjectSink) Write(ctx context.Context, a Artifact) (string, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return "", err
	}
	key := s.Key(a)
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(a.Data), int64(len(a.Data)), minio.PutObjectOptions{
		ContentType:      a.ContentType,
		DisableMultipart: len(a.Data) < 5*1024*1024,
	})
	if err != nil {
		return "", cerrors.StorageWrap(err, cerrors.ErrStorageUploadFailed, "failed to upload chart").
			WithContext("bucket", s.bucket).
			WithContext("key", key)
	}
	return "s3://" + s.bucket + "/" + key, nil
}

// sanitizeEndpoint removes schemes and paths to satisfy minio.New.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if i := strings.Index(raw, "/"); i >= 0 {
		raw = raw[:i]
	}
	return raw
}
