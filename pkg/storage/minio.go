package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/cybrella/cybrella-api/pkg/config"
)

// MinioStorage stores uploads in an S3-compatible bucket. Objects are keyed
// <folder>/<filename> and exposed via the bucket's public base URL.
type MinioStorage struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinioStorage connects to the configured endpoint and ensures the bucket
// exists.
func NewMinioStorage(ctx context.Context, cfg config.UploadsConfig) (*MinioStorage, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect minio: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return &MinioStorage{
		client:    client,
		bucket:    cfg.MinioBucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
	}, nil
}

// Upload streams the blob into the bucket and returns its public URL.
func (s *MinioStorage) Upload(ctx context.Context, folder, filename string, r io.Reader, size int64, contentType string) (string, error) {
	key := folder + "/" + filename
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s.url(key), nil
}

// List returns the public URLs of every object under the folder prefix.
func (s *MinioStorage) List(ctx context.Context, folder string) ([]string, error) {
	urls := []string{}
	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    folder + "/",
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, fmt.Errorf("list objects in %s: %w", folder, object.Err)
		}
		urls = append(urls, s.url(object.Key))
	}
	return urls, nil
}

func (s *MinioStorage) url(key string) string {
	return fmt.Sprintf("%s/uploads/%s", s.publicURL, key)
}
