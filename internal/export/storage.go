// internal/export/storage.go
package export

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/gustirama/shelfsense/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStorage uploads run reports to a remote bucket.
type ObjectStorage interface {
	UploadFile(ctx context.Context, key, path string) error
}

// MinioStorage implements ObjectStorage against any S3-compatible endpoint.
type MinioStorage struct {
	client *minio.Client
	bucket string
}

func NewMinioStorage(cfg config.ExportConfig) (*MinioStorage, error) {
	if cfg.S3Endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint must be provided")
	}
	if cfg.S3AccessKey == "" || cfg.S3SecretKey == "" {
		return nil, fmt.Errorf("s3 credentials must be provided")
	}
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 bucket must be provided")
	}

	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build s3 client: %w", err)
	}

	return &MinioStorage{client: client, bucket: cfg.S3Bucket}, nil
}

func (s *MinioStorage) UploadFile(ctx context.Context, key, path string) error {
	contentType := "text/csv"
	if filepath.Ext(path) == ".json" {
		contentType = "application/json"
	}

	_, err := s.client.FPutObject(ctx, s.bucket, key, path, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return nil
}

var _ ObjectStorage = (*MinioStorage)(nil)
