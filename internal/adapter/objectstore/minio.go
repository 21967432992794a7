// Package objectstore provides MinIO-backed access to uploaded resume files.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hiresight/resume-ingest/internal/config"
	"github.com/hiresight/resume-ingest/internal/domain"
)

// MinioStore implements domain.ObjectStore against a MinIO/S3 bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore constructs a store and ensures the bucket exists.
func NewMinioStore(ctx context.Context, cfg config.Config) (*MinioStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("op=objectstore.new: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("op=objectstore.new: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("op=objectstore.new: %w", err)
		}
	}
	return &MinioStore{client: client, bucket: cfg.MinioBucket}, nil
}

// Download fetches one object by key.
func (s *MinioStore) Download(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("op=objectstore.download key=%s: %w", key, err)
	}
	defer func() { _ = obj.Close() }()

	data, err := io.ReadAll(obj)
	if err != nil {
		var mErr minio.ErrorResponse
		if errors.As(err, &mErr) && mErr.Code == "NoSuchKey" {
			return nil, fmt.Errorf("op=objectstore.download key=%s: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("op=objectstore.download key=%s: %w", key, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("op=objectstore.download key=%s: %w", key, domain.ErrNoData)
	}
	return data, nil
}
