package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// RemoteStore mirrors artifact bytes to an object store. Uploads are
// best-effort from the caller's point of view: a failed upload never
// invalidates the local copy.
type RemoteStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// MinioStore is the S3-compatible RemoteStore implementation.
type MinioStore struct {
	client   *minio.Client
	endpoint string
	bucket   string
	useSSL   bool
}

// NewMinioStore connects to the object store and ensures the bucket
// exists. A bucket-creation failure is logged, not fatal: the first
// upload will surface the real error.
func NewMinioStore(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect remote store: %w", err)
	}

	s := &MinioStore{client: client, endpoint: endpoint, bucket: bucket, useSSL: useSSL}

	exists, err := client.BucketExists(context.Background(), bucket)
	if err != nil {
		log.Printf("Remote store: bucket check failed: %v", err)
		return s, nil
	}
	if !exists {
		if err := client.MakeBucket(context.Background(), bucket, minio.MakeBucketOptions{}); err != nil {
			log.Printf("Remote store: bucket create failed: %v", err)
		}
	}
	return s, nil
}

// Upload writes data under key and returns the object's URL.
func (s *MinioStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.endpoint, s.bucket, key), nil
}
