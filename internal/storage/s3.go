package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	applog "avtosotuv/internal/log"
)

// S3 stores images in an S3-compatible bucket.
type S3 struct {
	client *minio.Client
	bucket string
}

func NewS3(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*S3, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client for %s: %w", endpoint, err)
	}

	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		exists, errExists := client.BucketExists(ctx, bucket)
		if errExists != nil || !exists {
			return nil, fmt.Errorf("make bucket %s: %w", bucket, err)
		}
	}
	applog.L().Info("storage.s3.ready", zap.String("endpoint", endpoint), zap.String("bucket", bucket))
	return &S3{client: client, bucket: bucket}, nil
}

// Save uploads data as cars/<uuid><ext> and returns the object URL.
func (s *S3) Save(ctx context.Context, ext, contentType string, data []byte) (string, error) {
	key := "cars/" + uuid.NewString() + ext
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return fmt.Sprintf("%s/%s/%s", s.client.EndpointURL().String(), s.bucket, key), nil
}
