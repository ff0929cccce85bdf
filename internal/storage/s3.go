package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOProvider implements Provider against any S3-compatible endpoint
// (MinIO, Ceph RGW, Backblaze B2 S3 gateway, ...). Used whenever
// S3_ENDPOINT_URL is set; AWSProvider handles the real-AWS case.
type MinIOProvider struct {
	client     *minio.Client
	bucketName string
	kmsKeyID   string
}

func NewMinIOProvider(endpoint, accessKey, secretKey, bucket, kmsKeyID string, useSSL bool) (*MinIOProvider, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	p := &MinIOProvider{client: client, bucketName: bucket, kmsKeyID: kmsKeyID}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return p, nil
}

func (p *MinIOProvider) Put(ctx context.Context, path string, data io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	opts := minio.PutObjectOptions{ContentType: contentType}
	if p.kmsKeyID != "" {
		opts.ServerSideEncryption = encryptSSEKMS(p.kmsKeyID)
	}

	_, err := p.client.PutObject(ctx, p.bucketName, path, data, size, opts)
	if err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}
	return nil
}

func (p *MinIOProvider) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	obj, err := p.client.GetObject(ctx, p.bucketName, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to open object: %w", err)
	}

	// minio-go defers the actual network round-trip to the first Read,
	// so surface a not-found error now rather than on the caller's
	// first read.
	if _, err := obj.Stat(); err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat object: %w", err)
	}

	return obj, nil
}

func (p *MinIOProvider) Delete(ctx context.Context, path string) error {
	if err := p.client.RemoveObject(ctx, p.bucketName, path, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func encryptSSEKMS(keyID string) minio.ServerSideEncryption {
	return minio.NewSSEKMS(keyID, nil)
}
