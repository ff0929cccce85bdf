package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// AWSProvider implements Provider against real AWS S3 using the
// default credential chain (env vars, shared config, instance/task
// role). Used when STORAGE_BACKEND=s3 and S3_ENDPOINT_URL is unset —
// MinIOProvider covers the custom-endpoint case.
type AWSProvider struct {
	client   *s3.Client
	bucket   string
	kmsKeyID string
}

func NewAWSProvider(ctx context.Context, region, bucket, kmsKeyID string) (*AWSProvider, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSProvider{
		client:   s3.NewFromConfig(cfg),
		bucket:   bucket,
		kmsKeyID: kmsKeyID,
	}, nil
}

func (p *AWSProvider) Put(ctx context.Context, path string, data io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// s3.Client requires a seekable body for SigV4 payload signing with
	// a known length; buffer here since fax artifacts are small PDFs.
	buf, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("failed to buffer upload body: %w", err)
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(path),
		Body:        bytes.NewReader(buf),
		ContentType: aws.String(contentType),
	}
	if p.kmsKeyID != "" {
		input.ServerSideEncryption = types.ServerSideEncryptionAwsKms
		input.SSEKMSKeyId = aws.String(p.kmsKeyID)
	}

	if _, err := p.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}
	return nil
}

func (p *AWSProvider) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	out, err := p.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	return out.Body, nil
}

func (p *AWSProvider) Delete(ctx context.Context, path string) error {
	_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}
