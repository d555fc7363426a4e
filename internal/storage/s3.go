// Package storage stores uploaded receipts in S3.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrBucketNotConfigured is returned when no bucket name is set.
var ErrBucketNotConfigured = errors.New("receipt bucket not configured")

// ObjectPutter is the subset of the S3 client used for uploads.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3ReceiptStore writes receipts to a single bucket.
type S3ReceiptStore struct {
	client ObjectPutter
	bucket string
	region string
}

// NewS3ReceiptStore creates a new S3ReceiptStore.
func NewS3ReceiptStore(client ObjectPutter, bucket, region string) *S3ReceiptStore {
	if region == "" {
		region = "us-east-1"
	}
	return &S3ReceiptStore{
		client: client,
		bucket: bucket,
		region: region,
	}
}

// Put uploads body under key and returns the object's public URL.
func (s *S3ReceiptStore) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	if s.bucket == "" {
		return "", ErrBucketNotConfigured
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	return s.URL(key), nil
}

// URL returns the virtual-hosted URL of key.
func (s *S3ReceiptStore) URL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
