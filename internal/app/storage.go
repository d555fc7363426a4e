package app

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"feeportal/internal/config"
	"feeportal/internal/storage"
)

// NewReceiptStore builds the S3-backed receipt store. Credentials come from
// the default AWS chain (AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY, profile or role).
func NewReceiptStore(ctx context.Context, cfg config.StorageConfig) (*storage.S3ReceiptStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return storage.NewS3ReceiptStore(s3.NewFromConfig(awsCfg), cfg.Bucket, cfg.Region), nil
}
