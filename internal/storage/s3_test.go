package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = params
	f.body, _ = io.ReadAll(params.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestPut_ReturnsPublicURL(t *testing.T) {
	putter := &fakePutter{}
	store := NewS3ReceiptStore(putter, "fee-receipts", "ap-south-1")

	url, err := store.Put(context.Background(), "receipts/1_abc_slip.pdf", "application/pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)

	assert.Equal(t, "https://fee-receipts.s3.ap-south-1.amazonaws.com/receipts/1_abc_slip.pdf", url)
	assert.Equal(t, "fee-receipts", aws.ToString(putter.input.Bucket))
	assert.Equal(t, "receipts/1_abc_slip.pdf", aws.ToString(putter.input.Key))
	assert.Equal(t, "application/pdf", aws.ToString(putter.input.ContentType))
	assert.Equal(t, []byte("%PDF-1.4"), putter.body)
}

func TestPut_DefaultRegion(t *testing.T) {
	store := NewS3ReceiptStore(&fakePutter{}, "bucket", "")
	assert.Equal(t, "https://bucket.s3.us-east-1.amazonaws.com/k", store.URL("k"))
}

func TestPut_Errors(t *testing.T) {
	_, err := NewS3ReceiptStore(&fakePutter{}, "", "eu-west-1").Put(context.Background(), "k", "image/png", []byte{1})
	assert.ErrorIs(t, err, ErrBucketNotConfigured)

	boom := errors.New("access denied")
	_, err = NewS3ReceiptStore(&fakePutter{err: boom}, "b", "eu-west-1").Put(context.Background(), "k", "image/png", []byte{1})
	assert.ErrorIs(t, err, boom)
}
