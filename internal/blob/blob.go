// Package blob reads uploaded files from object storage.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ErrNotFound is returned when no object exists at the requested key.
var ErrNotFound = errors.New("object not found")

// Reader fetches raw object contents by bucket and key.
type Reader interface {
	Fetch(ctx context.Context, bucket, key string) (string, error)
}

// s3API is the subset of the S3 client used here, narrowed for testing.
type s3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Reader reads objects from S3.
type S3Reader struct {
	client s3API
}

// NewS3Reader wraps an S3 client.
func NewS3Reader(client s3API) *S3Reader {
	return &S3Reader{client: client}
}

// Fetch downloads the object and returns its contents as text.
func (r *S3Reader) Fetch(ctx context.Context, bucket, key string) (string, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return "", fmt.Errorf("s3://%s/%s: %w", bucket, key, ErrNotFound)
		}
		return "", fmt.Errorf("fetching s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", fmt.Errorf("reading s3://%s/%s body: %w", bucket, key, err)
	}
	return string(data), nil
}
