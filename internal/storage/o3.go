package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/akave-ai/seclog/internal/config"
	"github.com/akave-ai/seclog/internal/model"
)

const defaultPrefix = "logs"

// s3API is the part of *s3.Client the archive uses.
type s3API interface {
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, opts ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, in *s3.CreateBucketInput, opts ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// O3Client archives committed log batches to Akave O3 or any other
// S3-compatible bucket.
type O3Client struct {
	client s3API
	bucket string
	prefix string
	now    func() time.Time
}

// NewO3Client builds an S3-compatible client for the given O3 config.
// Returns nil if cfg is nil or endpoint/bucket are empty.
func NewO3Client(cfg *config.O3Config) *O3Client {
	if cfg == nil || cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	creds := credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
	client := s3.NewFromConfig(aws.Config{
		Region:      region,
		Credentials: aws.NewCredentialsCache(creds),
	}, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})
	return newO3Client(client, cfg.Bucket, cfg.Prefix)
}

func newO3Client(client s3API, bucket, prefix string) *O3Client {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &O3Client{client: client, bucket: bucket, prefix: prefix, now: time.Now}
}

// EnsureBucket creates the bucket if HeadBucket cannot find it.
func (c *O3Client) EnsureBucket(ctx context.Context) error {
	_, err := c.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucket)})
	if err == nil {
		return nil
	}
	_, createErr := c.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(c.bucket)})
	if createErr != nil {
		var apiErr smithy.APIError
		if errors.As(createErr, &apiErr) {
			switch apiErr.ErrorCode() {
			case "BucketAlreadyOwnedByYou", "BucketAlreadyExists":
				return nil
			}
		}
		return createErr
	}
	return nil
}

// ArchiveBatch uploads records as gzipped JSON under KeyForBatch.
func (c *O3Client) ArchiveBatch(ctx context.Context, batchID string, records []model.LogRecord) error {
	data, err := EncodeBatch(records)
	if err != nil {
		return err
	}
	key := KeyForBatch(c.prefix, batchID, c.now())
	_, err = c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:          aws.String(c.bucket),
		Key:             aws.String(key),
		Body:            bytes.NewReader(data),
		ContentType:     aws.String("application/json"),
		ContentEncoding: aws.String("gzip"),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// KeyForBatch returns the object key for a batch, e.g. logs/2024/02/17/<batch>.json.gz.
func KeyForBatch(prefix, batchID string, at time.Time) string {
	return path.Join(prefix, at.UTC().Format("2006/01/02"), batchID+".json.gz")
}

// EncodeBatch returns records as a gzip-compressed JSON array.
func EncodeBatch(records []model.LogRecord) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if err := json.NewEncoder(zw).Encode(records); err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	return buf.Bytes(), nil
}
