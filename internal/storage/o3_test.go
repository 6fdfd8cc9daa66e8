package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/akave-ai/seclog/internal/config"
	"github.com/akave-ai/seclog/internal/model"
)

type fakeS3 struct {
	headErr   error
	createErr error
	putErr    error
	created   bool
	put       *s3.PutObjectInput
	body      []byte
}

func (f *fakeS3) HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.headErr
}

func (f *fakeS3) CreateBucket(context.Context, *s3.CreateBucketInput, ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.created = true
	return &s3.CreateBucketOutput{}, f.createErr
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.put = in
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = b
	return &s3.PutObjectOutput{}, nil
}

func TestNewO3Client_NilWithoutBucket(t *testing.T) {
	if c := NewO3Client(nil); c != nil {
		t.Fatal("expected nil client for nil config")
	}
	if c := NewO3Client(&config.O3Config{Endpoint: "http://localhost:9000"}); c != nil {
		t.Fatal("expected nil client without bucket")
	}
	if c := NewO3Client(&config.O3Config{Endpoint: "http://localhost:9000", Bucket: "logs"}); c == nil {
		t.Fatal("expected client")
	}
}

func TestArchiveBatch_UploadsGzipJSON(t *testing.T) {
	fake := &fakeS3{}
	c := newO3Client(fake, "audit", "")
	c.now = func() time.Time { return time.Date(2024, 2, 17, 23, 0, 0, 0, time.UTC) }

	data := `{"a":1}`
	records := []model.LogRecord{
		{LogType: "auth", Message: "login", Data: &data, Timestamp: "2024-02-17 23:00:00"},
		{LogType: "xss", Message: "alert", Timestamp: "raw"},
	}
	if err := c.ArchiveBatch(context.Background(), "b-1", records); err != nil {
		t.Fatalf("archive: %v", err)
	}

	if got := aws.ToString(fake.put.Key); got != "logs/2024/02/17/b-1.json.gz" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := aws.ToString(fake.put.Bucket); got != "audit" {
		t.Fatalf("unexpected bucket %q", got)
	}

	zr, err := gzip.NewReader(bytes.NewReader(fake.body))
	if err != nil {
		t.Fatalf("gzip: %v", err)
	}
	var decoded []model.LogRecord
	if err := json.NewDecoder(zr).Decode(&decoded); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(decoded) != 2 || decoded[0].Message != "login" || *decoded[0].Data != data || decoded[1].Data != nil {
		t.Fatalf("unexpected archive content: %+v", decoded)
	}
}

func TestArchiveBatch_PutError(t *testing.T) {
	cause := errors.New("access denied")
	c := newO3Client(&fakeS3{putErr: cause}, "audit", "archive")
	err := c.ArchiveBatch(context.Background(), "b-2", []model.LogRecord{{LogType: "a"}})
	if !errors.Is(err, cause) {
		t.Fatalf("expected put error, got %v", err)
	}
}

func TestEnsureBucket(t *testing.T) {
	notFound := errors.New("not found")

	tests := []struct {
		name        string
		fake        *fakeS3
		wantCreated bool
		wantErr     bool
	}{
		{"exists", &fakeS3{}, false, false},
		{"created", &fakeS3{headErr: notFound}, true, false},
		{"owned", &fakeS3{headErr: notFound, createErr: &smithy.GenericAPIError{Code: "BucketAlreadyOwnedByYou"}}, true, false},
		{"create fails", &fakeS3{headErr: notFound, createErr: errors.New("forbidden")}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newO3Client(tt.fake, "audit", "")
			err := c.EnsureBucket(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error=%v, got %v", tt.wantErr, err)
			}
			if tt.fake.created != tt.wantCreated {
				t.Fatalf("expected created=%v", tt.wantCreated)
			}
		})
	}
}
