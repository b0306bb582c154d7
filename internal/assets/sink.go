package assets

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/lamim/storyforge/internal/config"
)

// Sink stores a generated asset under a slash-separated key and returns
// where it ended up.
type Sink interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// LocalSink writes assets below a root directory
type LocalSink struct {
	root string
}

// NewLocalSink creates a sink rooted at dir
func NewLocalSink(dir string) *LocalSink {
	return &LocalSink{root: dir}
}

// Put writes data to root/key and returns the file path
func (s *LocalSink) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	rel := filepath.FromSlash(key)
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("asset key %q escapes the output directory", key)
	}

	p := filepath.Join(s.root, rel)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return "", fmt.Errorf("failed to create asset directory: %w", err)
	}
	if err := os.WriteFile(p, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write asset: %w", err)
	}
	return p, nil
}

// S3Sink uploads assets to an S3-compatible bucket
type S3Sink struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Sink builds an S3 client from the storage config. A custom endpoint
// switches to path-style addressing for MinIO and similar services. Static
// credentials are used when both keys are set, the default chain otherwise.
func NewS3Sink(ctx context.Context, cfg config.StorageConfig, secrets *config.Secrets) (*S3Sink, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if secrets != nil && secrets.S3AccessKey != "" && secrets.S3SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(secrets.S3AccessKey, secrets.S3SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Sink{
		client: client,
		bucket: cfg.S3Bucket,
		prefix: cfg.S3Prefix,
	}, nil
}

// Put uploads data and returns an s3:// reference
func (s *S3Sink) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	objectKey := path.Join(s.prefix, key)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectKey, err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, objectKey), nil
}
