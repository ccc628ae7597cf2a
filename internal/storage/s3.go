package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/desertthunder/musicapp/internal/shared"
)

// S3API is the subset of [s3.Client] used by [S3Store].
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// NewS3Client builds an S3 client from static credentials.
//
// A custom endpoint switches to path-style addressing for S3-compatible services (R2, MinIO).
func NewS3Client(ctx context.Context, cfg shared.S3Config) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load AWS config: %v", shared.ErrStorage, err)
	}

	endpoint := strings.TrimSuffix(cfg.Endpoint, "/")
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// S3Store keeps files as objects under a key prefix in one bucket.
type S3Store struct {
	api       S3API
	bucket    string
	prefix    string
	publicURL string
}

// NewS3Store creates an [S3Store] writing keys under prefix.
func NewS3Store(api S3API, cfg shared.S3Config, prefix string) *S3Store {
	return &S3Store{
		api:       api,
		bucket:    cfg.Bucket,
		prefix:    prefix,
		publicURL: strings.TrimSuffix(cfg.PublicURL, "/"),
	}
}

func (s *S3Store) Save(ctx context.Context, original string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read upload: %v", shared.ErrStorage, err)
	}

	name := shared.GenerateFilename(original)
	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.prefix + name),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		input.ContentType = aws.String(ct)
	}

	if _, err := s.api.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("%w: failed to upload %s: %v", shared.ErrStorage, name, err)
	}
	return name, nil
}

// Delete removes the object. S3 reports success for keys that do not exist.
func (s *S3Store) Delete(ctx context.Context, filename string) error {
	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + filename),
	})
	if err != nil {
		return fmt.Errorf("%w: failed to delete %s: %v", shared.ErrStorage, filename, err)
	}
	return nil
}

// URL returns the public object URL when configured, otherwise a virtual-hosted S3 URL.
func (s *S3Store) URL(filename string) string {
	if s.publicURL != "" {
		return s.publicURL + "/" + s.prefix + filename
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s%s", s.bucket, s.prefix, filename)
}
