package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"go.uber.org/zap"
)

// S3Store stores receipt images in S3-compatible object storage. It is used
// against Supabase storage's S3 endpoint in production, but any path-style
// S3 service works.
type S3Store struct {
	s3Client *s3.S3
	bucket   string
	logger   *zap.Logger
}

// S3Config holds configuration for the S3 store.
type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	Region          string
}

// NewS3Store creates a new S3-backed store.
func NewS3Store(config *S3Config, logger *zap.Logger) (*S3Store, error) {
	if config.Endpoint == "" || config.AccessKeyID == "" || config.AccessKeySecret == "" {
		return nil, fmt.Errorf("S3 configuration is incomplete")
	}
	if config.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is not configured")
	}

	sess := session.Must(session.NewSession(&aws.Config{
		Region:           aws.String(config.Region),
		Endpoint:         aws.String(config.Endpoint),
		Credentials:      credentials.NewStaticCredentials(config.AccessKeyID, config.AccessKeySecret, ""),
		S3ForcePathStyle: aws.Bool(true),
		DisableSSL:       aws.Bool(false),
	}))

	return &S3Store{
		s3Client: s3.New(sess),
		bucket:   config.Bucket,
		logger:   logger,
	}, nil
}

// Upload stores data under key, replacing any prior object at the same key.
func (s *S3Store) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == s3.ErrCodeNoSuchBucket {
			return fmt.Errorf("bucket %q: %w", s.bucket, ErrBucketNotFound)
		}
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

// Resolve returns a time-limited signed URL for a stored key, or the input
// unchanged when it is already absolute. A fresh URL is minted on every call;
// repeated resolutions of the same key carry independent expiries.
func (s *S3Store) Resolve(pathOrURL string, expires time.Duration) string {
	raw := strings.TrimSpace(pathOrURL)
	if raw == "" {
		return ""
	}
	if isAbsoluteURL(raw) {
		return raw
	}
	if expires <= 0 {
		expires = DefaultSignedURLTTL
	}

	key := strings.TrimPrefix(raw, "/")
	req, _ := s.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})

	url, err := req.Presign(expires)
	if err != nil {
		s.logger.Error("failed to create signed URL",
			zap.String("key", key),
			zap.Error(err),
		)
		return ""
	}
	return url
}
