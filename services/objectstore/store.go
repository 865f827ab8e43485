package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

// ErrNotConfigured is returned when no bucket is configured
var ErrNotConfigured = errors.New("object storage is not configured")

// Store uploads course material and submission attachments to an
// S3-compatible bucket
type Store struct {
	s3Client *s3.S3
	bucket   string
	endpoint string
	cdnURL   string
}

// Config holds configuration for the store
type Config struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Endpoint  string
	CDNURL    string
}

// IsConfigured reports whether enough settings are present to connect
func (c Config) IsConfigured() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

// New creates a store. It returns ErrNotConfigured when the bucket or keys are missing.
func New(config Config) (*Store, error) {
	if !config.IsConfigured() {
		return nil, ErrNotConfigured
	}

	awsConfig := &aws.Config{
		Credentials: credentials.NewStaticCredentials(config.AccessKey, config.SecretKey, ""),
		Region:      aws.String(config.Region),
	}
	if config.Endpoint != "" {
		awsConfig.Endpoint = aws.String(config.Endpoint)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage session: %w", err)
	}

	return &Store{
		s3Client: s3.New(sess),
		bucket:   config.Bucket,
		endpoint: strings.TrimPrefix(strings.TrimPrefix(config.Endpoint, "https://"), "http://"),
		cdnURL:   strings.TrimSuffix(config.CDNURL, "/"),
	}, nil
}

// Upload stores data under key and returns its public URL
func (s *Store) Upload(ctx context.Context, key string, data io.ReadSeeker, contentType string) (string, error) {
	_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        data,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	return s.URL(key), nil
}

// Delete removes the object at key
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// URL returns the public URL for key
func (s *Store) URL(key string) string {
	return ObjectURL(s.cdnURL, s.bucket, s.endpoint, key)
}

// PresignedURL returns a temporary download URL for key
func (s *Store) PresignedURL(key string, expiration time.Duration) (string, error) {
	req, _ := s.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})

	url, err := req.Presign(expiration)
	if err != nil {
		return "", fmt.Errorf("failed to presign URL: %w", err)
	}
	return url, nil
}

// ObjectURL builds a public URL, preferring the CDN host
func ObjectURL(cdnURL, bucket, endpoint, key string) string {
	if cdnURL != "" {
		return fmt.Sprintf("%s/%s", cdnURL, key)
	}
	if endpoint == "" {
		return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", bucket, key)
	}
	return fmt.Sprintf("https://%s.%s/%s", bucket, endpoint, key)
}

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// NewKey builds a unique object key under prefix that keeps a readable
// version of the original file name
func NewKey(prefix, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	base = strings.Trim(unsafeKeyChars.ReplaceAllString(base, "-"), "-")
	if base == "" {
		base = "file"
	}
	if len(base) > 60 {
		base = base[:60]
	}
	return fmt.Sprintf("%s/%s_%s%s", strings.Trim(prefix, "/"), uuid.NewString(), base, ext)
}

// ContentType returns the MIME type for a file name
func ContentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".mov":
		return "video/quicktime"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".pptx":
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	case ".zip":
		return "application/zip"
	case ".txt":
		return "text/plain"
	case ".md":
		return "text/markdown"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}
