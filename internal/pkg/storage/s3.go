package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hirehub/core/internal/config"
)

// S3 stores objects in a bucket of any S3 compatible service.
type S3 struct {
	client       *s3.Client
	bucket       string
	prefix       string
	endpoint     *url.URL
	region       string
	customDomain string
	pathStyle    bool
}

func NewS3(cfg config.S3StorageConfig) (*S3, error) {
	bucket := strings.TrimSpace(cfg.Bucket)
	region := strings.TrimSpace(cfg.Region)
	accessKey := strings.TrimSpace(cfg.AccessKeyID)
	secretKey := strings.TrimSpace(cfg.SecretAccessKey)
	if bucket == "" || region == "" || accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("incomplete s3 config: bucket/region/access_key_id/secret_access_key are required")
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	custom := endpoint != ""
	if !custom {
		endpoint = fmt.Sprintf("https://s3.%s.amazonaws.com", region)
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	endpoint = strings.TrimSuffix(endpoint, "/")
	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("invalid s3 endpoint: %s", endpoint)
	}

	// third party endpoints rarely support virtual hosted buckets
	pathStyle := cfg.PathStyle || custom

	opts := s3.Options{
		Region:                     region,
		Credentials:                credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		UsePathStyle:               pathStyle,
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
	}
	if custom {
		opts.BaseEndpoint = aws.String(endpoint)
	}

	return &S3{
		client:       s3.New(opts),
		bucket:       bucket,
		prefix:       NormalizeKey(cfg.Prefix),
		endpoint:     parsed,
		region:       region,
		customDomain: strings.TrimRight(strings.TrimSpace(cfg.CustomDomain), "/"),
		pathStyle:    pathStyle,
	}, nil
}

func (s *S3) Name() string { return "s3" }

func (s *S3) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	// the signer needs a seekable body to hash the payload
	payload, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if size >= 0 && int64(len(payload)) != size {
		return fmt.Errorf("s3 upload: read %d bytes, expected %d", len(payload), size)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.objectKey(key)),
		Body:          bytes.NewReader(payload),
		ContentLength: aws.Int64(int64(len(payload))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3 upload failed: %w", err)
	}
	return nil
}

func (s *S3) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	return err
}

func (s *S3) URL(key string) string {
	key = escapeKey(s.objectKey(key))
	if s.customDomain != "" {
		return s.customDomain + "/" + key
	}
	base := strings.TrimSuffix(s.endpoint.Path, "/")
	if s.pathStyle {
		return s.endpoint.Scheme + "://" + s.endpoint.Host + base + "/" + s.bucket + "/" + key
	}
	return s.endpoint.Scheme + "://" + s.bucket + "." + s.endpoint.Host + base + "/" + key
}

func (s *S3) objectKey(key string) string {
	key = NormalizeKey(key)
	if s.prefix == "" {
		return key
	}
	return s.prefix + "/" + key
}
