package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	defaultLinkTTL = 24 * time.Hour
	defaultRegion  = "us-east-1"
)

var ErrNotConfigured = errors.New("s3: uploader is not configured")

// Uploader stores a document in an S3-compatible bucket and returns a link to it.
type Uploader interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (link string, err error)
}

type Config struct {
	Endpoint       string
	PublicEndpoint string
	AccessKey      string
	SecretKey      string
	Bucket         string
	UseSSL         bool
	// Region signs requests without a bucket location lookup. Defaults to us-east-1.
	Region string
	// LinkTTL bounds the presigned download link; exports are never public.
	LinkTTL time.Duration
}

// Client wraps a MinIO/S3 client. The bucket is created on first upload.
type Client struct {
	bucket         string
	linkTTL        time.Duration
	client         *minio.Client
	signer         *minio.Client
	logger         *slog.Logger
	bucketInitOnce sync.Once
	bucketInitErr  error
}

func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errors.New("s3: endpoint is required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = defaultRegion
	}
	opts := func() *minio.Options {
		return &minio.Options{
			Region: region,
			Creds:  credentials.NewStaticV4(strings.TrimSpace(cfg.AccessKey), strings.TrimSpace(cfg.SecretKey), ""),
			Secure: cfg.UseSSL,
		}
	}
	client, err := minio.New(hostOf(endpoint), opts())
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}
	signer := client
	if public := strings.TrimSpace(cfg.PublicEndpoint); public != "" && hostOf(public) != hostOf(endpoint) {
		// Links must be signed for the host the browser will reach.
		signer, err = minio.New(hostOf(public), opts())
		if err != nil {
			return nil, fmt.Errorf("s3: create signer: %w", err)
		}
	}
	ttl := cfg.LinkTTL
	if ttl <= 0 {
		ttl = defaultLinkTTL
	}
	return &Client{
		bucket:  bucket,
		linkTTL: ttl,
		client:  client,
		signer:  signer,
		logger:  logger,
	}, nil
}

func (c *Client) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	if reader == nil {
		return "", errors.New("s3: reader is required")
	}
	key = strings.Trim(strings.TrimSpace(key), "/")
	if key == "" {
		return "", errors.New("s3: object key is required")
	}
	if err := c.ensureBucket(ctx); err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if size <= 0 {
		size = -1
	}
	if _, err := c.client.PutObject(ctx, c.bucket, key, reader, size, minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return "", fmt.Errorf("s3: put object: %w", err)
	}
	link, err := c.signer.PresignedGetObject(ctx, c.bucket, key, c.linkTTL, url.Values{})
	if err != nil {
		return "", fmt.Errorf("s3: presign: %w", err)
	}
	if c.logger != nil {
		c.logger.Info("s3 upload completed", "bucket", c.bucket, "key", key)
	}
	return link.String(), nil
}

func (c *Client) ensureBucket(ctx context.Context) error {
	c.bucketInitOnce.Do(func() {
		exists, err := c.client.BucketExists(ctx, c.bucket)
		if err != nil {
			c.bucketInitErr = fmt.Errorf("s3: check bucket: %w", err)
			return
		}
		if exists {
			return
		}
		if err := c.client.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			c.bucketInitErr = fmt.Errorf("s3: create bucket: %w", err)
		}
	})
	return c.bucketInitErr
}

// NoopUploader fails fast when S3 is unavailable.
type NoopUploader struct{}

func (NoopUploader) Upload(context.Context, string, io.Reader, int64, string) (string, error) {
	return "", ErrNotConfigured
}

func hostOf(endpoint string) string {
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return endpoint
}

var _ Uploader = (*Client)(nil)
var _ Uploader = NoopUploader{}
