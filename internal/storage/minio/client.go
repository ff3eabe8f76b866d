package minio

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/dtroode/contractchecker-server/internal/model"
)

// MaxPresignExpiry is the longest validity S3 accepts for a presigned URL.
const MaxPresignExpiry = 7 * 24 * time.Hour

// Internal adapter interface to enable mocking without a real MinIO server.
type minioAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PresignHeader(ctx context.Context, method, bucketName, objectName string, expires time.Duration, reqParams url.Values, extraHeaders http.Header) (*url.URL, error)
}

// Wrapper to adapt *minio.Client to minioAPI.
type minioClientWrapper struct{ c *minio.Client }

func (w minioClientWrapper) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	return w.c.BucketExists(ctx, bucketName)
}

func (w minioClientWrapper) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	return w.c.MakeBucket(ctx, bucketName, opts)
}

func (w minioClientWrapper) PresignHeader(ctx context.Context, method, bucketName, objectName string, expires time.Duration, reqParams url.Values, extraHeaders http.Header) (*url.URL, error) {
	return w.c.PresignHeader(ctx, method, bucketName, objectName, expires, reqParams, extraHeaders)
}

var _ model.Presigner = (*Client)(nil)

// Options controls bucket bootstrap behaviour.
type Options struct {
	Bucket string
	// CreateBucket creates a missing bucket instead of failing. Meant for a
	// local MinIO; managed stores such as R2 provision buckets out of band.
	CreateBucket bool
}

type Client struct {
	api    minioAPI
	bucket string
}

// NewClient creates a new storage client using a real *minio.Client instance.
func NewClient(ctx context.Context, client *minio.Client, opts Options) (*Client, error) {
	return NewClientWithAPI(ctx, minioClientWrapper{c: client}, opts)
}

// NewClientWithAPI allows injecting a mockable API (used in tests).
func NewClientWithAPI(ctx context.Context, api minioAPI, opts Options) (*Client, error) {
	c := &Client{
		api:    api,
		bucket: opts.Bucket,
	}

	if err := c.ensureBucket(ctx, opts.CreateBucket); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}

	return c, nil
}

func (c *Client) ensureBucket(ctx context.Context, create bool) error {
	exists, err := c.api.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}

	if !create {
		return fmt.Errorf("bucket %q does not exist", c.bucket)
	}

	if err := c.api.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	return nil
}

// PresignPut returns a URL authorizing a single PUT of params.Key. The
// content type and metadata become signed headers, so the uploader must send
// exactly those values.
func (c *Client) PresignPut(ctx context.Context, params model.PresignPutParams) (string, error) {
	if params.Key == "" {
		return "", fmt.Errorf("object key is empty")
	}
	if params.Expires <= 0 || params.Expires > MaxPresignExpiry {
		return "", fmt.Errorf("invalid presign expiry %s", params.Expires)
	}

	headers := make(http.Header)
	if params.ContentType != "" {
		headers.Set("Content-Type", params.ContentType)
	}
	for key, value := range params.Metadata {
		headers.Set("X-Amz-Meta-"+key, value)
	}

	u, err := c.api.PresignHeader(ctx, http.MethodPut, c.bucket, params.Key, params.Expires, nil, headers)
	if err != nil {
		return "", fmt.Errorf("failed to presign put: %w", err)
	}

	return u.String(), nil
}
