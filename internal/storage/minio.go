package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"s3simplified/internal/config"
)

// userMetaPrefix is set explicitly so minio-go does not send keys such as
// Content-Type as standard headers instead of user metadata.
const userMetaPrefix = "X-Amz-Meta-"

// minioTransport implements Transport using an S3-compatible backend (MinIO, AWS S3, etc.).
// It is safe for concurrent use by multiple goroutines.
type minioTransport struct {
	client *minio.Client
	core   minio.Core
	region string
}

// NewMinIO creates a Transport backed by minio-go.
func NewMinIO(cfg config.StorageConfig) (Transport, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return newMinIOTransport(cli, cfg.Region), nil
}

func newMinIOTransport(cli *minio.Client, region string) *minioTransport {
	return &minioTransport{client: cli, core: minio.Core{Client: cli}, region: region}
}

func (m *minioTransport) CreateBucket(ctx context.Context, bucket string) error {
	return m.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: m.region})
}

func (m *minioTransport) DeleteBucket(ctx context.Context, bucket string) error {
	return translateMinIOError(m.client.RemoveBucket(ctx, bucket))
}

func (m *minioTransport) ListBuckets(ctx context.Context) ([]string, error) {
	buckets, err := m.client.ListBuckets(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(buckets))
	for _, b := range buckets {
		names = append(names, b.Name)
	}
	return names, nil
}

func (m *minioTransport) HeadBucket(ctx context.Context, bucket string) error {
	exists, err := m.client.BucketExists(ctx, bucket)
	if err != nil {
		return translateMinIOError(err)
	}
	if !exists {
		return ErrNoSuchBucket
	}
	return nil
}

func (m *minioTransport) PutObject(ctx context.Context, bucket, key string, data []byte, metadata map[string]string) error {
	_, err := m.client.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		UserMetadata: prefixUserMetadata(metadata),
	})
	return translateMinIOError(err)
}

// GetObject downloads an object's info and, when withBody is set, returns
// the content as a ReadCloser without reading it into memory.
func (m *minioTransport) GetObject(ctx context.Context, bucket, key string, withBody bool) (Object, error) {
	if !withBody {
		st, err := m.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
		if err != nil {
			return Object{}, translateMinIOError(err)
		}
		return objectFromInfo(key, st), nil
	}

	obj, err := m.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return Object{}, translateMinIOError(err)
	}
	st, err := obj.Stat()
	if err != nil {
		obj.Close()
		return Object{}, translateMinIOError(err)
	}
	out := objectFromInfo(key, st)
	out.Body = obj
	return out, nil
}

func (m *minioTransport) HeadObject(ctx context.Context, bucket, key string) (map[string]string, error) {
	st, err := m.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, translateMinIOError(err)
	}
	return map[string]string(st.UserMetadata), nil
}

func (m *minioTransport) DeleteObject(ctx context.Context, bucket, key string) error {
	return translateMinIOError(m.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}))
}

func (m *minioTransport) CopyObject(ctx context.Context, bucket, srcKey, dstKey string) error {
	_, err := m.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: bucket, Object: dstKey},
		minio.CopySrcOptions{Bucket: bucket, Object: srcKey},
	)
	return translateMinIOError(err)
}

func (m *minioTransport) ListObjects(ctx context.Context, bucket string) ([]string, error) {
	var keys []string
	for obj := range m.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, translateMinIOError(obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

func (m *minioTransport) CreateMultipartUpload(ctx context.Context, bucket, key string, metadata map[string]string) (string, error) {
	id, err := m.core.NewMultipartUpload(ctx, bucket, key, minio.PutObjectOptions{
		UserMetadata: prefixUserMetadata(metadata),
	})
	return id, translateMinIOError(err)
}

func (m *minioTransport) UploadPart(ctx context.Context, bucket, key, uploadID string, partNumber int, data []byte) (string, error) {
	part, err := m.core.PutObjectPart(ctx, bucket, key, uploadID, partNumber,
		bytes.NewReader(data), int64(len(data)), minio.PutObjectPartOptions{})
	if err != nil {
		return "", translateMinIOError(err)
	}
	return part.ETag, nil
}

func (m *minioTransport) CompleteMultipartUpload(ctx context.Context, bucket, key, uploadID string, parts []CompletedPart) error {
	complete := make([]minio.CompletePart, 0, len(parts))
	for _, p := range parts {
		complete = append(complete, minio.CompletePart{PartNumber: p.PartNumber, ETag: p.ETag})
	}
	_, err := m.core.CompleteMultipartUpload(ctx, bucket, key, uploadID, complete, minio.PutObjectOptions{})
	return translateMinIOError(err)
}

// GetBucketACL returns no grants: MinIO has no bucket ACLs, access is
// governed by the bucket policy alone.
func (m *minioTransport) GetBucketACL(ctx context.Context, bucket string) ([]Grant, error) {
	return nil, nil
}

func (m *minioTransport) GetBucketPolicy(ctx context.Context, bucket string) (string, error) {
	policy, err := m.client.GetBucketPolicy(ctx, bucket)
	if err != nil {
		return "", translateMinIOError(err)
	}
	if policy == "" {
		return "", ErrNoSuchBucketPolicy
	}
	return policy, nil
}

// PresignGetObject generates a pre-signed URL for GET with the specified expiry.
func (m *minioTransport) PresignGetObject(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, bucket, key, expiry, url.Values{})
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func objectFromInfo(key string, st minio.ObjectInfo) Object {
	return Object{
		Key:      key,
		Size:     st.Size,
		ETag:     st.ETag,
		Metadata: map[string]string(st.UserMetadata),
	}
}

func prefixUserMetadata(metadata map[string]string) map[string]string {
	if len(metadata) == 0 {
		return nil
	}
	out := make(map[string]string, len(metadata))
	for k, v := range metadata {
		if !strings.HasPrefix(strings.ToLower(k), strings.ToLower(userMetaPrefix)) {
			k = userMetaPrefix + k
		}
		out[k] = v
	}
	return out
}

// translateMinIOError maps the minio-go error responses the bucket layers
// branch on to package sentinels.
func translateMinIOError(err error) error {
	if err == nil {
		return nil
	}
	var resp minio.ErrorResponse
	if !errors.As(err, &resp) {
		return err
	}
	switch resp.Code {
	case "NoSuchKey", "NotFound":
		return fmt.Errorf("%w: %s", ErrNotFound, resp.Key)
	case "NoSuchBucket":
		return fmt.Errorf("%w: %s", ErrNoSuchBucket, resp.BucketName)
	case "NoSuchBucketPolicy":
		return ErrNoSuchBucketPolicy
	}
	if resp.StatusCode == http.StatusNotFound && resp.Key != "" {
		return fmt.Errorf("%w: %s", ErrNotFound, resp.Key)
	}
	return err
}
