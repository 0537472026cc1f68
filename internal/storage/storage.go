// Package storage contains the transport capability used by the bucket
// layers: the primitive bucket/object verbs of an S3-compatible store.
// Implementations translate the conditions the upper layers rely on into the
// sentinel errors below and pass every other error through untouched.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"s3simplified/internal/config"
)

var (
	// ErrNotFound is returned when an object key does not exist.
	ErrNotFound = errors.New("storage: object not found")
	// ErrNoSuchBucket is returned when a bucket does not exist.
	ErrNoSuchBucket = errors.New("storage: no such bucket")
	// ErrNoSuchBucketPolicy is returned by GetBucketPolicy when the bucket has no policy.
	ErrNoSuchBucketPolicy = errors.New("storage: no such bucket policy")
)

// Grantee group URIs recognised in bucket ACLs.
const (
	AllUsersGroup           = "http://acs.amazonaws.com/groups/global/AllUsers"
	AuthenticatedUsersGroup = "http://acs.amazonaws.com/groups/global/AuthenticatedUsers"
)

// ACL permissions.
const (
	PermissionRead        = "READ"
	PermissionFullControl = "FULL_CONTROL"
)

// Grant is one entry of a bucket access-control list.
type Grant struct {
	GranteeURI string
	Permission string
}

// CompletedPart identifies an uploaded part in a multipart completion call.
type CompletedPart struct {
	PartNumber int
	ETag       string
}

// Object is the result of GetObject. Body is nil unless requested; the
// caller must close it.
type Object struct {
	Key      string
	Size     int64
	ETag     string
	Metadata map[string]string
	Body     io.ReadCloser
}

// Transport is the capability the bucket layers talk to. Implementations
// must be safe for concurrent use by multiple goroutines.
type Transport interface {
	CreateBucket(ctx context.Context, bucket string) error
	DeleteBucket(ctx context.Context, bucket string) error
	ListBuckets(ctx context.Context) ([]string, error)
	// HeadBucket returns ErrNoSuchBucket when the bucket does not exist.
	HeadBucket(ctx context.Context, bucket string) error

	// PutObject uploads data in one request with the given user metadata.
	PutObject(ctx context.Context, bucket, key string, data []byte, metadata map[string]string) error
	// GetObject fetches an object's metadata and, if withBody is set, its content.
	GetObject(ctx context.Context, bucket, key string, withBody bool) (Object, error)
	// HeadObject returns the user metadata of key, or ErrNotFound.
	HeadObject(ctx context.Context, bucket, key string) (map[string]string, error)
	DeleteObject(ctx context.Context, bucket, key string) error
	// CopyObject copies srcKey to dstKey within bucket, metadata included.
	CopyObject(ctx context.Context, bucket, srcKey, dstKey string) error
	// ListObjects returns every key in bucket.
	ListObjects(ctx context.Context, bucket string) ([]string, error)

	CreateMultipartUpload(ctx context.Context, bucket, key string, metadata map[string]string) (string, error)
	UploadPart(ctx context.Context, bucket, key, uploadID string, partNumber int, data []byte) (string, error)
	CompleteMultipartUpload(ctx context.Context, bucket, key, uploadID string, parts []CompletedPart) error

	GetBucketACL(ctx context.Context, bucket string) ([]Grant, error)
	// GetBucketPolicy returns the policy document, or ErrNoSuchBucketPolicy.
	GetBucketPolicy(ctx context.Context, bucket string) (string, error)
	// PresignGetObject returns a time-limited URL that downloads key without credentials.
	PresignGetObject(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
}

// New returns the Transport selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (Transport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid storage config: %w", err)
	}
	switch cfg.Driver {
	case config.DriverMinIO:
		return NewMinIO(cfg)
	default:
		return NewS3(ctx, cfg)
	}
}
