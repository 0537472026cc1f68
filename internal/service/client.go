package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"s3simplified/internal/model"
	"s3simplified/internal/storage"
	"s3simplified/internal/validator"
)

// StorageClient is the entry point to an object store: it manages buckets
// and hands out BucketService handles.
type StorageClient interface {
	// CreateBucket validates name, creates the bucket and returns its handle.
	CreateBucket(ctx context.Context, name string) (BucketService, error)
	// DeleteBucket removes an existing bucket, or fails with MissingBucket.
	DeleteBucket(ctx context.Context, name string) error
	ListBuckets(ctx context.Context) ([]string, error)
	// GetBucket returns the handle of an existing bucket, or MissingBucket.
	GetBucket(ctx context.Context, name string) (BucketService, error)
	// GetOrCreateBucket returns the bucket, creating it when absent. Two
	// concurrent callers may both attempt the creation.
	GetOrCreateBucket(ctx context.Context, name string) (BucketService, error)
	ContainsBucket(ctx context.Context, name string) (bool, error)
	// Bucket returns a handle without checking that the bucket exists.
	Bucket(name string) BucketService
}

type storageClient struct {
	transport storage.Transport
	opts      Options
	log       logrus.FieldLogger
}

// New creates a StorageClient over t.
func New(t storage.Transport, opts Options) StorageClient {
	opts = opts.withDefaults()
	return &storageClient{transport: t, opts: opts, log: opts.Logger}
}

func (c *storageClient) Bucket(name string) BucketService {
	return NewBucketService(NewBucketInternal(c.transport, name, c.opts))
}

func (c *storageClient) CreateBucket(ctx context.Context, name string) (BucketService, error) {
	if err := validator.ValidateBucketName(name); err != nil {
		return nil, err
	}
	if err := c.transport.CreateBucket(ctx, name); err != nil {
		return nil, model.Transport("CreateBucket", name, "", err)
	}
	c.log.WithField("bucket", name).Info("bucket created")
	return c.Bucket(name), nil
}

func (c *storageClient) DeleteBucket(ctx context.Context, name string) error {
	if err := c.assertBucket(ctx, name); err != nil {
		return err
	}
	if err := c.transport.DeleteBucket(ctx, name); err != nil {
		return model.Transport("DeleteBucket", name, "", err)
	}
	c.log.WithField("bucket", name).Info("bucket deleted")
	return nil
}

func (c *storageClient) ListBuckets(ctx context.Context) ([]string, error) {
	names, err := c.transport.ListBuckets(ctx)
	if err != nil {
		return nil, model.Transport("ListBuckets", "", "", err)
	}
	return names, nil
}

func (c *storageClient) GetBucket(ctx context.Context, name string) (BucketService, error) {
	if err := c.assertBucket(ctx, name); err != nil {
		return nil, err
	}
	return c.Bucket(name), nil
}

func (c *storageClient) GetOrCreateBucket(ctx context.Context, name string) (BucketService, error) {
	ok, err := c.ContainsBucket(ctx, name)
	if err != nil {
		return nil, err
	}
	if ok {
		return c.Bucket(name), nil
	}
	return c.CreateBucket(ctx, name)
}

func (c *storageClient) ContainsBucket(ctx context.Context, name string) (bool, error) {
	err := c.transport.HeadBucket(ctx, name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, storage.ErrNoSuchBucket):
		return false, nil
	default:
		return false, model.Transport("HeadBucket", name, "", err)
	}
}

func (c *storageClient) assertBucket(ctx context.Context, name string) error {
	ok, err := c.ContainsBucket(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		return model.MissingBucket(name)
	}
	return nil
}
