package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"s3simplified/internal/model"
	"s3simplified/internal/object"
)

// BucketService is the checked view of a bucket. Every mutating call first
// asserts the existence invariant it depends on. The check and the action
// are separate requests, so a concurrent writer can still slip in between.
type BucketService interface {
	Name() string

	// CreateObject uploads ob under its derived ID, failing with
	// ExistingObject when that key is taken.
	CreateObject(ctx context.Context, ob *object.Builder) (*StoredObject, error)
	// GetObject returns the metadata view of key, or MissingObject.
	GetObject(ctx context.Context, key string) (*StoredObject, error)
	// OpenObject is GetObject with the body attached; the caller must Close it.
	OpenObject(ctx context.Context, key string) (*StoredObject, error)
	// GetObjects fetches keys concurrently, preserving their order.
	GetObjects(ctx context.Context, keys []string) ([]*StoredObject, error)
	// GetAllObjects fetches every object in the bucket.
	GetAllObjects(ctx context.Context) ([]*StoredObject, error)

	DeleteObject(ctx context.Context, key string) error
	DeleteObjects(ctx context.Context, keys []string) error
	// RenameObject requires newKey to be free and oldKey to exist.
	RenameObject(ctx context.Context, oldKey, newKey string) error

	Contains(ctx context.Context, key string) (bool, error)
	ListContents(ctx context.Context) ([]string, error)
	// ListLinks resolves the link of every object in the bucket.
	ListLinks(ctx context.Context) ([]string, error)
	// Link resolves the link of an existing object.
	Link(ctx context.Context, key string) (string, error)

	// Internal exposes the unchecked layer.
	Internal() *BucketInternal
}

type bucketService struct {
	internal *BucketInternal
}

// NewBucketService wraps internal with existence checks.
func NewBucketService(internal *BucketInternal) BucketService {
	return &bucketService{internal: internal}
}

func (s *bucketService) Name() string { return s.internal.Name() }

func (s *bucketService) Internal() *BucketInternal { return s.internal }

func (s *bucketService) CreateObject(ctx context.Context, ob *object.Builder) (*StoredObject, error) {
	key, err := ob.ID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.assertAbsent(ctx, key); err != nil {
		return nil, err
	}
	return s.internal.CreateObject(ctx, ob)
}

func (s *bucketService) GetObject(ctx context.Context, key string) (*StoredObject, error) {
	if err := s.assertExists(ctx, key); err != nil {
		return nil, err
	}
	return s.internal.GetObject(ctx, key, false)
}

func (s *bucketService) OpenObject(ctx context.Context, key string) (*StoredObject, error) {
	if err := s.assertExists(ctx, key); err != nil {
		return nil, err
	}
	return s.internal.GetObject(ctx, key, true)
}

func (s *bucketService) GetObjects(ctx context.Context, keys []string) ([]*StoredObject, error) {
	out := make([]*StoredObject, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	for i, key := range keys {
		g.Go(func() error {
			obj, err := s.GetObject(gctx, key)
			if err != nil {
				return err
			}
			out[i] = obj
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *bucketService) GetAllObjects(ctx context.Context) ([]*StoredObject, error) {
	keys, err := s.internal.ListContents(ctx)
	if err != nil {
		return nil, err
	}
	return s.GetObjects(ctx, keys)
}

func (s *bucketService) DeleteObject(ctx context.Context, key string) error {
	if err := s.assertExists(ctx, key); err != nil {
		return err
	}
	return s.internal.DeleteObject(ctx, key)
}

func (s *bucketService) DeleteObjects(ctx context.Context, keys []string) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, key := range keys {
		g.Go(func() error {
			return s.DeleteObject(gctx, key)
		})
	}
	return g.Wait()
}

func (s *bucketService) RenameObject(ctx context.Context, oldKey, newKey string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.assertAbsent(gctx, newKey) })
	g.Go(func() error { return s.assertExists(gctx, oldKey) })
	if err := g.Wait(); err != nil {
		return err
	}
	return s.internal.RenameObject(ctx, oldKey, newKey)
}

func (s *bucketService) Contains(ctx context.Context, key string) (bool, error) {
	return s.internal.ContainsObject(ctx, key)
}

func (s *bucketService) ListContents(ctx context.Context) ([]string, error) {
	return s.internal.ListContents(ctx)
}

func (s *bucketService) ListLinks(ctx context.Context) ([]string, error) {
	keys, err := s.internal.ListContents(ctx)
	if err != nil {
		return nil, err
	}
	links := make([]string, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	for i, key := range keys {
		g.Go(func() error {
			link, err := s.internal.GenerateLink(gctx, key)
			if err != nil {
				return err
			}
			links[i] = link
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return links, nil
}

func (s *bucketService) Link(ctx context.Context, key string) (string, error) {
	if err := s.assertExists(ctx, key); err != nil {
		return "", err
	}
	return s.internal.GenerateLink(ctx, key)
}

func (s *bucketService) assertExists(ctx context.Context, key string) error {
	ok, err := s.internal.ContainsObject(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return model.MissingObject(s.internal.Name(), key)
	}
	return nil
}

func (s *bucketService) assertAbsent(ctx context.Context, key string) error {
	ok, err := s.internal.ContainsObject(ctx, key)
	if err != nil {
		return err
	}
	if ok {
		return model.ExistingObject(s.internal.Name(), key)
	}
	return nil
}
