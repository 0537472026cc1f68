package mocks

import (
	"context"

	"s3simplified/internal/object"
	"s3simplified/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockStorageClient struct {
	mock.Mock
}

var _ service.StorageClient = (*MockStorageClient)(nil)

func (m *MockStorageClient) CreateBucket(ctx context.Context, name string) (service.BucketService, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(service.BucketService), args.Error(1)
}

func (m *MockStorageClient) DeleteBucket(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockStorageClient) ListBuckets(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStorageClient) GetBucket(ctx context.Context, name string) (service.BucketService, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(service.BucketService), args.Error(1)
}

func (m *MockStorageClient) GetOrCreateBucket(ctx context.Context, name string) (service.BucketService, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(service.BucketService), args.Error(1)
}

func (m *MockStorageClient) ContainsBucket(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorageClient) Bucket(name string) service.BucketService {
	args := m.Called(name)
	return args.Get(0).(service.BucketService)
}

type MockBucketService struct {
	mock.Mock
}

var _ service.BucketService = (*MockBucketService)(nil)

func (m *MockBucketService) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockBucketService) CreateObject(ctx context.Context, ob *object.Builder) (*service.StoredObject, error) {
	args := m.Called(ctx, ob)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.StoredObject), args.Error(1)
}

func (m *MockBucketService) GetObject(ctx context.Context, key string) (*service.StoredObject, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.StoredObject), args.Error(1)
}

func (m *MockBucketService) OpenObject(ctx context.Context, key string) (*service.StoredObject, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.StoredObject), args.Error(1)
}

func (m *MockBucketService) GetObjects(ctx context.Context, keys []string) ([]*service.StoredObject, error) {
	args := m.Called(ctx, keys)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*service.StoredObject), args.Error(1)
}

func (m *MockBucketService) GetAllObjects(ctx context.Context) ([]*service.StoredObject, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*service.StoredObject), args.Error(1)
}

func (m *MockBucketService) DeleteObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockBucketService) DeleteObjects(ctx context.Context, keys []string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

func (m *MockBucketService) RenameObject(ctx context.Context, oldKey, newKey string) error {
	args := m.Called(ctx, oldKey, newKey)
	return args.Error(0)
}

func (m *MockBucketService) Contains(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockBucketService) ListContents(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockBucketService) ListLinks(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockBucketService) Link(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockBucketService) Internal() *service.BucketInternal {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*service.BucketInternal)
}
