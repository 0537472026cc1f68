package mocks

import (
	"context"
	"time"

	"s3simplified/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockTransport struct {
	mock.Mock
}

var _ storage.Transport = (*MockTransport)(nil)

func (m *MockTransport) CreateBucket(ctx context.Context, bucket string) error {
	args := m.Called(ctx, bucket)
	return args.Error(0)
}

func (m *MockTransport) DeleteBucket(ctx context.Context, bucket string) error {
	args := m.Called(ctx, bucket)
	return args.Error(0)
}

func (m *MockTransport) ListBuckets(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockTransport) HeadBucket(ctx context.Context, bucket string) error {
	args := m.Called(ctx, bucket)
	return args.Error(0)
}

func (m *MockTransport) PutObject(ctx context.Context, bucket, key string, data []byte, metadata map[string]string) error {
	args := m.Called(ctx, bucket, key, data, metadata)
	return args.Error(0)
}

func (m *MockTransport) GetObject(ctx context.Context, bucket, key string, withBody bool) (storage.Object, error) {
	args := m.Called(ctx, bucket, key, withBody)
	if f, ok := args.Get(0).(func(context.Context, string, string, bool) storage.Object); ok {
		return f(ctx, bucket, key, withBody), args.Error(1)
	}
	return args.Get(0).(storage.Object), args.Error(1)
}

func (m *MockTransport) HeadObject(ctx context.Context, bucket, key string) (map[string]string, error) {
	args := m.Called(ctx, bucket, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockTransport) DeleteObject(ctx context.Context, bucket, key string) error {
	args := m.Called(ctx, bucket, key)
	return args.Error(0)
}

func (m *MockTransport) CopyObject(ctx context.Context, bucket, srcKey, dstKey string) error {
	args := m.Called(ctx, bucket, srcKey, dstKey)
	return args.Error(0)
}

func (m *MockTransport) ListObjects(ctx context.Context, bucket string) ([]string, error) {
	args := m.Called(ctx, bucket)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockTransport) CreateMultipartUpload(ctx context.Context, bucket, key string, metadata map[string]string) (string, error) {
	args := m.Called(ctx, bucket, key, metadata)
	return args.String(0), args.Error(1)
}

func (m *MockTransport) UploadPart(ctx context.Context, bucket, key, uploadID string, partNumber int, data []byte) (string, error) {
	args := m.Called(ctx, bucket, key, uploadID, partNumber, data)
	if f, ok := args.Get(0).(func(context.Context, string, string, string, int, []byte) string); ok {
		return f(ctx, bucket, key, uploadID, partNumber, data), args.Error(1)
	}
	return args.String(0), args.Error(1)
}

func (m *MockTransport) CompleteMultipartUpload(ctx context.Context, bucket, key, uploadID string, parts []storage.CompletedPart) error {
	args := m.Called(ctx, bucket, key, uploadID, parts)
	return args.Error(0)
}

func (m *MockTransport) GetBucketACL(ctx context.Context, bucket string) ([]storage.Grant, error) {
	args := m.Called(ctx, bucket)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Grant), args.Error(1)
}

func (m *MockTransport) GetBucketPolicy(ctx context.Context, bucket string) (string, error) {
	args := m.Called(ctx, bucket)
	return args.String(0), args.Error(1)
}

func (m *MockTransport) PresignGetObject(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, bucket, key, expiry)
	return args.String(0), args.Error(1)
}
