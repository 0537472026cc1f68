package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"s3simplified/internal/config"
	"s3simplified/internal/model"
	"s3simplified/internal/storage"
	"s3simplified/internal/storage/mocks"
	"s3simplified/internal/validator"
)

func newTestClient() (StorageClient, *mocks.MockTransport) {
	m := new(mocks.MockTransport)
	return New(m, testOptions()), m
}

func TestStorageClient_CreateBucket(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		bucket   string
		wantRule string
	}{
		{name: "valid", bucket: "my-bucket"},
		{name: "uppercase and underscore", bucket: "My_Bucket", wantRule: validator.RuleStartAlphanumeric},
		{name: "too short", bucket: "ab", wantRule: validator.RuleLength},
		{name: "dotted", bucket: "my.bucket", wantRule: validator.RuleNoDot},
		{name: "reserved prefix", bucket: "xn--bucket", wantRule: validator.RuleReservedPrefix},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, m := newTestClient()
			m.On("CreateBucket", mock.Anything, tt.bucket).Return(nil)

			b, err := c.CreateBucket(ctx, tt.bucket)
			if tt.wantRule != "" {
				require.ErrorIs(t, err, model.ErrInvalidName)
				var me *model.Error
				require.True(t, errors.As(err, &me))
				assert.Equal(t, tt.wantRule, me.Rule)
				assert.Equal(t, tt.bucket, me.Bucket)
				m.AssertNotCalled(t, "CreateBucket", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.bucket, b.Name())
			m.AssertExpectations(t)
		})
	}
}

func TestStorageClient_CreateBucketTransportError(t *testing.T) {
	c, m := newTestClient()
	m.On("CreateBucket", mock.Anything, "my-bucket").Return(errors.New("BucketAlreadyOwnedByYou"))

	_, err := c.CreateBucket(context.Background(), "my-bucket")
	assert.ErrorIs(t, err, model.ErrTransport)
}

func TestStorageClient_ContainsBucket(t *testing.T) {
	ctx := context.Background()
	c, m := newTestClient()
	m.On("HeadBucket", mock.Anything, "present").Return(nil)
	m.On("HeadBucket", mock.Anything, "absent").Return(storage.ErrNoSuchBucket)
	m.On("HeadBucket", mock.Anything, "forbidden").Return(errors.New("403"))

	ok, err := c.ContainsBucket(ctx, "present")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.ContainsBucket(ctx, "absent")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.ContainsBucket(ctx, "forbidden")
	assert.ErrorIs(t, err, model.ErrTransport)
}

func TestStorageClient_DeleteBucket(t *testing.T) {
	ctx := context.Background()
	c, m := newTestClient()
	m.On("HeadBucket", mock.Anything, "my-bucket").Return(nil)
	m.On("HeadBucket", mock.Anything, "gone-bucket").Return(storage.ErrNoSuchBucket)
	m.On("DeleteBucket", mock.Anything, "my-bucket").Return(nil)

	require.NoError(t, c.DeleteBucket(ctx, "my-bucket"))

	err := c.DeleteBucket(ctx, "gone-bucket")
	assert.ErrorIs(t, err, model.ErrMissingBucket)
	assert.EqualError(t, err, "bucket gone-bucket does not exist")
	m.AssertNotCalled(t, "DeleteBucket", mock.Anything, "gone-bucket")
}

func TestStorageClient_GetBucket(t *testing.T) {
	ctx := context.Background()
	c, m := newTestClient()
	m.On("HeadBucket", mock.Anything, "my-bucket").Return(nil)
	m.On("HeadBucket", mock.Anything, "gone-bucket").Return(storage.ErrNoSuchBucket)

	b, err := c.GetBucket(ctx, "my-bucket")
	require.NoError(t, err)
	assert.Equal(t, "my-bucket", b.Name())
	assert.Equal(t, "my-bucket", b.Internal().Name())

	_, err = c.GetBucket(ctx, "gone-bucket")
	assert.ErrorIs(t, err, model.ErrMissingBucket)
}

func TestStorageClient_GetOrCreateBucket(t *testing.T) {
	ctx := context.Background()

	t.Run("existing", func(t *testing.T) {
		c, m := newTestClient()
		m.On("HeadBucket", mock.Anything, "my-bucket").Return(nil)

		b, err := c.GetOrCreateBucket(ctx, "my-bucket")
		require.NoError(t, err)
		assert.Equal(t, "my-bucket", b.Name())
		m.AssertNotCalled(t, "CreateBucket", mock.Anything, mock.Anything)
	})

	t.Run("absent", func(t *testing.T) {
		c, m := newTestClient()
		m.On("HeadBucket", mock.Anything, "my-bucket").Return(storage.ErrNoSuchBucket)
		m.On("CreateBucket", mock.Anything, "my-bucket").Return(nil)

		_, err := c.GetOrCreateBucket(ctx, "my-bucket")
		require.NoError(t, err)
		m.AssertExpectations(t)
	})
}

func TestStorageClient_ListBuckets(t *testing.T) {
	c, m := newTestClient()
	m.On("ListBuckets", mock.Anything).Return([]string{"a-bucket", "b-bucket"}, nil)

	names, err := c.ListBuckets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a-bucket", "b-bucket"}, names)
}

func TestStorageClient_BucketIsUnchecked(t *testing.T) {
	c, m := newTestClient()
	b := c.Bucket("anything")
	assert.Equal(t, "anything", b.Name())
	assert.Empty(t, m.Calls)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.StorageConfig{
		PublicHost:               "s3.eu-west-1.amazonaws.com",
		MultipartChunkSize:       8 * config.MB,
		MultipartUploadThreshold: 16 * config.MB,
		SignedURLExpirationSec:   60,
	}

	o := OptionsFromConfig(cfg, nil)
	assert.Equal(t, int64(8*config.MB), o.MultipartChunkSize)
	assert.Equal(t, int64(16*config.MB), o.MultipartUploadThreshold)
	assert.Equal(t, "s3.eu-west-1.amazonaws.com", o.PublicHost)
	assert.Equal(t, 60.0, o.SignedURLExpiration.Seconds())
}
