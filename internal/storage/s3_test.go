package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"s3simplified/internal/config"
)

// fakeS3 overrides the calls each test exercises; anything else panics on
// the nil embedded interface.
type fakeS3 struct {
	S3API

	createBucket   *s3.CreateBucketInput
	putObject      *s3.PutObjectInput
	copyObject     *s3.CopyObjectInput
	complete       *s3.CompleteMultipartUploadInput
	headBucketErr  error
	getObjectErr   error
	policyErr      error
	grants         []types.Grant
	pages          [][]string
	listCalls      int
	objectMetadata map[string]string
}

func (f *fakeS3) CreateBucket(_ context.Context, in *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.createBucket = in
	return &s3.CreateBucketOutput{}, nil
}

func (f *fakeS3) HeadBucket(_ context.Context, _ *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if f.headBucketErr != nil {
		return nil, f.headBucketErr
	}
	return &s3.HeadBucketOutput{}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.putObject = in
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, _ *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getObjectErr != nil {
		return nil, f.getObjectErr
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(strings.NewReader("hello")),
		ContentLength: aws.Int64(5),
		ETag:          aws.String(`"etag"`),
		Metadata:      f.objectMetadata,
	}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, _ *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.getObjectErr != nil {
		return nil, f.getObjectErr
	}
	return &s3.HeadObjectOutput{ContentLength: aws.Int64(5), Metadata: f.objectMetadata}, nil
}

func (f *fakeS3) CopyObject(_ context.Context, in *s3.CopyObjectInput, _ ...func(*s3.Options)) (*s3.CopyObjectOutput, error) {
	f.copyObject = in
	return &s3.CopyObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, _ *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	page := f.pages[f.listCalls]
	f.listCalls++

	out := &s3.ListObjectsV2Output{}
	for _, k := range page {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	if f.listCalls < len(f.pages) {
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String("next")
	}
	return out, nil
}

func (f *fakeS3) CompleteMultipartUpload(_ context.Context, in *s3.CompleteMultipartUploadInput, _ ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	f.complete = in
	return &s3.CompleteMultipartUploadOutput{}, nil
}

func (f *fakeS3) GetBucketAcl(_ context.Context, _ *s3.GetBucketAclInput, _ ...func(*s3.Options)) (*s3.GetBucketAclOutput, error) {
	return &s3.GetBucketAclOutput{Grants: f.grants}, nil
}

func (f *fakeS3) GetBucketPolicy(_ context.Context, _ *s3.GetBucketPolicyInput, _ ...func(*s3.Options)) (*s3.GetBucketPolicyOutput, error) {
	if f.policyErr != nil {
		return nil, f.policyErr
	}
	return &s3.GetBucketPolicyOutput{Policy: aws.String(`{"Statement":[]}`)}, nil
}

type fakePresigner struct {
	expires time.Duration
}

func (p *fakePresigner) PresignGetObject(_ context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*PresignedRequest, error) {
	var opts s3.PresignOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	p.expires = opts.Expires
	return &PresignedRequest{URL: "https://signed/" + aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)}, nil
}

func TestS3Transport_CreateBucketLocation(t *testing.T) {
	tests := []struct {
		region     string
		constraint bool
	}{
		{"ap-southeast-1", true},
		{"us-east-1", false},
	}

	for _, tt := range tests {
		t.Run(tt.region, func(t *testing.T) {
			api := &fakeS3{}
			tr := NewS3WithClient(api, nil, tt.region)
			require.NoError(t, tr.CreateBucket(context.Background(), "my-bucket"))

			if tt.constraint {
				require.NotNil(t, api.createBucket.CreateBucketConfiguration)
				assert.Equal(t, types.BucketLocationConstraint(tt.region), api.createBucket.CreateBucketConfiguration.LocationConstraint)
			} else {
				assert.Nil(t, api.createBucket.CreateBucketConfiguration)
			}
		})
	}
}

func TestS3Transport_HeadBucket(t *testing.T) {
	ctx := context.Background()

	require.NoError(t, NewS3WithClient(&fakeS3{}, nil, "eu-west-1").HeadBucket(ctx, "b"))

	err := NewS3WithClient(&fakeS3{headBucketErr: &types.NotFound{}}, nil, "eu-west-1").HeadBucket(ctx, "b")
	assert.ErrorIs(t, err, ErrNoSuchBucket)

	err = NewS3WithClient(&fakeS3{headBucketErr: &types.NoSuchBucket{}}, nil, "eu-west-1").HeadBucket(ctx, "b")
	assert.ErrorIs(t, err, ErrNoSuchBucket)
}

func TestS3Transport_PutAndGet(t *testing.T) {
	ctx := context.Background()
	api := &fakeS3{objectMetadata: map[string]string{"identifier": "abc.txt"}}
	tr := NewS3WithClient(api, nil, "eu-west-1")

	require.NoError(t, tr.PutObject(ctx, "b", "abc.txt", []byte("hello"), map[string]string{"identifier": "abc.txt"}))
	assert.Equal(t, int64(5), aws.ToInt64(api.putObject.ContentLength))
	assert.Equal(t, "abc.txt", api.putObject.Metadata["identifier"])

	obj, err := tr.GetObject(ctx, "b", "abc.txt", true)
	require.NoError(t, err)
	require.NotNil(t, obj.Body)
	body, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
	assert.Equal(t, "abc.txt", obj.Metadata["identifier"])

	head, err := tr.GetObject(ctx, "b", "abc.txt", false)
	require.NoError(t, err)
	assert.Nil(t, head.Body)
	assert.Equal(t, int64(5), head.Size)
}

func TestS3Transport_MissingObject(t *testing.T) {
	ctx := context.Background()
	tr := NewS3WithClient(&fakeS3{getObjectErr: &types.NoSuchKey{}}, nil, "eu-west-1")

	_, err := tr.GetObject(ctx, "b", "nope", true)
	assert.ErrorIs(t, err, ErrNotFound)

	tr = NewS3WithClient(&fakeS3{getObjectErr: &types.NotFound{}}, nil, "eu-west-1")
	_, err = tr.HeadObject(ctx, "b", "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestS3Transport_CopySourceEscaped(t *testing.T) {
	api := &fakeS3{}
	tr := NewS3WithClient(api, nil, "eu-west-1")

	require.NoError(t, tr.CopyObject(context.Background(), "b", "a b.txt", "c.txt"))
	assert.Equal(t, "b/a%20b.txt", aws.ToString(api.copyObject.CopySource))
	assert.Equal(t, "c.txt", aws.ToString(api.copyObject.Key))
}

func TestS3Transport_ListObjectsPaginates(t *testing.T) {
	api := &fakeS3{pages: [][]string{{"a", "b"}, {"c"}}}
	tr := NewS3WithClient(api, nil, "eu-west-1")

	keys, err := tr.ListObjects(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, keys)
	assert.Equal(t, 2, api.listCalls)
}

func TestS3Transport_CompleteMultipartUpload(t *testing.T) {
	api := &fakeS3{}
	tr := NewS3WithClient(api, nil, "eu-west-1")

	parts := []CompletedPart{{PartNumber: 1, ETag: "e1"}, {PartNumber: 2, ETag: "e2"}}
	require.NoError(t, tr.CompleteMultipartUpload(context.Background(), "b", "k", "up-1", parts))

	got := api.complete.MultipartUpload.Parts
	require.Len(t, got, 2)
	assert.Equal(t, int32(1), aws.ToInt32(got[0].PartNumber))
	assert.Equal(t, "e2", aws.ToString(got[1].ETag))
	assert.Equal(t, "up-1", aws.ToString(api.complete.UploadId))
}

func TestS3Transport_ACLAndPolicy(t *testing.T) {
	ctx := context.Background()
	api := &fakeS3{grants: []types.Grant{
		{Grantee: &types.Grantee{URI: aws.String(AllUsersGroup)}, Permission: types.PermissionRead},
		{Permission: types.PermissionFullControl},
	}}
	tr := NewS3WithClient(api, nil, "eu-west-1")

	grants, err := tr.GetBucketACL(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []Grant{
		{GranteeURI: AllUsersGroup, Permission: PermissionRead},
		{GranteeURI: "", Permission: PermissionFullControl},
	}, grants)

	policy, err := tr.GetBucketPolicy(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, `{"Statement":[]}`, policy)

	api.policyErr = &smithy.GenericAPIError{Code: "NoSuchBucketPolicy", Message: "The bucket policy does not exist"}
	_, err = tr.GetBucketPolicy(ctx, "b")
	assert.ErrorIs(t, err, ErrNoSuchBucketPolicy)
}

func TestS3Transport_Presign(t *testing.T) {
	p := &fakePresigner{}
	tr := NewS3WithClient(&fakeS3{}, p, "eu-west-1")

	u, err := tr.PresignGetObject(context.Background(), "b", "k.txt", 5*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "https://signed/b/k.txt", u)
	assert.Equal(t, 5*time.Minute, p.expires)
}

func TestTranslateS3Error(t *testing.T) {
	other := errors.New("throttled")

	assert.NoError(t, translateS3Error(nil))
	assert.ErrorIs(t, translateS3Error(&types.NoSuchKey{}), ErrNotFound)
	assert.ErrorIs(t, translateS3Error(&types.NoSuchBucket{}), ErrNoSuchBucket)
	assert.ErrorIs(t, translateS3Error(&smithy.GenericAPIError{Code: "NoSuchBucket"}), ErrNoSuchBucket)
	assert.Same(t, other, translateS3Error(other))
}

func TestNew_SelectsDriver(t *testing.T) {
	ctx := context.Background()
	cfg := config.StorageConfig{
		Driver:                   config.DriverMinIO,
		Endpoint:                 "localhost:9000",
		Region:                   "us-east-1",
		AccessKeyID:              "id",
		SecretAccessKey:          "secret",
		MultipartChunkSize:       5 * config.MB,
		MultipartUploadThreshold: 5 * config.MB,
		SignedURLExpirationSec:   300,
	}

	tr, err := New(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &minioTransport{}, tr)

	cfg.Driver = config.DriverS3
	tr, err = New(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &s3Transport{}, tr)

	cfg.Driver = "gcs"
	_, err = New(ctx, cfg)
	assert.ErrorContains(t, err, `unknown storage driver "gcs"`)
}
