package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"s3simplified/internal/config"
)

// S3API is the subset of *s3.Client used by the S3 transport.
type S3API interface {
	CreateBucket(ctx context.Context, in *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	DeleteBucket(ctx context.Context, in *s3.DeleteBucketInput, optFns ...func(*s3.Options)) (*s3.DeleteBucketOutput, error)
	ListBuckets(ctx context.Context, in *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	CopyObject(ctx context.Context, in *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	CreateMultipartUpload(ctx context.Context, in *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error)
	UploadPart(ctx context.Context, in *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error)
	CompleteMultipartUpload(ctx context.Context, in *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error)
	GetBucketAcl(ctx context.Context, in *s3.GetBucketAclInput, optFns ...func(*s3.Options)) (*s3.GetBucketAclOutput, error)
	GetBucketPolicy(ctx context.Context, in *s3.GetBucketPolicyInput, optFns ...func(*s3.Options)) (*s3.GetBucketPolicyOutput, error)
}

// Presigner is the subset of *s3.PresignClient used by the S3 transport.
type Presigner interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*PresignedRequest, error)
}

// PresignedRequest carries the URL of a presigned request.
type PresignedRequest struct {
	URL string
}

type presignClient struct {
	client *s3.PresignClient
}

func (p presignClient) PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*PresignedRequest, error) {
	req, err := p.client.PresignGetObject(ctx, in, optFns...)
	if err != nil {
		return nil, err
	}
	return &PresignedRequest{URL: req.URL}, nil
}

// s3Transport implements Transport for AWS S3 and S3-compatible endpoints.
type s3Transport struct {
	api     S3API
	presign Presigner
	region  string
}

// NewS3 creates a Transport backed by aws-sdk-go-v2. A non-empty
// cfg.Endpoint switches to path-style requests against that endpoint.
func NewS3(ctx context.Context, cfg config.StorageConfig) (Transport, error) {
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, fmt.Errorf("s3 credentials are required")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			scheme := "https"
			if !cfg.UseSSL {
				scheme = "http"
			}
			o.BaseEndpoint = aws.String(scheme + "://" + cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3WithClient(client, presignClient{client: s3.NewPresignClient(client)}, cfg.Region), nil
}

// NewS3WithClient creates a Transport over an existing client.
func NewS3WithClient(api S3API, presign Presigner, region string) Transport {
	return &s3Transport{api: api, presign: presign, region: region}
}

func (t *s3Transport) CreateBucket(ctx context.Context, bucket string) error {
	in := &s3.CreateBucketInput{Bucket: aws.String(bucket)}
	// us-east-1 rejects an explicit location constraint.
	if t.region != "" && t.region != "us-east-1" {
		in.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(t.region),
		}
	}
	_, err := t.api.CreateBucket(ctx, in)
	return err
}

func (t *s3Transport) DeleteBucket(ctx context.Context, bucket string) error {
	_, err := t.api.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: aws.String(bucket)})
	return translateS3Error(err)
}

func (t *s3Transport) ListBuckets(ctx context.Context) ([]string, error) {
	out, err := t.api.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(out.Buckets))
	for _, b := range out.Buckets {
		names = append(names, aws.ToString(b.Name))
	}
	return names, nil
}

func (t *s3Transport) HeadBucket(ctx context.Context, bucket string) error {
	_, err := t.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return ErrNoSuchBucket
		}
		return translateS3Error(err)
	}
	return nil
}

func (t *s3Transport) PutObject(ctx context.Context, bucket, key string, data []byte, metadata map[string]string) error {
	in := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if len(metadata) > 0 {
		in.Metadata = metadata
	}
	_, err := t.api.PutObject(ctx, in)
	return translateS3Error(err)
}

func (t *s3Transport) GetObject(ctx context.Context, bucket, key string, withBody bool) (Object, error) {
	if !withBody {
		out, err := t.api.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
		if err != nil {
			return Object{}, translateS3Error(err)
		}
		return Object{
			Key:      key,
			Size:     aws.ToInt64(out.ContentLength),
			ETag:     aws.ToString(out.ETag),
			Metadata: out.Metadata,
		}, nil
	}

	out, err := t.api.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil {
		return Object{}, translateS3Error(err)
	}
	return Object{
		Key:      key,
		Size:     aws.ToInt64(out.ContentLength),
		ETag:     aws.ToString(out.ETag),
		Metadata: out.Metadata,
		Body:     out.Body,
	}, nil
}

func (t *s3Transport) HeadObject(ctx context.Context, bucket, key string) (map[string]string, error) {
	out, err := t.api.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil {
		return nil, translateS3Error(err)
	}
	return out.Metadata, nil
}

func (t *s3Transport) DeleteObject(ctx context.Context, bucket, key string) error {
	_, err := t.api.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	return translateS3Error(err)
}

func (t *s3Transport) CopyObject(ctx context.Context, bucket, srcKey, dstKey string) error {
	_, err := t.api.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(bucket),
		CopySource: aws.String(bucket + "/" + url.PathEscape(srcKey)),
		Key:        aws.String(dstKey),
	})
	return translateS3Error(err)
}

func (t *s3Transport) ListObjects(ctx context.Context, bucket string) ([]string, error) {
	var keys []string
	p := s3.NewListObjectsV2Paginator(t.api, &s3.ListObjectsV2Input{Bucket: aws.String(bucket)})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, translateS3Error(err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

func (t *s3Transport) CreateMultipartUpload(ctx context.Context, bucket, key string, metadata map[string]string) (string, error) {
	in := &s3.CreateMultipartUploadInput{Bucket: aws.String(bucket), Key: aws.String(key)}
	if len(metadata) > 0 {
		in.Metadata = metadata
	}
	out, err := t.api.CreateMultipartUpload(ctx, in)
	if err != nil {
		return "", translateS3Error(err)
	}
	return aws.ToString(out.UploadId), nil
}

func (t *s3Transport) UploadPart(ctx context.Context, bucket, key, uploadID string, partNumber int, data []byte) (string, error) {
	out, err := t.api.UploadPart(ctx, &s3.UploadPartInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		UploadId:      aws.String(uploadID),
		PartNumber:    aws.Int32(int32(partNumber)), //nolint:gosec // S3 caps part numbers at 10000
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", translateS3Error(err)
	}
	return aws.ToString(out.ETag), nil
}

func (t *s3Transport) CompleteMultipartUpload(ctx context.Context, bucket, key, uploadID string, parts []CompletedPart) error {
	completed := make([]types.CompletedPart, 0, len(parts))
	for _, p := range parts {
		completed = append(completed, types.CompletedPart{
			ETag:       aws.String(p.ETag),
			PartNumber: aws.Int32(int32(p.PartNumber)), //nolint:gosec // S3 caps part numbers at 10000
		})
	}
	_, err := t.api.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:          aws.String(bucket),
		Key:             aws.String(key),
		UploadId:        aws.String(uploadID),
		MultipartUpload: &types.CompletedMultipartUpload{Parts: completed},
	})
	return translateS3Error(err)
}

func (t *s3Transport) GetBucketACL(ctx context.Context, bucket string) ([]Grant, error) {
	out, err := t.api.GetBucketAcl(ctx, &s3.GetBucketAclInput{Bucket: aws.String(bucket)})
	if err != nil {
		return nil, translateS3Error(err)
	}
	grants := make([]Grant, 0, len(out.Grants))
	for _, g := range out.Grants {
		var uri string
		if g.Grantee != nil {
			uri = aws.ToString(g.Grantee.URI)
		}
		grants = append(grants, Grant{GranteeURI: uri, Permission: string(g.Permission)})
	}
	return grants, nil
}

func (t *s3Transport) GetBucketPolicy(ctx context.Context, bucket string) (string, error) {
	out, err := t.api.GetBucketPolicy(ctx, &s3.GetBucketPolicyInput{Bucket: aws.String(bucket)})
	if err != nil {
		return "", translateS3Error(err)
	}
	return aws.ToString(out.Policy), nil
}

func (t *s3Transport) PresignGetObject(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	req, err := t.presign.PresignGetObject(ctx,
		&s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)},
		s3.WithPresignExpires(expiry),
	)
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// translateS3Error maps the API error codes the bucket layers branch on to
// package sentinels.
func translateS3Error(err error) error {
	if err == nil {
		return nil
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return fmt.Errorf("%w: %v", ErrNoSuchBucket, err)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchBucketPolicy":
			return ErrNoSuchBucketPolicy
		case "NoSuchBucket":
			return fmt.Errorf("%w: %v", ErrNoSuchBucket, err)
		}
	}
	return err
}
