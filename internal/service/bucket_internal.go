package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7/pkg/policy"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"s3simplified/internal/model"
	"s3simplified/internal/object"
	"s3simplified/internal/storage"
)

// BucketInternal performs raw operations on one bucket with no existence
// checks. It decides between single-part and multipart uploads and resolves
// object links. It is safe for concurrent use.
type BucketInternal struct {
	transport storage.Transport
	name      string
	opts      Options
	log       logrus.FieldLogger

	mu     sync.Mutex
	public *bool
}

// NewBucketInternal returns the unchecked layer for bucket name.
func NewBucketInternal(t storage.Transport, name string, opts Options) *BucketInternal {
	opts = opts.withDefaults()
	return &BucketInternal{
		transport: t,
		name:      name,
		opts:      opts,
		log:       opts.Logger.WithField("bucket", name),
	}
}

func (b *BucketInternal) Name() string { return b.name }

// CreateObject uploads ob in one request when its size is at most the
// multipart threshold, and as a multipart upload otherwise.
func (b *BucketInternal) CreateObject(ctx context.Context, ob *object.Builder) (*StoredObject, error) {
	size, err := ob.DataSize()
	if err != nil {
		return nil, err
	}
	if size <= b.opts.MultipartUploadThreshold {
		return b.CreateObjectSingle(ctx, ob)
	}
	return b.CreateObjectMultipart(ctx, ob)
}

// prepare derives the key and checks the buffer covers Content-Length.
func (b *BucketInternal) prepare(ctx context.Context, ob *object.Builder) (string, []byte, int64, error) {
	key, err := ob.ID(ctx)
	if err != nil {
		return "", nil, 0, err
	}
	size, err := ob.DataSize()
	if err != nil {
		return "", nil, 0, err
	}
	data, err := ob.AsBuffer(ctx)
	if err != nil {
		return "", nil, 0, err
	}
	if int64(len(data)) < size {
		return "", nil, 0, &model.Error{
			Kind: model.KindMissingSize,
			Err:  fmt.Errorf("payload has %d bytes, Content-Length is %d", len(data), size),
		}
	}
	return key, data, size, nil
}

// CreateObjectSingle uploads ob with one PutObject call.
func (b *BucketInternal) CreateObjectSingle(ctx context.Context, ob *object.Builder) (*StoredObject, error) {
	key, data, size, err := b.prepare(ctx, ob)
	if err != nil {
		return nil, err
	}
	if err := b.transport.PutObject(ctx, b.name, key, data, ob.Metadata().Record()); err != nil {
		return nil, model.Transport("PutObject", b.name, key, err)
	}
	b.log.WithFields(logrus.Fields{"key": key, "size": size}).Debug("object uploaded")
	return newStoredObject(b, key, ob.Metadata(), nil), nil
}

// CreateObjectMultipart uploads ob in MultipartChunkSize parts sent
// concurrently. A failed upload is not aborted; its parts are left for the
// store's lifecycle rules to clean up.
func (b *BucketInternal) CreateObjectMultipart(ctx context.Context, ob *object.Builder) (*StoredObject, error) {
	key, data, size, err := b.prepare(ctx, ob)
	if err != nil {
		return nil, err
	}
	log := b.log.WithField("key", key)

	uploadID, err := b.transport.CreateMultipartUpload(ctx, b.name, key, ob.Metadata().Record())
	if err != nil {
		return nil, model.Transport("CreateMultipartUpload", b.name, key, err)
	}
	if uploadID == "" {
		return nil, model.Transport("CreateMultipartUpload", b.name, key, errors.New("empty upload id"))
	}

	chunk := b.opts.MultipartChunkSize
	partsCount := int((size + chunk - 1) / chunk)
	log.WithFields(logrus.Fields{"upload_id": uploadID, "parts": partsCount, "size": size}).Debug("multipart upload started")

	parts := make([]storage.CompletedPart, partsCount)
	g, gctx := errgroup.WithContext(ctx)
	for i := range partsCount {
		start := int64(i) * chunk
		end := min(start+chunk, size)
		partNumber := i + 1
		g.Go(func() error {
			etag, err := b.transport.UploadPart(gctx, b.name, key, uploadID, partNumber, data[start:end])
			if err != nil {
				return model.Transport(fmt.Sprintf("UploadPart %d", partNumber), b.name, key, err)
			}
			parts[partNumber-1] = storage.CompletedPart{PartNumber: partNumber, ETag: etag}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.WithError(err).WithField("upload_id", uploadID).Warn("multipart upload failed")
		return nil, err
	}

	slices.SortFunc(parts, func(a, c storage.CompletedPart) int { return a.PartNumber - c.PartNumber })
	if err := b.transport.CompleteMultipartUpload(ctx, b.name, key, uploadID, parts); err != nil {
		return nil, model.Transport("CompleteMultipartUpload", b.name, key, err)
	}
	log.WithField("upload_id", uploadID).Debug("multipart upload complete")
	return newStoredObject(b, key, ob.Metadata(), nil), nil
}

// GetObject fetches key's metadata and, when withBody is set, a reader over
// its content that the caller must close.
func (b *BucketInternal) GetObject(ctx context.Context, key string, withBody bool) (*StoredObject, error) {
	obj, err := b.transport.GetObject(ctx, b.name, key, withBody)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, &model.Error{Kind: model.KindMissingObject, Bucket: b.name, Key: key, Err: err}
		}
		return nil, model.Transport("GetObject", b.name, key, err)
	}
	return newStoredObject(b, key, model.MetadataFromRecord(obj.Metadata), obj.Body), nil
}

func (b *BucketInternal) DeleteObject(ctx context.Context, key string) error {
	return model.Transport("DeleteObject", b.name, key, b.transport.DeleteObject(ctx, b.name, key))
}

// RenameObject copies oldKey to newKey and then deletes oldKey. It is not
// atomic: a failed delete leaves both keys present.
func (b *BucketInternal) RenameObject(ctx context.Context, oldKey, newKey string) error {
	if err := b.transport.CopyObject(ctx, b.name, oldKey, newKey); err != nil {
		return model.Transport("CopyObject", b.name, oldKey, err)
	}
	if err := b.DeleteObject(ctx, oldKey); err != nil {
		b.log.WithError(err).WithFields(logrus.Fields{"old_key": oldKey, "new_key": newKey}).
			Warn("rename copied object but could not delete the source")
		return err
	}
	return nil
}

// ListContents returns every key in the bucket.
func (b *BucketInternal) ListContents(ctx context.Context) ([]string, error) {
	keys, err := b.transport.ListObjects(ctx, b.name)
	if err != nil {
		return nil, model.Transport("ListObjects", b.name, "", err)
	}
	return keys, nil
}

// ContainsObject reports whether key exists.
func (b *BucketInternal) ContainsObject(ctx context.Context, key string) (bool, error) {
	_, err := b.transport.HeadObject(ctx, b.name, key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, storage.ErrNotFound):
		return false, nil
	default:
		return false, model.Transport("HeadObject", b.name, key, err)
	}
}

// IsPublic reports whether anonymous users can read the bucket, through
// either its ACL or its policy. The answer is cached for the lifetime of b.
// Concurrent first calls may each compute it.
func (b *BucketInternal) IsPublic(ctx context.Context) (bool, error) {
	b.mu.Lock()
	if b.public != nil {
		v := *b.public
		b.mu.Unlock()
		return v, nil
	}
	b.mu.Unlock()

	public, err := b.computePublic(ctx)
	if err != nil {
		return false, err
	}

	b.mu.Lock()
	b.public = &public
	b.mu.Unlock()
	b.log.WithField("public", public).Debug("bucket access resolved")
	return public, nil
}

func (b *BucketInternal) computePublic(ctx context.Context) (bool, error) {
	grants, err := b.transport.GetBucketACL(ctx, b.name)
	if err != nil {
		return false, model.Transport("GetBucketACL", b.name, "", err)
	}
	for _, g := range grants {
		if (g.GranteeURI == storage.AllUsersGroup || g.GranteeURI == storage.AuthenticatedUsersGroup) &&
			(g.Permission == storage.PermissionRead || g.Permission == storage.PermissionFullControl) {
			return true, nil
		}
	}

	doc, err := b.transport.GetBucketPolicy(ctx, b.name)
	if errors.Is(err, storage.ErrNoSuchBucketPolicy) {
		return false, nil
	}
	if err != nil {
		return false, model.Transport("GetBucketPolicy", b.name, "", err)
	}
	public, err := policyAllowsPublicRead(doc)
	if err != nil {
		return false, model.Transport("GetBucketPolicy", b.name, "", err)
	}
	return public, nil
}

// GenerateLink returns the public URL of key when the bucket is public and a
// presigned URL otherwise.
func (b *BucketInternal) GenerateLink(ctx context.Context, key string) (string, error) {
	public, err := b.IsPublic(ctx)
	if err != nil {
		return "", err
	}
	if public {
		return b.PublicURL(key), nil
	}
	return b.SignedURL(ctx, key)
}

// PublicURL returns https://{bucket}.{host}/{key}.
func (b *BucketInternal) PublicURL(key string) string {
	return "https://" + b.name + "." + b.opts.PublicHost + "/" + escapeKey(key)
}

// SignedURL returns a presigned GET URL valid for SignedURLExpiration.
func (b *BucketInternal) SignedURL(ctx context.Context, key string) (string, error) {
	u, err := b.transport.PresignGetObject(ctx, b.name, key, b.opts.SignedURLExpiration)
	if err != nil {
		return "", model.Transport("PresignGetObject", b.name, key, err)
	}
	return u, nil
}

// escapeKey escapes each path segment and keeps the separators.
func escapeKey(key string) string {
	segs := strings.Split(key, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}

// policyAllowsPublicRead reports whether some Allow statement grants
// s3:GetObject or s3:* to every principal.
func policyAllowsPublicRead(doc string) (bool, error) {
	var p policy.BucketAccessPolicy
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return false, fmt.Errorf("parse bucket policy: %w", err)
	}
	for _, st := range p.Statements {
		if st.Effect != "Allow" || !st.Principal.AWS.Contains("*") {
			continue
		}
		if st.Actions.Contains("s3:GetObject") || st.Actions.Contains("s3:*") {
			return true, nil
		}
	}
	return false, nil
}
