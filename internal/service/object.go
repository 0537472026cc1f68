package service

import (
	"context"
	"io"

	"s3simplified/internal/model"
)

// StoredObject is the view of an object after creation or retrieval. Its
// link is resolved on demand because publicity is a bucket property.
type StoredObject struct {
	key      string
	metadata *model.Metadata
	bucket   *BucketInternal
	body     io.ReadCloser
}

func newStoredObject(bucket *BucketInternal, key string, metadata *model.Metadata, body io.ReadCloser) *StoredObject {
	if metadata == nil {
		metadata = model.NewMetadata()
	}
	return &StoredObject{key: key, metadata: metadata, bucket: bucket, body: body}
}

// Key returns the key the object is stored under.
func (o *StoredObject) Key() string { return o.key }

// Bucket returns the name of the owning bucket.
func (o *StoredObject) Bucket() string { return o.bucket.Name() }

func (o *StoredObject) Metadata() *model.Metadata { return o.metadata }

// Body returns the content reader, or nil when the object was fetched
// without it.
func (o *StoredObject) Body() io.ReadCloser { return o.body }

// Close releases the body, if any.
func (o *StoredObject) Close() error {
	if o.body == nil {
		return nil
	}
	return o.body.Close()
}

// Link resolves the public or presigned URL of the object.
func (o *StoredObject) Link(ctx context.Context) (string, error) {
	return o.bucket.GenerateLink(ctx, o.key)
}

// JSON returns the serializable view of the object.
func (o *StoredObject) JSON(ctx context.Context) (model.ObjectJSON, error) {
	out := model.ObjectJSON{Metadata: o.metadata}
	if o.key == "" {
		return out, nil
	}
	link, err := o.Link(ctx)
	if err != nil {
		return model.ObjectJSON{}, err
	}
	out.FileLink = &link
	return out, nil
}
