// Package object builds objects before upload: it normalizes the payload and
// derives the identifiers an object is stored under.
package object

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"s3simplified/internal/model"
)

// HashFunc computes a content identifier from the normalized payload and the
// metadata record. When set it replaces the random UUID.
type HashFunc func(data []byte, metadata map[string]string) (string, error)

// Options controls identifier derivation.
type Options struct {
	// AppendFileTypeToKey makes ID return "<uuid>.<extension>" instead of the bare UUID.
	AppendFileTypeToKey bool
	HashFunc            HashFunc
}

// Builder is the pre-upload representation of an object. Derived fields are
// computed on first access and written back into the metadata, after which
// they never change. A Builder is not safe for concurrent use.
type Builder struct {
	payload  Payload
	metadata *model.Metadata
	opts     Options

	buf []byte
}

// New creates a Builder. A nil metadata starts empty.
func New(payload Payload, metadata *model.Metadata, opts Options) *Builder {
	if metadata == nil {
		metadata = model.NewMetadata()
	}
	return &Builder{payload: payload, metadata: metadata, opts: opts}
}

// FromFile creates a Builder for an uploaded file, recording its type, size
// and original name.
func FromFile(payload Payload, originalName, contentType string, size int64, opts Options) *Builder {
	md := model.NewMetadata()
	md.Set(model.KeyContentType, contentType)
	md.Set(model.KeyContentLength, strconv.FormatInt(size, 10))
	if originalName != "" {
		md.Set(model.KeyOriginalName, originalName)
	}
	return New(payload, md, opts)
}

func (b *Builder) Payload() Payload { return b.payload }

func (b *Builder) Metadata() *model.Metadata { return b.metadata }

// Type returns Content-Type, or "" when unset.
func (b *Builder) Type() string {
	t, _ := b.metadata.Get(model.KeyContentType)
	return t
}

// SetType sets Content-Type. Empty values are ignored.
func (b *Builder) SetType(contentType string) {
	if contentType != "" {
		b.metadata.Set(model.KeyContentType, contentType)
	}
}

// SetSize sets Content-Length.
func (b *Builder) SetSize(size int64) {
	b.metadata.Set(model.KeyContentLength, strconv.FormatInt(size, 10))
}

// DataSize returns Content-Length.
func (b *Builder) DataSize() (int64, error) {
	s, ok := b.metadata.Get(model.KeyContentLength)
	if !ok {
		return 0, model.ErrMissingSize
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, &model.Error{Kind: model.KindMissingSize, Err: err}
	}
	return n, nil
}

// Extension returns File-Type, deriving it from Content-Type on first use.
func (b *Builder) Extension() (string, error) {
	if ext, ok := b.metadata.Get(model.KeyFileType); ok && ext != "" {
		return ext, nil
	}
	ct := b.Type()
	ext, ok := ExtensionFor(ct)
	if !ok {
		return "", &model.Error{Kind: model.KindUnknownContentType, ContentType: ct}
	}
	b.metadata.Set(model.KeyFileType, ext)
	return ext, nil
}

// UUID returns Content-Disposition, generating it on first use.
func (b *Builder) UUID(ctx context.Context) (string, error) {
	if id, ok := b.metadata.Get(model.KeyContentDisposition); ok && id != "" {
		return id, nil
	}
	var id string
	if b.opts.HashFunc != nil {
		data, err := b.AsBuffer(ctx)
		if err != nil {
			return "", err
		}
		if id, err = b.opts.HashFunc(data, b.metadata.Record()); err != nil {
			return "", err
		}
	} else {
		id = uuid.NewString()
	}
	b.metadata.Set(model.KeyContentDisposition, id)
	return id, nil
}

// ID returns the identifier the object is stored under, deriving it on
// first use.
func (b *Builder) ID(ctx context.Context) (string, error) {
	if id, ok := b.metadata.Get(model.KeyIdentifier); ok && id != "" {
		return id, nil
	}
	u, err := b.UUID(ctx)
	if err != nil {
		return "", err
	}
	id := u
	if b.opts.AppendFileTypeToKey {
		ext, err := b.Extension()
		if err != nil {
			return "", err
		}
		id = u + "." + ext
	}
	b.metadata.Set(model.KeyIdentifier, id)
	return id, nil
}

// AsBuffer returns the payload as one contiguous buffer. The result is
// cached since stream payloads can only be consumed once.
func (b *Builder) AsBuffer(ctx context.Context) ([]byte, error) {
	if b.buf != nil {
		return b.buf, nil
	}
	data, err := b.payload.normalize(ctx)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []byte{}
	}
	b.buf = data
	return data, nil
}
