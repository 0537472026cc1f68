package model

import (
	"fmt"
	"strings"
)

// Kind classifies an Error.
type Kind int

const (
	KindInvalidName Kind = iota + 1
	KindMissingBucket
	KindMissingObject
	KindExistingObject
	KindUnsupportedPayload
	KindUnknownContentType
	KindMissingSize
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindInvalidName:
		return "invalid name"
	case KindMissingBucket:
		return "missing bucket"
	case KindMissingObject:
		return "missing object"
	case KindExistingObject:
		return "existing object"
	case KindUnsupportedPayload:
		return "unsupported payload"
	case KindUnknownContentType:
		return "unknown content type"
	case KindMissingSize:
		return "missing size"
	case KindTransport:
		return "transport failure"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is the single error type raised by the storage layers. Kind selects
// the variant; the remaining fields carry whatever context applies to it.
type Error struct {
	Kind        Kind
	Bucket      string
	Key         string
	Rule        string
	ContentType string
	Op          string
	Err         error
}

// Sentinels for errors.Is. They match any *Error of the same Kind.
var (
	ErrInvalidName        = &Error{Kind: KindInvalidName}
	ErrMissingBucket      = &Error{Kind: KindMissingBucket}
	ErrMissingObject      = &Error{Kind: KindMissingObject}
	ErrExistingObject     = &Error{Kind: KindExistingObject}
	ErrUnsupportedPayload = &Error{Kind: KindUnsupportedPayload}
	ErrUnknownContentType = &Error{Kind: KindUnknownContentType}
	ErrMissingSize        = &Error{Kind: KindMissingSize}
	ErrTransport          = &Error{Kind: KindTransport}
)

func (e *Error) Error() string {
	var b strings.Builder
	switch e.Kind {
	case KindInvalidName:
		fmt.Fprintf(&b, "bucket name %q is invalid", e.Bucket)
		if e.Rule != "" {
			fmt.Fprintf(&b, ": violates rule %s", e.Rule)
		}
	case KindMissingBucket:
		fmt.Fprintf(&b, "bucket %s does not exist", e.Bucket)
	case KindMissingObject:
		fmt.Fprintf(&b, "object %s does not exist in bucket %s", e.Key, e.Bucket)
	case KindExistingObject:
		fmt.Fprintf(&b, "object %s already exists in bucket %s", e.Key, e.Bucket)
	case KindUnsupportedPayload:
		b.WriteString("unsupported payload type")
	case KindUnknownContentType:
		fmt.Fprintf(&b, "unknown content type %q", e.ContentType)
	case KindMissingSize:
		b.WriteString("Content-Length is not set")
	case KindTransport:
		b.WriteString("transport failure")
		if e.Op != "" {
			fmt.Fprintf(&b, " during %s", e.Op)
		}
		if e.Bucket != "" {
			fmt.Fprintf(&b, " on bucket %s", e.Bucket)
		}
		if e.Key != "" {
			fmt.Fprintf(&b, " key %s", e.Key)
		}
	default:
		b.WriteString(e.Kind.String())
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// InvalidName reports a bucket name that violates rule.
func InvalidName(bucket, rule string) error {
	return &Error{Kind: KindInvalidName, Bucket: bucket, Rule: rule}
}

func MissingBucket(bucket string) error {
	return &Error{Kind: KindMissingBucket, Bucket: bucket}
}

func MissingObject(bucket, key string) error {
	return &Error{Kind: KindMissingObject, Bucket: bucket, Key: key}
}

func ExistingObject(bucket, key string) error {
	return &Error{Kind: KindExistingObject, Bucket: bucket, Key: key}
}

// Transport wraps a failure returned by the remote store for op. A nil err
// yields nil.
func Transport(op, bucket, key string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindTransport, Op: op, Bucket: bucket, Key: key, Err: err}
}
