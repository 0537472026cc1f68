package storage

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "s3simplified/internal/storage"

// Request outcome labels.
const (
	StatusOK       = "ok"
	StatusNotFound = "not_found"
	StatusError    = "error"
)

// instrumented wraps a Transport with request metrics and a span per call.
type instrumented struct {
	next     Transport
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	tracer   trace.Tracer
}

// Instrument decorates next with Prometheus metrics registered on reg and
// spans from tracer. A nil tracer falls back to the global provider.
func Instrument(next Transport, reg prometheus.Registerer, tracer trace.Tracer) (Transport, error) {
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	i := &instrumented{
		next:   next,
		tracer: tracer,
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "s3simplified_transport_requests_total",
				Help: "Total number of object-store requests by operation and outcome.",
			},
			[]string{"op", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "s3simplified_transport_request_duration_seconds",
				Help:    "Latency of object-store requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
	}

	if reg != nil {
		if err := reg.Register(i.requests); err != nil {
			return nil, err
		}
		if err := reg.Register(i.duration); err != nil {
			return nil, err
		}
	}
	return i, nil
}

func statusOf(err error) string {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoSuchBucket), errors.Is(err, ErrNoSuchBucketPolicy):
		return StatusNotFound
	default:
		return StatusError
	}
}

func observe[T any](ctx context.Context, i *instrumented, op string, attrs []attribute.KeyValue, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := i.tracer.Start(ctx, "storage."+op, trace.WithAttributes(attrs...))
	defer span.End()

	start := time.Now()
	out, err := fn(ctx)
	status := statusOf(err)

	i.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	i.requests.WithLabelValues(op, status).Inc()

	span.SetAttributes(attribute.String("storage.status", status))
	if status == StatusError {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return out, err
}

func observeErr(ctx context.Context, i *instrumented, op string, attrs []attribute.KeyValue, fn func(context.Context) error) error {
	_, err := observe(ctx, i, op, attrs, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

func bucketAttrs(bucket string) []attribute.KeyValue {
	return []attribute.KeyValue{attribute.String("storage.bucket", bucket)}
}

func objectAttrs(bucket, key string) []attribute.KeyValue {
	return []attribute.KeyValue{attribute.String("storage.bucket", bucket), attribute.String("storage.key", key)}
}

func (i *instrumented) CreateBucket(ctx context.Context, bucket string) error {
	return observeErr(ctx, i, "CreateBucket", bucketAttrs(bucket), func(ctx context.Context) error {
		return i.next.CreateBucket(ctx, bucket)
	})
}

func (i *instrumented) DeleteBucket(ctx context.Context, bucket string) error {
	return observeErr(ctx, i, "DeleteBucket", bucketAttrs(bucket), func(ctx context.Context) error {
		return i.next.DeleteBucket(ctx, bucket)
	})
}

func (i *instrumented) ListBuckets(ctx context.Context) ([]string, error) {
	return observe(ctx, i, "ListBuckets", nil, i.next.ListBuckets)
}

func (i *instrumented) HeadBucket(ctx context.Context, bucket string) error {
	return observeErr(ctx, i, "HeadBucket", bucketAttrs(bucket), func(ctx context.Context) error {
		return i.next.HeadBucket(ctx, bucket)
	})
}

func (i *instrumented) PutObject(ctx context.Context, bucket, key string, data []byte, metadata map[string]string) error {
	attrs := append(objectAttrs(bucket, key), attribute.Int("storage.size", len(data)))
	return observeErr(ctx, i, "PutObject", attrs, func(ctx context.Context) error {
		return i.next.PutObject(ctx, bucket, key, data, metadata)
	})
}

func (i *instrumented) GetObject(ctx context.Context, bucket, key string, withBody bool) (Object, error) {
	attrs := append(objectAttrs(bucket, key), attribute.Bool("storage.with_body", withBody))
	return observe(ctx, i, "GetObject", attrs, func(ctx context.Context) (Object, error) {
		return i.next.GetObject(ctx, bucket, key, withBody)
	})
}

func (i *instrumented) HeadObject(ctx context.Context, bucket, key string) (map[string]string, error) {
	return observe(ctx, i, "HeadObject", objectAttrs(bucket, key), func(ctx context.Context) (map[string]string, error) {
		return i.next.HeadObject(ctx, bucket, key)
	})
}

func (i *instrumented) DeleteObject(ctx context.Context, bucket, key string) error {
	return observeErr(ctx, i, "DeleteObject", objectAttrs(bucket, key), func(ctx context.Context) error {
		return i.next.DeleteObject(ctx, bucket, key)
	})
}

func (i *instrumented) CopyObject(ctx context.Context, bucket, srcKey, dstKey string) error {
	attrs := append(objectAttrs(bucket, srcKey), attribute.String("storage.dst_key", dstKey))
	return observeErr(ctx, i, "CopyObject", attrs, func(ctx context.Context) error {
		return i.next.CopyObject(ctx, bucket, srcKey, dstKey)
	})
}

func (i *instrumented) ListObjects(ctx context.Context, bucket string) ([]string, error) {
	return observe(ctx, i, "ListObjects", bucketAttrs(bucket), func(ctx context.Context) ([]string, error) {
		return i.next.ListObjects(ctx, bucket)
	})
}

func (i *instrumented) CreateMultipartUpload(ctx context.Context, bucket, key string, metadata map[string]string) (string, error) {
	return observe(ctx, i, "CreateMultipartUpload", objectAttrs(bucket, key), func(ctx context.Context) (string, error) {
		return i.next.CreateMultipartUpload(ctx, bucket, key, metadata)
	})
}

func (i *instrumented) UploadPart(ctx context.Context, bucket, key, uploadID string, partNumber int, data []byte) (string, error) {
	attrs := append(objectAttrs(bucket, key), attribute.Int("storage.part_number", partNumber), attribute.Int("storage.size", len(data)))
	return observe(ctx, i, "UploadPart", attrs, func(ctx context.Context) (string, error) {
		return i.next.UploadPart(ctx, bucket, key, uploadID, partNumber, data)
	})
}

func (i *instrumented) CompleteMultipartUpload(ctx context.Context, bucket, key, uploadID string, parts []CompletedPart) error {
	attrs := append(objectAttrs(bucket, key), attribute.Int("storage.parts", len(parts)))
	return observeErr(ctx, i, "CompleteMultipartUpload", attrs, func(ctx context.Context) error {
		return i.next.CompleteMultipartUpload(ctx, bucket, key, uploadID, parts)
	})
}

func (i *instrumented) GetBucketACL(ctx context.Context, bucket string) ([]Grant, error) {
	return observe(ctx, i, "GetBucketACL", bucketAttrs(bucket), func(ctx context.Context) ([]Grant, error) {
		return i.next.GetBucketACL(ctx, bucket)
	})
}

func (i *instrumented) GetBucketPolicy(ctx context.Context, bucket string) (string, error) {
	return observe(ctx, i, "GetBucketPolicy", bucketAttrs(bucket), func(ctx context.Context) (string, error) {
		return i.next.GetBucketPolicy(ctx, bucket)
	})
}

func (i *instrumented) PresignGetObject(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	return observe(ctx, i, "PresignGetObject", objectAttrs(bucket, key), func(ctx context.Context) (string, error) {
		return i.next.PresignGetObject(ctx, bucket, key, expiry)
	})
}
