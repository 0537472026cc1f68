package storage_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"s3simplified/internal/storage"
	"s3simplified/internal/storage/mocks"
)

func newInstrumented(t *testing.T) (storage.Transport, *mocks.MockTransport, *prometheus.Registry, *tracetest.SpanRecorder) {
	t.Helper()
	reg := prometheus.NewRegistry()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	m := new(mocks.MockTransport)
	tr, err := storage.Instrument(m, reg, tp.Tracer("test"))
	require.NoError(t, err)
	return tr, m, reg, sr
}

func TestInstrument_CountsByOutcome(t *testing.T) {
	tr, m, reg, _ := newInstrumented(t)
	ctx := context.Background()

	m.On("HeadBucket", mock.Anything, "present").Return(nil)
	m.On("HeadBucket", mock.Anything, "absent").Return(storage.ErrNoSuchBucket)
	m.On("ListBuckets", mock.Anything).Return(nil, errors.New("boom"))

	require.NoError(t, tr.HeadBucket(ctx, "present"))
	require.NoError(t, tr.HeadBucket(ctx, "present"))
	assert.ErrorIs(t, tr.HeadBucket(ctx, "absent"), storage.ErrNoSuchBucket)
	_, err := tr.ListBuckets(ctx)
	assert.EqualError(t, err, "boom")

	expected := `
# HELP s3simplified_transport_requests_total Total number of object-store requests by operation and outcome.
# TYPE s3simplified_transport_requests_total counter
s3simplified_transport_requests_total{op="HeadBucket",status="not_found"} 1
s3simplified_transport_requests_total{op="HeadBucket",status="ok"} 2
s3simplified_transport_requests_total{op="ListBuckets",status="error"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "s3simplified_transport_requests_total"))

	n, err := testutil.GatherAndCount(reg, "s3simplified_transport_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	m.AssertExpectations(t)
}

func TestInstrument_Spans(t *testing.T) {
	tr, m, _, sr := newInstrumented(t)
	ctx := context.Background()

	m.On("PutObject", mock.Anything, "b", "k", []byte("abc"), map[string]string(nil)).Return(nil)
	m.On("GetObject", mock.Anything, "b", "missing", false).Return(storage.Object{}, storage.ErrNotFound)
	m.On("DeleteObject", mock.Anything, "b", "k").Return(errors.New("denied"))

	require.NoError(t, tr.PutObject(ctx, "b", "k", []byte("abc"), nil))
	_, err := tr.GetObject(ctx, "b", "missing", false)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Error(t, tr.DeleteObject(ctx, "b", "k"))

	spans := sr.Ended()
	require.Len(t, spans, 3)
	assert.Equal(t, "storage.PutObject", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, "storage.GetObject", spans[1].Name())
	assert.Equal(t, codes.Unset, spans[1].Status().Code, "missing objects are an expected outcome")
	assert.Equal(t, "storage.DeleteObject", spans[2].Name())
	assert.Equal(t, codes.Error, spans[2].Status().Code)
	assert.Equal(t, "denied", spans[2].Status().Description)
}

func TestInstrument_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := storage.Instrument(new(mocks.MockTransport), reg, nil)
	require.NoError(t, err)

	_, err = storage.Instrument(new(mocks.MockTransport), reg, nil)
	assert.Error(t, err)
}

func TestInstrument_NilRegisterer(t *testing.T) {
	m := new(mocks.MockTransport)
	m.On("ListObjects", mock.Anything, "b").Return([]string{"a", "b"}, nil)

	tr, err := storage.Instrument(m, nil, nil)
	require.NoError(t, err)

	keys, err := tr.ListObjects(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)
}
