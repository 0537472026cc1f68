package object

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"s3simplified/internal/model"
)

type payloadKind int

const (
	kindNone payloadKind = iota
	kindBytes
	kindText
	kindBlob
	kindStream
	kindReader
)

// Blob is a sized random-access byte source, such as *bytes.Reader,
// *strings.Reader or *io.SectionReader.
type Blob interface {
	io.ReaderAt
	Size() int64
}

// Chunk is one event of a push stream. A chunk carrying Err ends the stream
// with that error.
type Chunk struct {
	Data []byte
	Err  error
}

// Payload is the data of an object before upload. It is a tagged variant:
// build it with one of the From constructors. The zero Payload is invalid.
type Payload struct {
	kind   payloadKind
	bytes  []byte
	text   string
	blob   Blob
	stream <-chan Chunk
	reader io.Reader
}

// FromBytes wraps b without copying. Fixed-size arrays are passed as arr[:].
func FromBytes(b []byte) Payload { return Payload{kind: kindBytes, bytes: b} }

func FromText(s string) Payload { return Payload{kind: kindText, text: s} }

func FromBlob(b Blob) Payload { return Payload{kind: kindBlob, blob: b} }

// FromStream wraps a push stream. The stream ends when the channel is closed.
func FromStream(ch <-chan Chunk) Payload { return Payload{kind: kindStream, stream: ch} }

// FromReader wraps a pull stream read until io.EOF.
func FromReader(r io.Reader) Payload { return Payload{kind: kindReader, reader: r} }

// normalize turns the payload into one contiguous buffer. Stream and reader
// payloads are consumed.
func (p Payload) normalize(ctx context.Context) ([]byte, error) {
	switch p.kind {
	case kindBytes:
		if p.bytes == nil {
			return []byte{}, nil
		}
		return p.bytes, nil
	case kindText:
		return []byte(p.text), nil
	case kindBlob:
		if p.blob == nil {
			break
		}
		return readBlob(p.blob)
	case kindStream:
		if p.stream == nil {
			break
		}
		return drainStream(ctx, p.stream)
	case kindReader:
		if p.reader == nil {
			break
		}
		return io.ReadAll(p.reader)
	}
	return nil, model.ErrUnsupportedPayload
}

func readBlob(b Blob) ([]byte, error) {
	size := b.Size()
	if size < 0 {
		return nil, fmt.Errorf("%w: blob reports size %d", model.ErrUnsupportedPayload, size)
	}
	buf := make([]byte, size)
	n, err := b.ReadAt(buf, 0)
	// io.ReaderAt may return io.EOF together with a full read.
	if err != nil && !(err == io.EOF && n == len(buf)) {
		return nil, err
	}
	return buf[:n], nil
}

func drainStream(ctx context.Context, ch <-chan Chunk) ([]byte, error) {
	var buf bytes.Buffer
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case c, ok := <-ch:
			if !ok {
				return buf.Bytes(), nil
			}
			if c.Err != nil {
				return nil, c.Err
			}
			buf.Write(c.Data)
		}
	}
}
