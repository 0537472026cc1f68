package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadata_SetGetDelete(t *testing.T) {
	m := NewMetadata()
	assert.True(t, m.IsEmpty())

	m.Set(KeyContentType, "image/png")
	m.Set(KeyContentLength, "10")
	m.Set(KeyContentType, "image/jpeg")

	v, ok := m.Get(KeyContentType)
	assert.True(t, ok)
	assert.Equal(t, "image/jpeg", v)
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, []string{KeyContentType, KeyContentLength}, m.Keys())
	assert.Equal(t, []string{"image/jpeg", "10"}, m.Values())

	_, ok = m.Get("content-type")
	assert.False(t, ok, "lookups are case-sensitive")

	m.Delete(KeyContentType)
	assert.False(t, m.ContainsKey(KeyContentType))
	assert.Equal(t, []string{KeyContentLength}, m.Keys())

	m.Delete("absent")
	assert.Equal(t, 1, m.Len())

	m.Clear()
	assert.True(t, m.IsEmpty())
}

func TestMetadata_Contains(t *testing.T) {
	m := NewMetadataFrom([2]string{KeyOriginalName, "cat.png"}, [2]string{KeyFileType, "png"})

	assert.True(t, m.ContainsKey(KeyOriginalName))
	assert.True(t, m.ContainsValue("png"))
	assert.False(t, m.ContainsValue("jpg"))
	assert.True(t, m.ContainsPair(KeyFileType, "png"))
	assert.False(t, m.ContainsPair(KeyFileType, "cat.png"))
	assert.Equal(t, [][2]string{{KeyOriginalName, "cat.png"}, {KeyFileType, "png"}}, m.Pairs())
}

func TestMetadata_RecordAndClone(t *testing.T) {
	m := NewMetadataFrom([2]string{KeyContentType, "text/plain"})

	rec := m.Record()
	rec["extra"] = "x"
	assert.False(t, m.ContainsKey("extra"))

	c := m.Clone()
	c.Set(KeyContentType, "image/gif")
	v, _ := m.Get(KeyContentType)
	assert.Equal(t, "text/plain", v)
}

func TestMetadata_ZeroValueUsable(t *testing.T) {
	var m Metadata
	m.Set("a", "b")
	v, ok := m.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "b", v)
}

func TestMetadataFromRecord(t *testing.T) {
	tests := []struct {
		name   string
		record map[string]string
		want   map[string]string
	}{
		{
			name:   "minio canonical header keys",
			record: map[string]string{"Identifier": "abc.png", "Content-Type": "image/png", "File-Type": "png"},
			want:   map[string]string{KeyIdentifier: "abc.png", KeyContentType: "image/png", KeyFileType: "png"},
		},
		{
			name:   "aws lowercase keys",
			record: map[string]string{"content-disposition": "abc", "original-name": "cat.png", "content-length": "10"},
			want:   map[string]string{KeyContentDisposition: "abc", KeyOriginalName: "cat.png", KeyContentLength: "10"},
		},
		{
			name:   "unknown keys untouched",
			record: map[string]string{"X-Custom": "1"},
			want:   map[string]string{"X-Custom": "1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := MetadataFromRecord(tt.record)
			assert.Equal(t, tt.want, m.Record())
		})
	}
}

func TestMetadata_JSON(t *testing.T) {
	m := NewMetadataFrom([2]string{KeyContentType, "image/png"}, [2]string{KeyIdentifier, "u.png"})

	b, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `[["Content-Type","image/png"],["identifier","u.png"]]`, string(b))

	var decoded Metadata
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, m.Pairs(), decoded.Pairs())

	assert.Error(t, json.Unmarshal([]byte(`[["only-key"]]`), &decoded))
}

func TestObjectJSON_Marshal(t *testing.T) {
	link := "https://b.s3.ap-southeast-1.amazonaws.com/u.png"
	b, err := json.Marshal(ObjectJSON{
		FileLink: &link,
		Metadata: NewMetadataFrom([2]string{KeyIdentifier, "u.png"}),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"FileLink":"`+link+`","Metadata":[["identifier","u.png"]]}`, string(b))

	b, err = json.Marshal(ObjectJSON{Metadata: NewMetadata()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"FileLink":null,"Metadata":[]}`, string(b))
}

func TestError_IsAndMessage(t *testing.T) {
	cause := errors.New("connection reset")

	tests := []struct {
		name    string
		err     error
		target  error
		wantMsg string
	}{
		{"invalid name", InvalidName("My_Bucket", "lowercase"), ErrInvalidName, `bucket name "My_Bucket" is invalid: violates rule lowercase`},
		{"missing bucket", MissingBucket("media"), ErrMissingBucket, "bucket media does not exist"},
		{"missing object", MissingObject("media", "k"), ErrMissingObject, "object k does not exist in bucket media"},
		{"existing object", ExistingObject("media", "k"), ErrExistingObject, "object k already exists in bucket media"},
		{"transport", Transport("PutObject", "media", "k", cause), ErrTransport, "transport failure during PutObject on bucket media key k: connection reset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.target)
			assert.Equal(t, tt.wantMsg, tt.err.Error())
			assert.False(t, errors.Is(tt.err, &Error{Kind: KindMissingSize}))
		})
	}

	wrapped := fmt.Errorf("create object: %w", Transport("PutObject", "media", "k", cause))
	assert.ErrorIs(t, wrapped, cause)
	assert.ErrorIs(t, wrapped, ErrTransport)
	assert.Nil(t, Transport("PutObject", "media", "k", nil))
}
