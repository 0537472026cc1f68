package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"s3simplified/internal/config"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(config.LogConfig{Level: "debug", Format: "json"}, &buf)

	l.WithField("bucket", "my-bucket").Debug("created object")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "created object", entry["msg"])
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "my-bucket", entry["bucket"])
	assert.Contains(t, entry, "ts")
}

func TestNew_Level(t *testing.T) {
	tests := []struct {
		in   string
		want logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"warn", logrus.WarnLevel},
		{"", logrus.InfoLevel},
		{"loud", logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			l := NewWithWriter(config.LogConfig{Level: tt.in}, &bytes.Buffer{})
			assert.Equal(t, tt.want, l.GetLevel())
		})
	}
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(config.LogConfig{Level: "info", Format: "text"}, &buf)
	l.Info("hello")

	assert.IsType(t, &logrus.TextFormatter{}, l.Formatter)
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestDiscard(t *testing.T) {
	l := Discard()
	assert.NotPanics(t, func() { l.Error("dropped") })
}
