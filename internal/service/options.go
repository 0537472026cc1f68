package service

import (
	"time"

	"github.com/sirupsen/logrus"

	"s3simplified/internal/config"
	"s3simplified/internal/logging"
)

const (
	defaultChunkSize           = 5 * config.MB
	defaultSignedURLExpiration = 300 * time.Second
	defaultRegion              = "us-east-1"
)

// Options configures the bucket layers.
type Options struct {
	MultipartChunkSize       int64
	MultipartUploadThreshold int64
	SignedURLExpiration      time.Duration
	// PublicHost is the host part of public object URLs. When empty it is
	// derived from Region.
	PublicHost string
	Region     string
	Logger     logrus.FieldLogger
}

// OptionsFromConfig maps the storage configuration onto Options.
func OptionsFromConfig(cfg config.StorageConfig, log logrus.FieldLogger) Options {
	return Options{
		MultipartChunkSize:       cfg.MultipartChunkSize,
		MultipartUploadThreshold: cfg.MultipartUploadThreshold,
		SignedURLExpiration:      cfg.SignedURLExpiration(),
		PublicHost:               cfg.PublicHost,
		Region:                   cfg.Region,
		Logger:                   log,
	}
}

func (o Options) withDefaults() Options {
	if o.MultipartChunkSize <= 0 {
		o.MultipartChunkSize = defaultChunkSize
	}
	if o.MultipartUploadThreshold < 0 {
		o.MultipartUploadThreshold = 0
	}
	if o.SignedURLExpiration <= 0 {
		o.SignedURLExpiration = defaultSignedURLExpiration
	}
	if o.Region == "" {
		o.Region = defaultRegion
	}
	if o.PublicHost == "" {
		o.PublicHost = config.DefaultPublicHost(o.Region)
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
	return o
}
