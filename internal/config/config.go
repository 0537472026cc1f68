package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverS3    = "s3"
	DriverMinIO = "minio"

	MB = 1024 * 1024
)

// StorageConfig holds the object-store transport and upload settings.
type StorageConfig struct {
	Driver          string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	// PublicHost is the host part of public object URLs, https://{bucket}.{PublicHost}/{key}.
	PublicHost string

	MultipartChunkSize       int64
	MultipartUploadThreshold int64
	SignedURLExpirationSec   int
	AppendFileTypeToKey      bool
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string
	Format string
}

// AppConfig is the centralized configuration struct for the module.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Storage StorageConfig
	Log     LogConfig
}

// Load reads configuration from environment variables. With ENV=dev a .env
// file in the working directory is loaded first; real environment variables
// take precedence over it.
func Load() *AppConfig {
	if os.Getenv("ENV") == "dev" {
		_ = godotenv.Load()
	}

	region := getEnv("STORAGE_REGION", "ap-southeast-1")
	return &AppConfig{
		Storage: StorageConfig{
			Driver:                   getEnv("STORAGE_DRIVER", DriverS3),
			Endpoint:                 getEnv("STORAGE_ENDPOINT", ""),
			Region:                   region,
			AccessKeyID:              getEnv("STORAGE_ACCESS_KEY_ID", ""),
			SecretAccessKey:          getEnv("STORAGE_SECRET_ACCESS_KEY", ""),
			UseSSL:                   getEnvBool("STORAGE_USE_SSL", true),
			PublicHost:               getEnv("STORAGE_PUBLIC_HOST", DefaultPublicHost(region)),
			MultipartChunkSize:       getEnvInt64("STORAGE_MULTIPART_CHUNK_SIZE", 5*MB),
			MultipartUploadThreshold: getEnvInt64("STORAGE_MULTIPART_THRESHOLD", 5*MB),
			SignedURLExpirationSec:   getEnvInt("STORAGE_SIGNED_URL_EXPIRATION", 300),
			AppendFileTypeToKey:      getEnvBool("STORAGE_APPEND_FILE_TYPE", true),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

// DefaultPublicHost returns the AWS virtual-hosted endpoint for region.
func DefaultPublicHost(region string) string {
	return fmt.Sprintf("s3.%s.amazonaws.com", region)
}

// SignedURLExpiration returns the lifetime of presigned links.
func (c StorageConfig) SignedURLExpiration() time.Duration {
	return time.Duration(c.SignedURLExpirationSec) * time.Second
}

// Validate reports every invalid field at once.
func (c StorageConfig) Validate() error {
	var errs []error
	switch c.Driver {
	case DriverS3:
	case DriverMinIO:
		if c.Endpoint == "" {
			errs = append(errs, errors.New("minio endpoint is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Driver))
	}
	if c.AccessKeyID == "" || c.SecretAccessKey == "" {
		errs = append(errs, errors.New("storage credentials are required"))
	}
	if c.Region == "" {
		errs = append(errs, errors.New("storage region is required"))
	}
	if c.MultipartChunkSize <= 0 {
		errs = append(errs, errors.New("multipart chunk size must be positive"))
	}
	if c.MultipartUploadThreshold < 0 {
		errs = append(errs, errors.New("multipart threshold must not be negative"))
	}
	if c.SignedURLExpirationSec <= 0 {
		errs = append(errs, errors.New("signed url expiration must be positive"))
	}
	return errors.Join(errs...)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return i
		}
	}
	return def
}
