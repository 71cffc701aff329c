package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Environment keys understood by Load
const (
	KeyPort               = "PORT"
	KeyRootFolderID       = "GALLERY_ROOT_FOLDER_ID"
	KeyServiceAccountKey  = "GOOGLE_SERVICE_ACCOUNT_KEY"
	KeyServiceAccountFile = "GOOGLE_SERVICE_ACCOUNT_FILE"
	KeyRevalidateSecret   = "REVALIDATE_SECRET"
	KeyJWTSecret          = "AUTH_JWT_SECRET"
	KeyCacheBackend       = "CACHE_BACKEND"
	KeyRedisURL           = "REDIS_URL"
	KeyCacheTTL           = "CACHE_TTL"
	KeyBatchSize          = "DRIVE_BATCH_SIZE"
	KeyRateLimit          = "DRIVE_RATE_LIMIT"
	KeyThumbnailWidth     = "THUMBNAIL_WIDTH"
	KeySnapshotBucket     = "SNAPSHOT_BUCKET"
	KeyWarmSchedule       = "WARM_SCHEDULE"
	KeyLogLevel           = "LOG_LEVEL"
	KeyViewsDir           = "VIEWS_DIR"
)

// Config holds all configuration for the application
type Config struct {
	Port string

	RootFolderID       string
	ServiceAccountKey  string
	ServiceAccountFile string

	RevalidateSecret string
	JWTSecret        string

	CacheBackend string
	RedisURL     string
	CacheTTL     time.Duration

	BatchSize      int
	RateLimit      float64
	ThumbnailWidth int

	SnapshotBucket string
	WarmSchedule   string

	LogLevel string
	ViewsDir string
}

// ErrRootFolderNotSet is returned when the GALLERY_ROOT_FOLDER_ID environment variable is not set
var ErrRootFolderNotSet = errors.New("GALLERY_ROOT_FOLDER_ID environment variable not set")

// ErrCredentialsNotSet is returned when neither service account variable is set
var ErrCredentialsNotSet = errors.New("GOOGLE_SERVICE_ACCOUNT_KEY or GOOGLE_SERVICE_ACCOUNT_FILE environment variable not set")

// ErrRevalidateSecretNotSet is returned when the server starts without REVALIDATE_SECRET
var ErrRevalidateSecretNotSet = errors.New("REVALIDATE_SECRET environment variable not set")

// ErrJWTSecretNotSet is returned when the server starts without AUTH_JWT_SECRET
var ErrJWTSecretNotSet = errors.New("AUTH_JWT_SECRET environment variable not set")

// NewViper returns a viper instance reading the environment with the
// application defaults applied.
func NewViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault(KeyPort, "8080")
	v.SetDefault(KeyCacheBackend, "memory")
	v.SetDefault(KeyCacheTTL, time.Hour)
	v.SetDefault(KeyBatchSize, 5)
	v.SetDefault(KeyRateLimit, 0)
	v.SetDefault(KeyThumbnailWidth, 400)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyViewsDir, "./views")

	return v
}

// Load loads the gallery configuration. The Drive root folder and service
// account credentials are required.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:               v.GetString(KeyPort),
		RootFolderID:       strings.TrimSpace(v.GetString(KeyRootFolderID)),
		ServiceAccountKey:  v.GetString(KeyServiceAccountKey),
		ServiceAccountFile: v.GetString(KeyServiceAccountFile),
		RevalidateSecret:   v.GetString(KeyRevalidateSecret),
		JWTSecret:          v.GetString(KeyJWTSecret),
		CacheBackend:       strings.ToLower(v.GetString(KeyCacheBackend)),
		RedisURL:           v.GetString(KeyRedisURL),
		CacheTTL:           v.GetDuration(KeyCacheTTL),
		BatchSize:          v.GetInt(KeyBatchSize),
		RateLimit:          v.GetFloat64(KeyRateLimit),
		ThumbnailWidth:     v.GetInt(KeyThumbnailWidth),
		SnapshotBucket:     v.GetString(KeySnapshotBucket),
		WarmSchedule:       v.GetString(KeyWarmSchedule),
		LogLevel:           v.GetString(KeyLogLevel),
		ViewsDir:           v.GetString(KeyViewsDir),
	}

	if cfg.RootFolderID == "" {
		return nil, ErrRootFolderNotSet
	}
	if cfg.ServiceAccountKey == "" && cfg.ServiceAccountFile == "" {
		return nil, ErrCredentialsNotSet
	}

	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 5
	}
	if cfg.ThumbnailWidth <= 0 {
		cfg.ThumbnailWidth = 400
	}

	return cfg, nil
}

// ValidateServer checks the secrets only the HTTP server needs
func (c *Config) ValidateServer() error {
	if c.RevalidateSecret == "" {
		return ErrRevalidateSecretNotSet
	}
	if c.JWTSecret == "" {
		return ErrJWTSecretNotSet
	}
	return nil
}

// ServerAddress returns the server address with port
func (c *Config) ServerAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}
