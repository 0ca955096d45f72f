// Package config loads the settings shared by the portal server, the Temporal
// workers and the admin console.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Upload backends.
const (
	UploadBackendHost = "host"
	UploadBackendGCS  = "gcs"
)

type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"merchant-kyc-portal"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`

	Mongo    MongoConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Temporal TemporalConfig
	Upload   UploadConfig
	PubSub   PubSubConfig

	OtelURL string `env:"OTEL_URL"`

	// Company countries that fail internal screening.
	SanctionedCountries []string `env:"SANCTIONED_COUNTRIES" envSeparator:"," envDefault:"KP,IR,SY,CU"`
}

type MongoConfig struct {
	URI         string        `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	Database    string        `env:"MONGO_DATABASE" envDefault:"kyc_portal"`
	MaxPoolSize uint64        `env:"MONGO_MAX_POOL_SIZE" envDefault:"100"`
	MinPoolSize uint64        `env:"MONGO_MIN_POOL_SIZE" envDefault:"5"`
	MaxIdleTime time.Duration `env:"MONGO_MAX_IDLE_TIME" envDefault:"5m"`
	Timeout     time.Duration `env:"MONGO_TIMEOUT" envDefault:"5s"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type AuthConfig struct {
	JWTSecret     string        `env:"JWT_SECRET"`
	Issuer        string        `env:"JWT_ISSUER" envDefault:"merchant-kyc-portal"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"12h"`
	AdminEmail    string        `env:"ADMIN_EMAIL"`
	AdminPassword string        `env:"ADMIN_PASSWORD"`
}

type TemporalConfig struct {
	HostPort  string `env:"TEMPORAL_HOST_PORT" envDefault:"localhost:7233"`
	Namespace string `env:"TEMPORAL_NAMESPACE" envDefault:"default"`
}

type UploadConfig struct {
	Backend    string        `env:"UPLOAD_BACKEND" envDefault:"host"`
	Endpoint   string        `env:"UPLOAD_ENDPOINT"`
	MaxBytes   int64         `env:"UPLOAD_MAX_BYTES" envDefault:"5242880"`
	MaxRetries uint          `env:"UPLOAD_MAX_RETRIES" envDefault:"2"`
	Backoff    time.Duration `env:"UPLOAD_BACKOFF" envDefault:"500ms"`
	Timeout    time.Duration `env:"UPLOAD_TIMEOUT" envDefault:"30s"`
	GCSBucket  string        `env:"UPLOAD_GCS_BUCKET"`
}

type PubSubConfig struct {
	Enabled   bool   `env:"PUBSUB_ENABLED" envDefault:"false"`
	ProjectID string `env:"PUBSUB_PROJECT_ID"`
	Topic     string `env:"PUBSUB_TOPIC" envDefault:"merchant-notifications"`
}

// Load reads an optional .env file and then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse reads the configuration from the environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that have no usable default.
func (c Config) Validate() error {
	switch c.Upload.Backend {
	case UploadBackendHost, UploadBackendGCS:
	default:
		return fmt.Errorf("unknown UPLOAD_BACKEND %q", c.Upload.Backend)
	}
	if c.PubSub.Enabled && c.PubSub.ProjectID == "" {
		return errors.New("PUBSUB_PROJECT_ID is required when PUBSUB_ENABLED is set")
	}
	return nil
}

// RequireUpload fails when the selected upload backend has no destination.
// Only the portal server stores documents.
func (c Config) RequireUpload() error {
	if c.Upload.Backend == UploadBackendGCS {
		if c.Upload.GCSBucket == "" {
			return errors.New("UPLOAD_GCS_BUCKET is required for the gcs upload backend")
		}
		return nil
	}
	if c.Upload.Endpoint == "" {
		return errors.New("UPLOAD_ENDPOINT is required for the host upload backend")
	}
	return nil
}

// RequireJWTSecret fails when no signing secret is configured. Only the
// portal server signs tokens, so the workers do not call it.
func (c Config) RequireJWTSecret() error {
	if len(c.Auth.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 bytes")
	}
	return nil
}
