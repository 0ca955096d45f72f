package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "kyc_portal", cfg.Mongo.Database)
	assert.Equal(t, 12*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, uint(2), cfg.Upload.MaxRetries)
	assert.Equal(t, int64(5<<20), cfg.Upload.MaxBytes)
	assert.Equal(t, []string{"KP", "IR", "SY", "CU"}, cfg.SanctionedCountries)
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv("UPLOAD_BACKEND", "gcs")
	t.Setenv("UPLOAD_GCS_BUCKET", "kyc-docs")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("SANCTIONED_COUNTRIES", "RU,BY")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "kyc-docs", cfg.Upload.GCSBucket)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, []string{"RU", "BY"}, cfg.SanctionedCountries)
}

func TestValidate(t *testing.T) {
	t.Setenv("UPLOAD_BACKEND", "ftp")
	_, err := Parse()
	assert.Error(t, err)

	cfg := Config{
		Upload: UploadConfig{Backend: UploadBackendHost},
		PubSub: PubSubConfig{Enabled: true},
	}
	assert.Error(t, cfg.Validate())
}

func TestRequireUpload(t *testing.T) {
	assert.Error(t, Config{Upload: UploadConfig{Backend: UploadBackendHost}}.RequireUpload())
	assert.NoError(t, Config{Upload: UploadConfig{Backend: UploadBackendHost, Endpoint: "https://x"}}.RequireUpload())
	assert.Error(t, Config{Upload: UploadConfig{Backend: UploadBackendGCS}}.RequireUpload())
	assert.NoError(t, Config{Upload: UploadConfig{Backend: UploadBackendGCS, GCSBucket: "b"}}.RequireUpload())
}

func TestRequireJWTSecret(t *testing.T) {
	assert.Error(t, Config{}.RequireJWTSecret())
	cfg := Config{Auth: AuthConfig{JWTSecret: "0123456789abcdef0123456789abcdef"}}
	assert.NoError(t, cfg.RequireJWTSecret())
}
