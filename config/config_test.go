package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "local", cfg.StorageDriver)
	assert.Equal(t, "log", cfg.MailProvider)
	assert.Equal(t, 5, cfg.LoginMaxAttempts)
	assert.Equal(t, int64(50*1024*1024), cfg.MaxUploadSize)
	assert.Empty(t, cfg.AllowedOrigins)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("PORT", "9000")
	t.Setenv("JWT_EXPIRATION", "60")
	t.Setenv("STORAGE_DRIVER", "S3")
	t.Setenv("S3_BUCKET", "agro")
	t.Setenv("ALLOWED_ORIGINS", "https://a.co, https://b.co ,")
	t.Setenv("BASE_URL", "https://api.agro.co/")

	cfg := Load()

	assert.Equal(t, "production", cfg.Environment)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 60, cfg.JWTExpiration)
	assert.Equal(t, "s3", cfg.StorageDriver)
	assert.Equal(t, []string{"https://a.co", "https://b.co"}, cfg.AllowedOrigins)
	assert.Equal(t, "https://api.agro.co", cfg.BaseURL)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, "JWT secret is required"},
		{"missing database", func(c *Config) { c.DatabaseURL = "" }, "database URL is required"},
		{"bad environment", func(c *Config) { c.Environment = "staging" }, "invalid environment"},
		{"bad storage", func(c *Config) { c.StorageDriver = "ftp" }, "invalid storage driver"},
		{"s3 without bucket", func(c *Config) { c.StorageDriver = "s3"; c.S3Bucket = "" }, "S3 bucket is required"},
		{"bad mail provider", func(c *Config) { c.MailProvider = "pigeon" }, "invalid mail provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.SetDefaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	cfg := &Config{AllowedOrigins: []string{"https://a.co"}}
	clone := cfg.Clone()
	clone.AllowedOrigins[0] = "https://changed.co"

	assert.Equal(t, "https://a.co", cfg.AllowedOrigins[0])
}

func TestStringHidesSecrets(t *testing.T) {
	cfg := &Config{JWTSecret: "super-secret", SMTPPassword: "hunter2"}
	cfg.SetDefaults()

	out := cfg.String()
	assert.NotContains(t, out, "super-secret")
	assert.NotContains(t, out, "hunter2")
}
