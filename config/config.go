package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment   string
	Port          string
	BaseURL       string
	FrontendURL   string
	DatabaseURL   string
	JWTSecret     string
	JWTExpiration int

	// Redis Configuration (empty URL keeps blacklist and limits in memory)
	RedisURL string

	// Rate Limiting Configuration
	RateLimitRequests   int
	RateLimitWindow     int
	AuthRateLimit       int
	VerifyRateLimit     int
	DisableRateLimiting bool

	// Login / verification policy
	LoginMaxAttempts       int
	LoginLockMinutes       int
	VerificationCodeTTL    int
	RandomPasswordTTL      int
	MaxVerificationAttempt int

	// Email Configuration
	MailProvider      string
	MailFrom          string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
	SendGridAPIKey    string
	GmailClientID     string
	GmailClientSecret string
	GmailRefreshToken string

	// WhatsApp Configuration
	WhatsAppAPIURL string
	WhatsAppToken  string

	// File Upload Configuration
	StorageDriver  string
	UploadPath     string
	MaxUploadSize  int64
	S3Endpoint     string
	S3Region       string
	S3Bucket       string
	S3AccessKey    string
	S3SecretKey    string
	S3UsePathStyle bool
	S3PublicURL    string

	// Error reporting
	RollbarToken string

	// Logging Configuration
	LogLevel string

	// CORS Configuration
	AllowedOrigins []string
}

var (
	validEnvironments  = map[string]bool{"development": true, "production": true, "test": true}
	validStorageDriver = map[string]bool{"local": true, "s3": true}
	validMailProviders = map[string]bool{"smtp": true, "sendgrid": true, "gmail": true, "log": true}
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("port", "2020")
	v.SetDefault("base_url", "http://localhost:2020")
	v.SetDefault("frontend_url", "http://localhost:4200")
	v.SetDefault("database_url", "agroinnova.db")
	v.SetDefault("jwt_secret", "change-me-in-production")
	v.SetDefault("jwt_expiration", 2*60*60)

	v.SetDefault("redis_url", "")

	v.SetDefault("rate_limit_requests", 100)
	v.SetDefault("rate_limit_window", 60)
	v.SetDefault("auth_rate_limit", 60)
	v.SetDefault("verify_rate_limit", 5)
	v.SetDefault("disable_rate_limiting", false)

	v.SetDefault("login_max_attempts", 5)
	v.SetDefault("login_lock_minutes", 3)
	v.SetDefault("verification_code_ttl", 10)
	v.SetDefault("random_password_ttl", 5)
	v.SetDefault("max_verification_attempts", 5)

	v.SetDefault("mail_provider", "log")
	v.SetDefault("mail_from", "no-reply@agroinnova.co")
	v.SetDefault("smtp_host", "smtp.gmail.com")
	v.SetDefault("smtp_port", 587)

	v.SetDefault("storage_driver", "local")
	v.SetDefault("upload_path", "./uploads")
	v.SetDefault("max_upload_size", 50*1024*1024)
	v.SetDefault("s3_region", "us-east-1")
	v.SetDefault("s3_use_path_style", true)

	v.SetDefault("log_level", "info")
	v.SetDefault("allowed_origins", "")
}

// Load loads configuration from an optional config.yaml and environment variables.
// Environment variables win over the file; the file wins over defaults.
func Load() *Config {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Printf("config: ignoring unreadable config file: %v\n", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Environment:   v.GetString("environment"),
		Port:          v.GetString("port"),
		BaseURL:       strings.TrimRight(v.GetString("base_url"), "/"),
		FrontendURL:   strings.TrimRight(v.GetString("frontend_url"), "/"),
		DatabaseURL:   v.GetString("database_url"),
		JWTSecret:     v.GetString("jwt_secret"),
		JWTExpiration: v.GetInt("jwt_expiration"),

		RedisURL: v.GetString("redis_url"),

		RateLimitRequests:   v.GetInt("rate_limit_requests"),
		RateLimitWindow:     v.GetInt("rate_limit_window"),
		AuthRateLimit:       v.GetInt("auth_rate_limit"),
		VerifyRateLimit:     v.GetInt("verify_rate_limit"),
		DisableRateLimiting: v.GetBool("disable_rate_limiting"),

		LoginMaxAttempts:       v.GetInt("login_max_attempts"),
		LoginLockMinutes:       v.GetInt("login_lock_minutes"),
		VerificationCodeTTL:    v.GetInt("verification_code_ttl"),
		RandomPasswordTTL:      v.GetInt("random_password_ttl"),
		MaxVerificationAttempt: v.GetInt("max_verification_attempts"),

		MailProvider:      strings.ToLower(v.GetString("mail_provider")),
		MailFrom:          v.GetString("mail_from"),
		SMTPHost:          v.GetString("smtp_host"),
		SMTPPort:          v.GetInt("smtp_port"),
		SMTPUsername:      v.GetString("smtp_username"),
		SMTPPassword:      v.GetString("smtp_password"),
		SendGridAPIKey:    v.GetString("sendgrid_api_key"),
		GmailClientID:     v.GetString("gmail_client_id"),
		GmailClientSecret: v.GetString("gmail_client_secret"),
		GmailRefreshToken: v.GetString("gmail_refresh_token"),

		WhatsAppAPIURL: v.GetString("whatsapp_api_url"),
		WhatsAppToken:  v.GetString("whatsapp_token"),

		StorageDriver:  strings.ToLower(v.GetString("storage_driver")),
		UploadPath:     v.GetString("upload_path"),
		MaxUploadSize:  v.GetInt64("max_upload_size"),
		S3Endpoint:     v.GetString("s3_endpoint"),
		S3Region:       v.GetString("s3_region"),
		S3Bucket:       v.GetString("s3_bucket"),
		S3AccessKey:    v.GetString("s3_access_key"),
		S3SecretKey:    v.GetString("s3_secret_key"),
		S3UsePathStyle: v.GetBool("s3_use_path_style"),
		S3PublicURL:    strings.TrimRight(v.GetString("s3_public_url"), "/"),

		RollbarToken: v.GetString("rollbar_token"),

		LogLevel: v.GetString("log_level"),

		AllowedOrigins: splitList(v.GetString("allowed_origins")),
	}
}

func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// IsProduction reports whether the service runs with production settings
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("database URL is required")
	}
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if !validEnvironments[c.Environment] {
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}
	if !validStorageDriver[c.StorageDriver] {
		return fmt.Errorf("invalid storage driver: %s", c.StorageDriver)
	}
	if c.StorageDriver == "s3" && c.S3Bucket == "" {
		return fmt.Errorf("S3 bucket is required when storage driver is s3")
	}
	if !validMailProviders[c.MailProvider] {
		return fmt.Errorf("invalid mail provider: %s", c.MailProvider)
	}
	return nil
}

// SetDefaults fills zero values left by a hand-built Config (tests, CLI)
func (c *Config) SetDefaults() {
	if c.JWTSecret == "" {
		c.JWTSecret = "change-me-in-production"
	}
	if c.JWTExpiration <= 0 {
		c.JWTExpiration = 2 * 60 * 60
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = "agroinnova.db"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Port == "" {
		c.Port = "2020"
	}
	if c.StorageDriver == "" {
		c.StorageDriver = "local"
	}
	if c.UploadPath == "" {
		c.UploadPath = "./uploads"
	}
	if c.MaxUploadSize <= 0 {
		c.MaxUploadSize = 50 * 1024 * 1024
	}
	if c.MailProvider == "" {
		c.MailProvider = "log"
	}
	if c.LoginMaxAttempts <= 0 {
		c.LoginMaxAttempts = 5
	}
	if c.LoginLockMinutes <= 0 {
		c.LoginLockMinutes = 3
	}
	if c.VerificationCodeTTL <= 0 {
		c.VerificationCodeTTL = 10
	}
	if c.RandomPasswordTTL <= 0 {
		c.RandomPasswordTTL = 5
	}
	if c.MaxVerificationAttempt <= 0 {
		c.MaxVerificationAttempt = 5
	}
}

// String returns a string representation of the configuration without secrets
func (c *Config) String() string {
	return fmt.Sprintf("Config{Environment: %s, Port: %s, DatabaseURL: %s, Storage: %s, Mail: %s, Redis: %t}",
		c.Environment, c.Port, c.DatabaseURL, c.StorageDriver, c.MailProvider, c.RedisURL != "")
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	clone := *c
	if c.AllowedOrigins != nil {
		clone.AllowedOrigins = make([]string, len(c.AllowedOrigins))
		copy(clone.AllowedOrigins, c.AllowedOrigins)
	}
	return &clone
}
