// Package config loads the broker's environment configuration and validates
// it eagerly, failing at startup rather than on first use.
package config

import (
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/cybergallery/upload-broker/pkg/uploadbroker"
)

// Config is the broker's full configuration surface.
type Config struct {
	Port string `env:"PORT" env-default:"8080"`

	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES" env-default:"1073741824"`
	PresignExpires int   `env:"PRESIGN_EXPIRES" env-default:"900"`

	PublicBaseURL string `env:"PUBLIC_R2_BASE_URL"`

	R2AccountID       string `env:"R2_ACCOUNT_ID"`
	R2AccessKeyID     string `env:"R2_ACCESS_KEY_ID"`
	R2SecretAccessKey string `env:"R2_SECRET_ACCESS_KEY"`
	R2Bucket          string `env:"R2_BUCKET_NAME" env-default:"cyber-gallery-uploads"`

	SpreadsheetID string `env:"SPREADSHEET_ID"`
	SheetName     string `env:"SHEET_NAME" env-default:"Sheet1"`

	ServiceAccountEmail string `env:"GOOGLE_SERVICE_ACCOUNT_EMAIL"`
	ServiceAccountKey   string `env:"GOOGLE_PRIVATE_KEY"`

	CORSOrigin string `env:"CORS_ORIGIN" env-default:"*"`
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate fails fast on configuration no request can proceed without.
// SPREADSHEET_ID is deliberately exempt: the upload path stays usable while
// the ledger is unconfigured, and the missing ID is reported per completion
// request instead.
func (c *Config) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"R2_ACCOUNT_ID", c.R2AccountID},
		{"R2_ACCESS_KEY_ID", c.R2AccessKeyID},
		{"R2_SECRET_ACCESS_KEY", c.R2SecretAccessKey},
		{"GOOGLE_SERVICE_ACCOUNT_EMAIL", c.ServiceAccountEmail},
		{"GOOGLE_PRIVATE_KEY", c.ServiceAccountKey},
	}
	for _, item := range required {
		if item.value == "" {
			return &uploadbroker.ConfigError{Key: item.key}
		}
	}
	return nil
}

// PresignExpiry returns the presign window as a duration.
func (c *Config) PresignExpiry() time.Duration {
	return time.Duration(c.PresignExpires) * time.Second
}

// AllowedOrigins splits the configured origin list.
func (c *Config) AllowedOrigins() []string {
	parts := strings.Split(c.CORSOrigin, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
