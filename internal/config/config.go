package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	StorageBackendS3       = "s3"
	StorageBackendPostgres = "postgres"
	StorageBackendMemory   = "memory"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	StorageBackend   string        `envconfig:"STORAGE_BACKEND" default:"s3"`
	StorageKeyPrefix string        `envconfig:"STORAGE_KEY_PREFIX" default:""`
	StorageTimeout   time.Duration `envconfig:"STORAGE_TIMEOUT" default:"10s"`

	S3BucketName   string `envconfig:"S3_BUCKET_NAME" default:""`
	AWSRegion      string `envconfig:"AWS_REGION" default:"eu-west-2"`
	S3EndpointURL  string `envconfig:"S3_ENDPOINT_URL" default:""`
	S3UsePathStyle bool   `envconfig:"S3_USE_PATH_STYLE" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" default:""`
	DBMinConns  int32  `envconfig:"DB_MIN_CONNS" default:"1"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"8"`

	TranslationProvider   string        `envconfig:"TRANSLATION_PROVIDER" default:"google"`
	TranslationTimeout    time.Duration `envconfig:"TRANSLATION_TIMEOUT" default:"15s"`
	TranslationEndpoint   string        `envconfig:"TRANSLATION_ENDPOINT" default:""`
	TranslationModel      string        `envconfig:"TRANSLATION_MODEL" default:""`
	TranslationAPIKey     string        `envconfig:"TRANSLATION_API_KEY" default:""`
	GoogleAPIKey          string        `envconfig:"GOOGLE_TRANSLATE_API_KEY" default:""`
	GoogleCredentialsFile string        `envconfig:"GOOGLE_APPLICATION_CREDENTIALS" default:""`
	MyMemoryEmail         string        `envconfig:"MYMEMORY_EMAIL" default:""`

	SupportedLanguages string `envconfig:"SUPPORTED_LANGUAGES" default:""`
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:""`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(cfg.StorageBackend))
	cfg.TranslationProvider = strings.ToLower(strings.TrimSpace(cfg.TranslationProvider))
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.StorageBackend {
	case StorageBackendS3:
		if strings.TrimSpace(c.S3BucketName) == "" {
			return fmt.Errorf("S3_BUCKET_NAME is required when STORAGE_BACKEND=s3")
		}
		if strings.TrimSpace(c.AWSRegion) == "" {
			return fmt.Errorf("AWS_REGION is required when STORAGE_BACKEND=s3")
		}
	case StorageBackendPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required when STORAGE_BACKEND=postgres")
		}
		if c.DBMinConns < 0 {
			return fmt.Errorf("DB_MIN_CONNS must be >= 0")
		}
		if c.DBMaxConns < 1 {
			return fmt.Errorf("DB_MAX_CONNS must be >= 1")
		}
		if c.DBMinConns > c.DBMaxConns {
			return fmt.Errorf("DB_MIN_CONNS (%d) cannot exceed DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
		}
	case StorageBackendMemory:
	default:
		return fmt.Errorf("STORAGE_BACKEND must be one of s3, postgres, memory (got %q)", c.StorageBackend)
	}

	if c.StorageTimeout <= 0 {
		return fmt.Errorf("STORAGE_TIMEOUT must be > 0")
	}
	if c.TranslationTimeout <= 0 {
		return fmt.Errorf("TRANSLATION_TIMEOUT must be > 0")
	}
	if strings.TrimSpace(c.TranslationProvider) == "" {
		return fmt.Errorf("TRANSLATION_PROVIDER is required")
	}
	return nil
}

// SupportedLanguageList returns the SUPPORTED_LANGUAGES override, lower-cased and deduplicated.
func (c *Config) SupportedLanguageList() []string {
	if c == nil {
		return nil
	}
	return splitList(c.SupportedLanguages, strings.ToLower)
}

func (c *Config) CORSAllowedOriginsList() []string {
	if c == nil {
		return nil
	}
	return splitList(c.CORSAllowedOrigins, nil)
}

func splitList(raw string, transform func(string) string) []string {
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		value := strings.TrimSpace(part)
		if transform != nil {
			value = transform(value)
		}
		if value == "" {
			continue
		}
		if _, exists := seen[value]; exists {
			continue
		}
		seen[value] = struct{}{}
		values = append(values, value)
	}
	return values
}
