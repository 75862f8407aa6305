package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Server configuration
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxWorkers   int
	LogLevel     string
	APIKey       string // optional static gate for all /v1 routes

	// Database configuration
	DatabaseURL string

	// Object storage configuration
	StorageBackend  string // "s3" or "local"
	S3Endpoint      string
	S3AccessKeyID   string
	S3SecretKey     string
	S3Bucket        string
	S3Region        string
	LocalStorageDir string
	SignedURLTTL    time.Duration

	// OCR configuration
	OCRLanguages []string

	// Semantic extraction configuration
	ExtractAPIURL  string
	ExtractAPIKey  string
	ExtractModelID string
	ExtractTimeout time.Duration
}

// MisconfiguredError reports the environment keys that must be set before
// the service can start.
type MisconfiguredError struct {
	Missing []string
}

func (e *MisconfiguredError) Error() string {
	return "missing required configuration: " + strings.Join(e.Missing, ", ")
}

// Load reads configuration from the environment, loading a .env file first
// if one exists.
func Load() (*Config, error) {
	// .env is optional; plain environment variables win in Docker/K8s.
	for _, envFile := range []string{".env", "../.env"} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	cfg := &Config{
		Port:         getEnvInt("PORT", 8080),
		ReadTimeout:  time.Duration(getEnvInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvInt("WRITE_TIMEOUT", 60)) * time.Second,
		MaxWorkers:   getEnvInt("MAX_WORKERS", 5),
		LogLevel:     getEnvString("LOG_LEVEL", "info"),
		APIKey:       os.Getenv("API_KEY"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		StorageBackend:  getEnvString("STORAGE_BACKEND", "s3"),
		S3Endpoint:      os.Getenv("S3_ENDPOINT"),
		S3AccessKeyID:   os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretKey:     os.Getenv("S3_SECRET_ACCESS_KEY"),
		S3Bucket:        getEnvString("S3_BUCKET", "receipts"),
		S3Region:        getEnvString("S3_REGION", "eu-west-1"),
		LocalStorageDir: getEnvString("LOCAL_STORAGE_DIR", "data/images"),
		SignedURLTTL:    time.Duration(getEnvInt("SIGNED_URL_TTL", 86400)) * time.Second,

		OCRLanguages: getEnvStringSlice("OCR_LANGUAGES", []string{"fra", "eng"}),

		ExtractAPIURL:  getEnvString("EXTRACT_API_URL", "https://api.openai.com/v1/chat/completions"),
		ExtractAPIKey:  os.Getenv("EXTRACT_API_KEY"),
		ExtractModelID: getEnvString("EXTRACT_MODEL_ID", "gpt-4o-mini"),
		ExtractTimeout: time.Duration(getEnvInt("EXTRACT_TIMEOUT", 60)) * time.Second,
	}

	return cfg, nil
}

// Validate returns a MisconfiguredError when the service cannot run with the
// current environment. A missing extraction key is deliberately not fatal:
// the scan pipeline degrades to empty parsed fields without it.
func (c *Config) Validate() error {
	var missing []string

	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	switch c.StorageBackend {
	case "s3":
		if c.S3Endpoint == "" {
			missing = append(missing, "S3_ENDPOINT")
		}
		if c.S3AccessKeyID == "" {
			missing = append(missing, "S3_ACCESS_KEY_ID")
		}
		if c.S3SecretKey == "" {
			missing = append(missing, "S3_SECRET_ACCESS_KEY")
		}
	case "local":
		// nothing required beyond the directory default
	default:
		return fmt.Errorf("invalid STORAGE_BACKEND %q: must be \"s3\" or \"local\"", c.StorageBackend)
	}

	if len(missing) > 0 {
		return &MisconfiguredError{Missing: missing}
	}
	return nil
}

// getEnvInt gets an integer from an environment variable with a default value.
func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvString gets a string from an environment variable with a default value.
func getEnvString(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvStringSlice gets a string slice from a comma-separated environment variable.
func getEnvStringSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
