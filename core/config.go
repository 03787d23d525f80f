package core

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// Default configuration values.
const (
	// DefaultImageAPIURL is the Pollinations text-to-image endpoint.
	// The effective prompt is path-escaped onto this base URL.
	DefaultImageAPIURL = "https://image.pollinations.ai/prompt/"

	// DefaultRequestTimeoutSeconds bounds a single generation request.
	DefaultRequestTimeoutSeconds = 30

	// DefaultPort is the web UI listen port.
	DefaultPort = 8080
)

// Config holds all configuration values for the image studio backend.
// Values are loaded from environment variables (optionally seeded from a
// .env file by main) with sensible defaults for local development.
type Config struct {
	// Web server
	Host string // Bind address (default: "localhost")
	Port int    // Listen port (default: 8080)

	// Image generation endpoint
	ImageAPIURL    string        // Base URL of the GET text-to-image API
	RequestTimeout time.Duration // Bound on one generation HTTP call

	// Optional OpenAI provider (used instead of the GET API when set)
	OpenAIAPIKey     string // API key; empty disables the OpenAI provider
	OpenAIImageModel string // Image model name (default: dall-e-3)

	// Cache
	CacheDir string // Flat directory of <sha256>.png entries

	// Style table
	StylesFile string // Optional YAML override for the style table

	// Persistence (optional; empty DBPath disables sqlite history)
	DBPath         string // SQLite database file path
	MigrationsPath string // golang-migrate source URL (default: file://db/migrations)

	// Logging
	LogFile string // Log file path (default: app.log)
}

// LoadConfig reads configuration from environment variables.
// Missing values fall back to defaults suitable for a local single-user
// deployment; it never fails on absent optional settings.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Host:             GetEnvOrDefault("HOST", "localhost"),
		Port:             ParseIntEnv("PORT", DefaultPort),
		ImageAPIURL:      GetEnvOrDefault("IMAGE_API_URL", DefaultImageAPIURL),
		RequestTimeout:   ParseDurationEnv("REQUEST_TIMEOUT", DefaultRequestTimeoutSeconds),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIImageModel: GetEnvOrDefault("OPENAI_IMAGE_MODEL", "dall-e-3"),
		CacheDir:         GetEnvOrDefault("CACHE_DIR", filepath.Join(os.TempDir(), "genai_cache")),
		StylesFile:       os.Getenv("STYLES_FILE"),
		DBPath:           os.Getenv("DB_PATH"),
		MigrationsPath:   GetEnvOrDefault("MIGRATIONS_PATH", "file://db/migrations"),
		LogFile:          GetEnvOrDefault("LOG_FILE", "app.log"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
// It verifies URL syntax and numeric ranges; reachability of the image
// API is checked separately by the startup validation suite.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d: must be in [1,65535]", c.Port)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("invalid REQUEST_TIMEOUT: must be positive")
	}
	if c.ImageAPIURL == "" {
		return ErrMissingImageAPI()
	}
	parsed, err := url.Parse(c.ImageAPIURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ErrInvalidImageAPIURL(c.ImageAPIURL)
	}
	if c.CacheDir == "" {
		return fmt.Errorf("CACHE_DIR cannot be empty")
	}
	return nil
}

// UseOpenAI reports whether the OpenAI provider should be used instead of
// the default GET endpoint.
func (c *Config) UseOpenAI() bool {
	return c.OpenAIAPIKey != ""
}
