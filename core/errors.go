package core

import (
	"fmt"
)

// ConfigError represents a configuration-related error with actionable instructions.
type ConfigError struct {
	Code    string // Error code for programmatic handling
	Message string // Human-readable error message
	Action  string // Actionable instruction for resolution
}

func (e *ConfigError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s. %s", e.Message, e.Action)
	}
	return e.Message
}

// Error codes for configuration errors
const (
	ErrCodeMissingImageAPI = "MISSING_IMAGE_API"
	ErrCodeInvalidImageAPI = "INVALID_IMAGE_API_URL"
	ErrCodeCacheDirUnusable = "CACHE_DIR_UNUSABLE"
	ErrCodeDatabaseUnusable = "DATABASE_UNUSABLE"
)

// ErrMissingImageAPI returns an error for a missing image API base URL.
func ErrMissingImageAPI() *ConfigError {
	return &ConfigError{
		Code:    ErrCodeMissingImageAPI,
		Message: "No image generation endpoint configured",
		Action:  "Set IMAGE_API_URL in your .env file (default: " + DefaultImageAPIURL + ")",
	}
}

// ErrInvalidImageAPIURL returns an error for a malformed image API URL.
func ErrInvalidImageAPIURL(url string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidImageAPI,
		Message: fmt.Sprintf("Invalid IMAGE_API_URL '%s'", url),
		Action:  "Set IMAGE_API_URL to a full URL including scheme (e.g., https://image.pollinations.ai/prompt/)",
	}
}

// ErrCacheDirUnusable returns an error when the cache directory cannot be
// created or written to.
func ErrCacheDirUnusable(dir string, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeCacheDirUnusable,
		Message: fmt.Sprintf("Cache directory %s is not usable: %s", dir, reason),
		Action:  "Set CACHE_DIR to a writable directory",
	}
}

// ErrDatabaseUnusable returns an error when the configured database path
// cannot be opened.
func ErrDatabaseUnusable(path string, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeDatabaseUnusable,
		Message: fmt.Sprintf("Database %s is not usable: %s", path, reason),
		Action:  "Set DB_PATH to a writable file path, or unset it to disable history persistence",
	}
}
