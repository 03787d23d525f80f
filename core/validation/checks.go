// Package validation provides startup validation for the image studio
// backend: configuration sanity, cache directory access, and database
// path access, with colored console reporting.
package validation

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"genai_studio/core"
)

// CheckResult holds the outcome of a single startup check.
type CheckResult struct {
	Name    string
	Status  StepStatus
	Message string
	Err     error
}

// CheckConfig validates the loaded configuration values.
// This is a pure check: it re-runs Config.Validate and reports the result.
func CheckConfig(cfg *core.Config) CheckResult {
	res := CheckResult{Name: "Configuration"}
	if err := cfg.Validate(); err != nil {
		res.Status = StepFailed
		res.Err = err
		return res
	}
	res.Status = StepPassed
	res.Message = fmt.Sprintf("endpoint %s, timeout %s", cfg.ImageAPIURL, cfg.RequestTimeout)
	return res
}

// CheckImageAPIURL verifies the image API base URL is a well-formed
// absolute http(s) URL. Reachability is deliberately not probed at
// startup; the orchestrator reports network failures per request.
func CheckImageAPIURL(rawURL string) CheckResult {
	res := CheckResult{Name: "Image API endpoint"}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		res.Status = StepFailed
		res.Err = core.ErrInvalidImageAPIURL(rawURL)
		return res
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		res.Status = StepFailed
		res.Err = core.ErrInvalidImageAPIURL(rawURL)
		return res
	}
	res.Status = StepPassed
	res.Message = parsed.Host
	return res
}

// CheckCacheDir verifies the cache directory exists (creating it if
// needed) and is writable by staging and removing a probe file.
func CheckCacheDir(dir string) CheckResult {
	res := CheckResult{Name: "Cache directory"}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		res.Status = StepFailed
		res.Err = core.ErrCacheDirUnusable(dir, err.Error())
		return res
	}
	probe, err := os.CreateTemp(dir, "probe-*")
	if err != nil {
		res.Status = StepFailed
		res.Err = core.ErrCacheDirUnusable(dir, err.Error())
		return res
	}
	probe.Close()
	os.Remove(probe.Name())
	res.Status = StepPassed
	res.Message = dir
	return res
}

// CheckDatabasePath verifies the parent directory of the configured
// database file is writable. An empty path is a skip, not a failure:
// history persistence is optional.
func CheckDatabasePath(path string) CheckResult {
	res := CheckResult{Name: "Database path"}
	if path == "" {
		res.Status = StepSkipped
		res.Message = "DB_PATH not set, history persistence disabled"
		return res
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		res.Status = StepFailed
		res.Err = core.ErrDatabaseUnusable(path, err.Error())
		return res
	}
	res.Status = StepPassed
	res.Message = path
	return res
}

// CheckStylesFile verifies the optional style override file is readable.
// An empty path means the built-in style table is used.
func CheckStylesFile(path string) CheckResult {
	res := CheckResult{Name: "Style table"}
	if path == "" {
		res.Status = StepSkipped
		res.Message = "built-in styles"
		return res
	}
	if _, err := os.Stat(path); err != nil {
		res.Status = StepFailed
		res.Err = fmt.Errorf("styles file %s not readable: %w", path, err)
		return res
	}
	res.Status = StepPassed
	res.Message = path
	return res
}
