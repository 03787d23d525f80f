// Package imagegen implements validation-gated image generation.
//
// pollinations.go implements the default Provider: a Pollinations-style
// HTTP GET endpoint with the effective prompt URL-encoded into the path
// and the dimensions as query parameters. The response body is the raw
// image on success.
package imagegen

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// PollinationsProvider generates images via a simple GET API.
//
// Thread Safety: safe for concurrent use; each call builds its own
// request on a shared http.Client.
type PollinationsProvider struct {
	client  *http.Client
	baseURL string
}

// PollinationsConfig holds configuration for the GET provider.
type PollinationsConfig struct {
	// BaseURL is the endpoint the prompt is appended to
	// (default: https://image.pollinations.ai/prompt/)
	BaseURL string

	// Timeout bounds one generation call (default: 30s). The per-call
	// context may impose a tighter bound.
	Timeout time.Duration

	// HTTPClient overrides the default client (optional, for tests)
	HTTPClient *http.Client
}

// NewPollinationsProvider creates the GET provider.
func NewPollinationsProvider(cfg PollinationsConfig) (*PollinationsProvider, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("imagegen: pollinations base URL cannot be empty")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("imagegen: invalid pollinations base URL: %w", err)
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	return &PollinationsProvider{
		client:  client,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/") + "/",
	}, nil
}

// Name implements Provider.
func (p *PollinationsProvider) Name() string { return "pollinations" }

// RequestURL builds the full generation URL for an effective prompt and
// dimensions. Exposed for tests and request logging.
func (p *PollinationsProvider) RequestURL(effectivePrompt string, width, height int) string {
	params := url.Values{}
	params.Set("width", strconv.Itoa(width))
	params.Set("height", strconv.Itoa(height))
	params.Set("enhance", "true")
	return p.baseURL + url.PathEscape(effectivePrompt) + "?" + params.Encode()
}

// Generate implements Provider. It performs exactly one HTTP GET; any
// non-200 status or read failure is an error for the orchestrator to
// classify.
func (p *PollinationsProvider) Generate(ctx context.Context, effectivePrompt string, width, height int) ([]byte, error) {
	if effectivePrompt == "" {
		return nil, fmt.Errorf("imagegen: effective prompt cannot be empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.RequestURL(effectivePrompt, width, height), nil)
	if err != nil {
		return nil, fmt.Errorf("imagegen: failed to create generation request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("imagegen: generation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("imagegen: generation failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("imagegen: failed to read generated image: %w", err)
	}
	return data, nil
}
