// Package imagegen implements validation-gated image generation.
//
// openai_provider.go implements the optional OpenAI DALL-E Provider.
// The API returns a temporary URL; the Downloader molecule fetches the
// bytes before they expire.
package imagegen

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Provider for the OpenAI image API.
//
// Thread Safety: safe for concurrent use; the underlying client handles
// connection pooling.
type OpenAIProvider struct {
	client     *openai.Client
	downloader *Downloader
	model      string
}

// OpenAIProviderConfig holds configuration for the OpenAI provider.
type OpenAIProviderConfig struct {
	// APIKey is the OpenAI API key (required)
	APIKey string

	// Model is the image model to use (default: dall-e-3)
	Model string
}

// NewOpenAIProvider creates the DALL-E provider.
func NewOpenAIProvider(cfg OpenAIProviderConfig, downloader *Downloader) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("imagegen: OpenAI API key is required")
	}
	if downloader == nil {
		return nil, fmt.Errorf("imagegen: downloader cannot be nil")
	}

	model := cfg.Model
	if model == "" {
		model = "dall-e-3"
	}

	return &OpenAIProvider{
		client:     openai.NewClient(cfg.APIKey),
		downloader: downloader,
		model:      model,
	}, nil
}

// Name implements Provider.
func (p *OpenAIProvider) Name() string { return "openai" }

// Generate implements Provider. The requested dimensions are snapped to
// the nearest size the image API supports; the demo's [256,1024] range
// maps onto the DALL-E size grid.
func (p *OpenAIProvider) Generate(ctx context.Context, effectivePrompt string, width, height int) ([]byte, error) {
	if effectivePrompt == "" {
		return nil, fmt.Errorf("imagegen: effective prompt cannot be empty")
	}

	resp, err := p.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         effectivePrompt,
		Model:          p.model,
		N:              1,
		Size:           snapImageSize(width, height),
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return nil, fmt.Errorf("imagegen: OpenAI image request failed: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return nil, fmt.Errorf("imagegen: OpenAI response contained no image URL")
	}

	data, _, err := p.downloader.DownloadBytes(ctx, resp.Data[0].URL)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// snapImageSize maps arbitrary in-range dimensions to a supported API
// size string. The larger edge decides the tier.
func snapImageSize(width, height int) string {
	edge := width
	if height > edge {
		edge = height
	}
	switch {
	case edge <= 256:
		return openai.CreateImageSize256x256
	case edge <= 512:
		return openai.CreateImageSize512x512
	default:
		return openai.CreateImageSize1024x1024
	}
}
