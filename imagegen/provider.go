// Package imagegen implements validation-gated image generation.
//
// provider.go defines the Provider interface implemented by each
// generation backend (Pollinations GET API, OpenAI DALL-E).
package imagegen

import "context"

// Provider is the interface for image generation backends. Each backend
// takes the composed effective prompt plus output dimensions and returns
// the raw image bytes.
//
// The context bounds the call; implementations must honor cancellation
// and deadline so the orchestrator can classify timeouts.
type Provider interface {
	// Generate creates an image for the effective prompt at the given
	// dimensions and returns its raw bytes.
	Generate(ctx context.Context, effectivePrompt string, width, height int) ([]byte, error)

	// Name identifies the backend for logging and outcome provenance.
	Name() string
}
