package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"genai_studio/core"
	"genai_studio/imagegen"
)

// TestBuildProviderDefault tests provider selection without an OpenAI key.
func TestBuildProviderDefault(t *testing.T) {
	cfg := &core.Config{
		ImageAPIURL:    core.DefaultImageAPIURL,
		RequestTimeout: 30 * time.Second,
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		t.Fatalf("buildProvider failed: %v", err)
	}
	if provider.Name() != "pollinations" {
		t.Errorf("provider = %q, want pollinations", provider.Name())
	}
}

// TestBuildProviderOpenAI tests provider selection with an OpenAI key set.
func TestBuildProviderOpenAI(t *testing.T) {
	cfg := &core.Config{
		ImageAPIURL:    core.DefaultImageAPIURL,
		RequestTimeout: 30 * time.Second,
		OpenAIAPIKey:   "sk-test",
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		t.Fatalf("buildProvider failed: %v", err)
	}
	if provider.Name() != "openai" {
		t.Errorf("provider = %q, want openai", provider.Name())
	}
}

// TestOpenHistory tests that migrations apply and the repository accepts
// an outcome. Test working directory is the module root, so the default
// migrations source resolves.
func TestOpenHistory(t *testing.T) {
	cfg := &core.Config{
		DBPath:         filepath.Join(t.TempDir(), "history.sqlite"),
		MigrationsPath: "file://db/migrations",
	}

	repo, closeDB, err := openHistory(cfg)
	if err != nil {
		t.Fatalf("openHistory failed: %v", err)
	}
	defer closeDB()

	outcome := imagegen.GenerationOutcome{
		Success:       true,
		Source:        imagegen.SourceNetwork,
		CorrelationID: "corr-main",
		Message:       "generated successfully",
		Timestamp:     time.Now(),
		Request: imagegen.PromptRequest{
			Text: "a cat in space", Style: "cyberpunk", Width: 512, Height: 512,
		},
	}
	if err := repo.SaveOutcome(context.Background(), outcome); err != nil {
		t.Fatalf("SaveOutcome failed: %v", err)
	}

	count, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

// TestServiceStubs tests the non-Windows service stubs.
func TestServiceStubs(t *testing.T) {
	handled := HandleServiceCommand([]string{"genai_studio", "install"})
	if handled {
		t.Error("service command handled on non-Windows platform")
	}

	ranAsService, err := RunAsService()
	if err != nil {
		t.Errorf("RunAsService returned error: %v", err)
	}
	if ranAsService {
		t.Error("RunAsService reported service mode on non-Windows platform")
	}
}
