package imagegen

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestNewPollinationsProviderRequiresBaseURL(t *testing.T) {
	if _, err := NewPollinationsProvider(PollinationsConfig{}); err == nil {
		t.Error("expected error for empty base URL")
	}
}

func TestRequestURL(t *testing.T) {
	provider, err := NewPollinationsProvider(PollinationsConfig{
		BaseURL: "https://image.pollinations.ai/prompt/",
	})
	if err != nil {
		t.Fatalf("NewPollinationsProvider failed: %v", err)
	}

	raw := provider.RequestURL("a cat in space, cyberpunk aesthetic", 512, 768)
	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("generated URL does not parse: %v", err)
	}

	if !strings.HasPrefix(parsed.Path, "/prompt/") {
		t.Errorf("prompt not on the base path: %s", parsed.Path)
	}
	// The prompt must be escaped into a single path segment.
	if strings.Count(strings.TrimPrefix(parsed.Path, "/prompt/"), "/") != 0 {
		t.Errorf("prompt spilled into extra path segments: %s", parsed.Path)
	}

	query := parsed.Query()
	if query.Get("width") != "512" || query.Get("height") != "768" {
		t.Errorf("dimensions not encoded: %s", parsed.RawQuery)
	}
	if query.Get("enhance") != "true" {
		t.Errorf("enhance flag missing: %s", parsed.RawQuery)
	}
}

func TestPollinationsGenerate(t *testing.T) {
	payload := encodeTestImage(t, "png", 4, 4)

	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "image/png")
		w.Write(payload)
	}))
	defer server.Close()

	provider, err := NewPollinationsProvider(PollinationsConfig{BaseURL: server.URL + "/prompt/"})
	if err != nil {
		t.Fatalf("NewPollinationsProvider failed: %v", err)
	}

	data, err := provider.Generate(context.Background(), "a cat in space", 512, 512)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(data) != len(payload) {
		t.Errorf("payload length = %d, want %d", len(data), len(payload))
	}
	if !strings.Contains(gotPath, "a%20cat%20in%20space") && !strings.Contains(gotPath, "a cat in space") {
		t.Errorf("prompt not present in request path: %s", gotPath)
	}
}

func TestPollinationsGenerateNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	provider, err := NewPollinationsProvider(PollinationsConfig{BaseURL: server.URL + "/prompt/"})
	if err != nil {
		t.Fatalf("NewPollinationsProvider failed: %v", err)
	}

	if _, err := provider.Generate(context.Background(), "a cat in space", 512, 512); err == nil {
		t.Error("expected error for 503 response")
	}
}

func TestPollinationsGenerateHonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	provider, err := NewPollinationsProvider(PollinationsConfig{BaseURL: server.URL + "/prompt/"})
	if err != nil {
		t.Fatalf("NewPollinationsProvider failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = provider.Generate(ctx, "a cat in space", 512, 512)
	if err == nil {
		t.Fatal("expected error from expired context")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Generate did not honor context deadline, took %v", elapsed)
	}
	if !isTimeout(err) {
		t.Errorf("deadline error not classified as timeout: %v", err)
	}
}

func TestPollinationsGenerateRejectsEmptyPrompt(t *testing.T) {
	provider, err := NewPollinationsProvider(PollinationsConfig{
		BaseURL: "https://image.pollinations.ai/prompt/",
	})
	if err != nil {
		t.Fatalf("NewPollinationsProvider failed: %v", err)
	}
	if _, err := provider.Generate(context.Background(), "", 512, 512); err == nil {
		t.Error("expected error for empty effective prompt")
	}
}
