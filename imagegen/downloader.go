// Package imagegen implements validation-gated image generation.
//
// downloader.go implements the Downloader molecule used by providers
// whose APIs return a temporary image URL rather than the image itself.
package imagegen

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Downloader fetches image bytes from temporary provider URLs.
// URLs from OpenAI expire after about an hour, so the bytes are fetched
// immediately and handed to the cache.
//
// Thread Safety: safe for concurrent use; each download creates its own
// HTTP request.
type Downloader struct {
	client *http.Client
}

// NewDownloader creates a Downloader. A nil client gets a default with a
// 60 second timeout.
func NewDownloader(client *http.Client) *Downloader {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &Downloader{client: client}
}

// DownloadBytes fetches an image and returns its raw bytes along with
// the Content-Type header value.
func (d *Downloader) DownloadBytes(ctx context.Context, url string) ([]byte, string, error) {
	if url == "" {
		return nil, "", fmt.Errorf("imagegen: download URL cannot be empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("imagegen: failed to create download request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("imagegen: failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("imagegen: download failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("imagegen: failed to read image data: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}
