// Package imagegen implements validation-gated image generation: prompt
// validation, effective-prompt composition, swappable generation
// providers, and the orchestrator that ties them to the local cache.
//
// types.go contains pure data types with no behavior.
package imagegen

import "time"

// PromptRequest is one user request for an image.
type PromptRequest struct {
	// Text is the user's base prompt
	Text string `json:"text"`

	// NegativeText lists elements to exclude (optional)
	NegativeText string `json:"negative_text,omitempty"`

	// Style selects an entry from the style table
	Style string `json:"style"`

	// Width in pixels, must be within [256,1024]
	Width int `json:"width"`

	// Height in pixels, must be within [256,1024]
	Height int `json:"height"`
}

// ValidationResult is the accept/reject decision for one request.
// Produced fresh per request and never mutated.
type ValidationResult struct {
	// Accepted is true when the request may proceed to generation
	Accepted bool `json:"accepted"`

	// Reason explains a rejection (present iff rejected)
	Reason string `json:"reason,omitempty"`

	// Warning carries a non-fatal advisory for accepted requests,
	// e.g. large dimensions that will generate slowly
	Warning string `json:"warning,omitempty"`
}

// Source identifies where a successful image came from.
type Source string

const (
	// SourceCache means the image was served from the local cache
	SourceCache Source = "cache"

	// SourceNetwork means the image was generated by the external API
	SourceNetwork Source = "network"

	// SourceNone is used on failed outcomes
	SourceNone Source = ""
)

// ErrorKind classifies a failed generation attempt.
type ErrorKind string

const (
	// KindNone marks a successful outcome
	KindNone ErrorKind = ""

	// KindInvalidInput means validation rejected the request locally;
	// neither the cache nor the network was touched
	KindInvalidInput ErrorKind = "invalid_input"

	// KindTimeout means the network call exceeded its bound
	KindTimeout ErrorKind = "timeout"

	// KindNetwork covers connection failures, non-2xx statuses, and
	// malformed image bodies
	KindNetwork ErrorKind = "network_error"

	// KindStorage means a cache write failed; the generated image is
	// still returned, the cache just degrades to a miss next time
	KindStorage ErrorKind = "storage_error"
)

// GenerationOutcome is the structured result of one generation attempt.
// It is appended (by value) into history by the metrics recorder.
type GenerationOutcome struct {
	// Success is true when an image is available
	Success bool `json:"success"`

	// Source is cache or network on success, empty on failure
	Source Source `json:"source"`

	// ElapsedMS is the wall-clock duration of the network call in
	// milliseconds; approximately zero for cache hits and rejections
	ElapsedMS int64 `json:"elapsed_ms"`

	// CacheKey is the derived content hash (empty on validation rejection)
	CacheKey string `json:"cache_key,omitempty"`

	// Image holds the PNG-compatible payload (present iff success).
	// Omitted from JSON; the web layer serves it by cache key instead.
	Image []byte `json:"-"`

	// ErrorKind classifies the failure. KindStorage is the one kind
	// that can accompany a success: the image was generated but the
	// cache write failed.
	ErrorKind ErrorKind `json:"error_kind,omitempty"`

	// Message is the user-visible result description
	Message string `json:"message"`

	// Warning carries a non-fatal advisory from validation or storage
	Warning string `json:"warning,omitempty"`

	// Request echoes the originating request for history display
	Request PromptRequest `json:"request"`

	// CorrelationID ties the outcome to log entries
	CorrelationID string `json:"correlation_id"`

	// Timestamp is when the attempt completed
	Timestamp time.Time `json:"timestamp"`
}
