// Package webui provides the web-based user interface for GenAI Studio.
// This file contains the StudioAPI organism with the REST handlers that
// back the generation form and the analytics panel.
package webui

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"genai_studio/db"
	"genai_studio/imagecache"
	"genai_studio/imagegen"
	"genai_studio/logging"
	"genai_studio/metrics"
)

// StudioAPI is an organism that provides the REST handlers for the
// studio frontend. It composes the Generator for the generation
// pipeline, the Recorder for analytics, the cache Store for serving
// images by key, and the RotatingTips molecule.
//
// Endpoints:
// - POST /api/generate       - Run one generation attempt
// - POST /api/generate/batch - Run up to BatchLimit attempts sequentially
// - GET  /api/metrics        - Counter snapshot with derived rates
// - GET  /api/history        - Recent outcomes (with limit param)
// - GET  /api/history/export - Download history and images as a zip
// - GET  /api/styles         - Available style names
// - GET  /api/templates      - Prompt templates with their placeholders
// - GET  /api/tip            - Current rotating tip
// - GET  /api/facts          - Random fun facts
// - POST /api/cache/clear    - Remove every cached image
// - POST /api/metrics/reset  - Zero the counters
// - GET  /images/{key}.png   - Serve a cached image by key
type StudioAPI struct {
	generator    *imagegen.Generator
	recorder     *metrics.Recorder
	cache        *imagecache.Store
	archive      HistoryArchive
	tips         *RotatingTips
	templates    imagegen.TemplateTable
	logger       *logging.Logger
	defaultLimit int
	maxLimit     int
}

// HistoryArchive reads durable generation records. Implemented by the
// sqlite repository; optional, may be nil when persistence is disabled.
type HistoryArchive interface {
	Recent(ctx context.Context, limit int) ([]db.GenerationRecord, error)
	Count(ctx context.Context) (int64, error)
}

// StudioAPIConfig configures the StudioAPI behavior.
type StudioAPIConfig struct {
	// DefaultLimit is the default number of history entries returned
	DefaultLimit int

	// MaxLimit caps the limit query parameter
	MaxLimit int

	// Templates is the prompt template table (default: built-in table)
	Templates imagegen.TemplateTable
}

// NewStudioAPI creates the API organism. The archive may be nil when
// durable history is disabled.
func NewStudioAPI(
	generator *imagegen.Generator,
	recorder *metrics.Recorder,
	cache *imagecache.Store,
	archive HistoryArchive,
	tips *RotatingTips,
	logger *logging.Logger,
	cfg StudioAPIConfig,
) *StudioAPI {
	if logger == nil {
		logger = logging.NewNop()
	}
	if tips == nil {
		tips = NewRotatingTips(TipsConfig{})
	}
	if cfg.DefaultLimit < 1 {
		cfg.DefaultLimit = 20
	}
	if cfg.MaxLimit < 1 {
		cfg.MaxLimit = 100
	}
	if cfg.Templates == nil {
		cfg.Templates = imagegen.DefaultTemplateTable()
	}

	return &StudioAPI{
		generator:    generator,
		recorder:     recorder,
		cache:        cache,
		archive:      archive,
		tips:         tips,
		templates:    cfg.Templates,
		logger:       logger.Named("api"),
		defaultLimit: cfg.DefaultLimit,
		maxLimit:     cfg.MaxLimit,
	}
}

// RegisterRoutes registers all API routes on the given ServeMux.
func (api *StudioAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/generate", api.HandleGenerate)
	mux.HandleFunc("/api/generate/batch", api.HandleGenerateBatch)
	mux.HandleFunc("/api/metrics", api.HandleMetrics)
	mux.HandleFunc("/api/history", api.HandleHistory)
	mux.HandleFunc("/api/history/export", api.HandleHistoryExport)
	mux.HandleFunc("/api/styles", api.HandleStyles)
	mux.HandleFunc("/api/templates", api.HandleTemplates)
	mux.HandleFunc("/api/tip", api.HandleTip)
	mux.HandleFunc("/api/facts", api.HandleFacts)
	mux.HandleFunc("/api/cache/clear", api.HandleCacheClear)
	mux.HandleFunc("/api/metrics/reset", api.HandleMetricsReset)
	mux.HandleFunc("/images/", api.HandleImage)
}

// GenerateRequest is the JSON body for POST /api/generate.
type GenerateRequest struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt,omitempty"`
	Style          string `json:"style,omitempty"`
	Width          int    `json:"width,omitempty"`
	Height         int    `json:"height,omitempty"`
}

// GenerateResponse is the JSON response for POST /api/generate.
type GenerateResponse struct {
	Success       bool   `json:"success"`
	Source        string `json:"source,omitempty"`
	Message       string `json:"message"`
	Warning       string `json:"warning,omitempty"`
	ErrorKind     string `json:"error_kind,omitempty"`
	CacheKey      string `json:"cache_key,omitempty"`
	ImageURL      string `json:"image_url,omitempty"`
	ImageBase64   string `json:"image_base64,omitempty"`
	ElapsedMS     int64  `json:"elapsed_ms"`
	CorrelationID string `json:"correlation_id"`
}

// HandleGenerate handles POST /api/generate requests. The body carries
// the prompt form; dimensions default to 512x512 when omitted.
func (api *StudioAPI) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	response := api.runGenerate(r.Context(), body)

	status := http.StatusOK
	if !response.Success {
		switch response.ErrorKind {
		case string(imagegen.KindInvalidInput):
			status = http.StatusUnprocessableEntity
		case string(imagegen.KindTimeout):
			status = http.StatusGatewayTimeout
		default:
			status = http.StatusBadGateway
		}
	}
	api.writeJSON(w, status, response)
}

// runGenerate applies request defaults, runs one generation attempt, and
// shapes the outcome into a wire response. Shared by the single and
// batch handlers.
func (api *StudioAPI) runGenerate(ctx context.Context, body GenerateRequest) GenerateResponse {
	if body.Width == 0 {
		body.Width = 512
	}
	if body.Height == 0 {
		body.Height = 512
	}
	if body.Style == "" {
		body.Style = imagegen.DefaultStyle
	}

	outcome := api.generator.Generate(ctx, imagegen.PromptRequest{
		Text:         body.Prompt,
		NegativeText: body.NegativePrompt,
		Style:        body.Style,
		Width:        body.Width,
		Height:       body.Height,
	})

	response := GenerateResponse{
		Success:       outcome.Success,
		Source:        string(outcome.Source),
		Message:       outcome.Message,
		Warning:       outcome.Warning,
		ErrorKind:     string(outcome.ErrorKind),
		CacheKey:      outcome.CacheKey,
		ElapsedMS:     outcome.ElapsedMS,
		CorrelationID: outcome.CorrelationID,
	}

	if outcome.Success {
		key := imagecache.Key(outcome.CacheKey)
		if api.cache != nil && api.cache.Contains(key) {
			response.ImageURL = "/images/" + outcome.CacheKey + ".png"
		} else if len(outcome.Image) > 0 {
			// Cache write failed; inline the payload so the result is
			// still displayable.
			response.ImageBase64 = base64.StdEncoding.EncodeToString(outcome.Image)
		}
	}
	return response
}

// BatchLimit caps the number of prompts one batch request may carry.
const BatchLimit = 5

// BatchGenerateRequest is the JSON body for POST /api/generate/batch.
// Every prompt shares the same style, negative prompt, and dimensions.
type BatchGenerateRequest struct {
	Prompts        []string `json:"prompts"`
	NegativePrompt string   `json:"negative_prompt,omitempty"`
	Style          string   `json:"style,omitempty"`
	Width          int      `json:"width,omitempty"`
	Height         int      `json:"height,omitempty"`
}

// BatchGenerateResponse is the JSON response for POST /api/generate/batch.
type BatchGenerateResponse struct {
	Results   []GenerateResponse `json:"results"`
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
}

// HandleGenerateBatch handles POST /api/generate/batch requests. Prompts
// run one at a time, keeping the single-writer model; each result stands
// alone, so one bad prompt never fails the batch.
func (api *StudioAPI) HandleGenerateBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body BatchGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	prompts := make([]string, 0, len(body.Prompts))
	for _, p := range body.Prompts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			prompts = append(prompts, trimmed)
		}
	}
	if len(prompts) == 0 {
		api.writeError(w, http.StatusBadRequest, "no prompts provided")
		return
	}
	if len(prompts) > BatchLimit {
		api.writeError(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("too many prompts (max %d)", BatchLimit))
		return
	}

	response := BatchGenerateResponse{Results: make([]GenerateResponse, 0, len(prompts))}
	for _, prompt := range prompts {
		result := api.runGenerate(r.Context(), GenerateRequest{
			Prompt:         prompt,
			NegativePrompt: body.NegativePrompt,
			Style:          body.Style,
			Width:          body.Width,
			Height:         body.Height,
		})
		if result.Success {
			response.Succeeded++
		} else {
			response.Failed++
		}
		response.Results = append(response.Results, result)
	}
	api.writeJSON(w, http.StatusOK, response)
}

// MetricsResponse represents the JSON response for /api/metrics.
type MetricsResponse struct {
	TotalCalls   int64   `json:"total_calls"`
	CacheHits    int64   `json:"cache_hits"`
	Errors       int64   `json:"errors"`
	CacheHitRate float64 `json:"cache_hit_rate"`
	HistorySize  int     `json:"history_size"`
	CachedImages int     `json:"cached_images"`
}

// HandleMetrics handles GET /api/metrics requests.
func (api *StudioAPI) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snapshot := api.recorder.Snapshot()

	var hitRate float64
	if snapshot.TotalCalls > 0 {
		hitRate = float64(snapshot.CacheHits) / float64(snapshot.TotalCalls) * 100
	}

	cached := 0
	if api.cache != nil {
		if n, err := api.cache.Len(); err == nil {
			cached = n
		}
	}

	api.writeJSON(w, http.StatusOK, MetricsResponse{
		TotalCalls:   snapshot.TotalCalls,
		CacheHits:    snapshot.CacheHits,
		Errors:       snapshot.Errors,
		CacheHitRate: hitRate,
		HistorySize:  api.recorder.Len(),
		CachedImages: cached,
	})
}

// HistoryResponse represents the JSON response for /api/history.
type HistoryResponse struct {
	Outcomes []imagegen.GenerationOutcome `json:"outcomes,omitempty"`
	Records  []db.GenerationRecord        `json:"records,omitempty"`
	Count    int                          `json:"count"`
	Limit    int                          `json:"limit"`
	Archived int64                        `json:"archived,omitempty"`
}

// HandleHistory handles GET /api/history requests.
// Query parameters:
// - limit: number of outcomes to return (default: 20, max: 100)
// - source: "archive" reads the durable log instead of process memory
func (api *StudioAPI) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := api.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > api.maxLimit {
		limit = api.maxLimit
	}

	if r.URL.Query().Get("source") == "archive" {
		if api.archive == nil {
			api.writeError(w, http.StatusNotFound, "durable history is not configured")
			return
		}
		records, err := api.archive.Recent(r.Context(), limit)
		if err != nil {
			api.logger.Error("archive read failed", zap.Error(err))
			api.writeError(w, http.StatusInternalServerError, "failed to read history archive")
			return
		}
		total, err := api.archive.Count(r.Context())
		if err != nil {
			api.logger.Warn("archive count failed", zap.Error(err))
		}
		api.writeJSON(w, http.StatusOK, HistoryResponse{
			Records:  records,
			Count:    len(records),
			Limit:    limit,
			Archived: total,
		})
		return
	}

	outcomes := api.recorder.History(limit)
	api.writeJSON(w, http.StatusOK, HistoryResponse{
		Outcomes: outcomes,
		Count:    len(outcomes),
		Limit:    limit,
	})
}

// StylesResponse represents the JSON response for /api/styles.
type StylesResponse struct {
	Styles  []string `json:"styles"`
	Default string   `json:"default"`
}

// HandleStyles handles GET /api/styles requests.
func (api *StudioAPI) HandleStyles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	api.writeJSON(w, http.StatusOK, StylesResponse{
		Styles:  api.generator.Styles().Names(),
		Default: imagegen.DefaultStyle,
	})
}

// TemplateInfo describes one prompt template.
type TemplateInfo struct {
	Name         string   `json:"name"`
	Template     string   `json:"template"`
	Placeholders []string `json:"placeholders,omitempty"`
}

// TemplatesResponse represents the JSON response for /api/templates.
type TemplatesResponse struct {
	Templates []TemplateInfo `json:"templates"`
}

// HandleTemplates handles GET /api/templates requests.
func (api *StudioAPI) HandleTemplates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	names := api.templates.Names()
	infos := make([]TemplateInfo, 0, len(names))
	for _, name := range names {
		body, _ := api.templates.Lookup(name)
		infos = append(infos, TemplateInfo{
			Name:         name,
			Template:     body,
			Placeholders: imagegen.Placeholders(body),
		})
	}
	api.writeJSON(w, http.StatusOK, TemplatesResponse{Templates: infos})
}

// TipResponse represents the JSON response for /api/tip.
type TipResponse struct {
	Tip        string `json:"tip"`
	IntervalMS int64  `json:"interval_ms"`
}

// HandleTip handles GET /api/tip requests. The frontend polls this at
// the rotation interval.
func (api *StudioAPI) HandleTip(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	api.writeJSON(w, http.StatusOK, TipResponse{
		Tip:        api.tips.Current(),
		IntervalMS: api.tips.Interval().Milliseconds(),
	})
}

// FactsResponse represents the JSON response for /api/facts.
type FactsResponse struct {
	Facts []string `json:"facts"`
}

// HandleFacts handles GET /api/facts requests.
// Query parameters:
// - count: number of facts to sample (default: 3)
func (api *StudioAPI) HandleFacts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	count := 3
	if countStr := r.URL.Query().Get("count"); countStr != "" {
		if parsed, err := strconv.Atoi(countStr); err == nil && parsed > 0 {
			count = parsed
		}
	}

	api.writeJSON(w, http.StatusOK, FactsResponse{Facts: api.tips.FunFacts(count)})
}

// CacheClearResponse represents the JSON response for /api/cache/clear.
type CacheClearResponse struct {
	Removed int `json:"removed"`
}

// HandleCacheClear handles POST /api/cache/clear requests.
func (api *StudioAPI) HandleCacheClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	removed, err := api.generator.ClearCache()
	if err != nil {
		api.logger.Error("cache clear failed", zap.Error(err))
		api.writeError(w, http.StatusInternalServerError, "failed to clear cache")
		return
	}
	api.writeJSON(w, http.StatusOK, CacheClearResponse{Removed: removed})
}

// HandleMetricsReset handles POST /api/metrics/reset requests.
// Query parameters:
// - history: "true" also clears the outcome history
func (api *StudioAPI) HandleMetricsReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	clearHistory := r.URL.Query().Get("history") == "true"
	api.recorder.Reset(clearHistory)
	api.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleImage handles GET /images/{key}.png requests. The key must be a
// well-formed cache key; anything else is rejected before touching the
// filesystem.
func (api *StudioAPI) HandleImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/images/")
	name = strings.TrimSuffix(name, ".png")
	key := imagecache.Key(name)
	if !key.Valid() {
		api.writeError(w, http.StatusBadRequest, "malformed image key")
		return
	}

	data, found, err := api.cache.Lookup(key)
	if err != nil {
		api.logger.Error("image lookup failed", zap.Error(err), zap.String("cache_key", name))
		api.writeError(w, http.StatusInternalServerError, "failed to read image")
		return
	}
	if !found {
		api.writeError(w, http.StatusNotFound, "image not found")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func (api *StudioAPI) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Best effort, headers already written.
		api.logger.Error("failed to encode response", zap.Error(err))
	}
}

// writeError writes an error response.
func (api *StudioAPI) writeError(w http.ResponseWriter, status int, message string) {
	api.writeJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}
