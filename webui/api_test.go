package webui

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"genai_studio/imagecache"
	"genai_studio/imagegen"
	"genai_studio/logging"
	"genai_studio/metrics"
)

// fakeProvider returns a canned payload and counts invocations.
type fakeProvider struct {
	data  []byte
	err   error
	calls int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Generate(ctx context.Context, effectivePrompt string, width, height int) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(0, 0, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

// newTestAPI wires a full pipeline on a throwaway cache directory.
func newTestAPI(t *testing.T, provider imagegen.Provider) (*StudioAPI, *metrics.Recorder) {
	t.Helper()
	store, err := imagecache.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create cache store: %v", err)
	}
	recorder := metrics.NewRecorder()
	generator, err := imagegen.NewGenerator(provider, store, recorder, nil, logging.NewNop(), imagegen.GeneratorConfig{})
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}

	api := NewStudioAPI(generator, recorder, store, nil, NewRotatingTips(TipsConfig{}), logging.NewNop(), StudioAPIConfig{})
	return api, recorder
}

func newTestMux(t *testing.T, api *StudioAPI) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	api.RegisterRoutes(mux)
	return mux
}

func postGenerate(t *testing.T, mux *http.ServeMux, body GenerateRequest) (*httptest.ResponseRecorder, GenerateResponse) {
	t.Helper()
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/generate", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var response GenerateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("response is not valid JSON: %v\n%s", err, rec.Body.String())
	}
	return rec, response
}

func TestHandleGenerateSuccess(t *testing.T) {
	provider := &fakeProvider{data: testPNG(t)}
	api, _ := newTestAPI(t, provider)
	mux := newTestMux(t, api)

	rec, response := postGenerate(t, mux, GenerateRequest{
		Prompt: "a cat in space",
		Style:  "cyberpunk",
		Width:  512,
		Height: 512,
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !response.Success {
		t.Fatalf("generation failed: %s", response.Message)
	}
	if response.Source != "network" {
		t.Errorf("source = %q, want network", response.Source)
	}
	if !strings.HasPrefix(response.ImageURL, "/images/") || !strings.HasSuffix(response.ImageURL, ".png") {
		t.Errorf("image URL malformed: %q", response.ImageURL)
	}

	// The advertised URL must serve the cached image.
	imgReq := httptest.NewRequest(http.MethodGet, response.ImageURL, nil)
	imgRec := httptest.NewRecorder()
	mux.ServeHTTP(imgRec, imgReq)
	if imgRec.Code != http.StatusOK {
		t.Fatalf("image fetch status = %d", imgRec.Code)
	}
	if ct := imgRec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("image content type = %q", ct)
	}
	if imgRec.Body.Len() == 0 {
		t.Error("image response empty")
	}
}

func TestHandleGenerateCacheHit(t *testing.T) {
	provider := &fakeProvider{data: testPNG(t)}
	api, _ := newTestAPI(t, provider)
	mux := newTestMux(t, api)

	request := GenerateRequest{Prompt: "a cat in space", Style: "cyberpunk", Width: 512, Height: 512}
	postGenerate(t, mux, request)
	_, second := postGenerate(t, mux, request)

	if second.Source != "cache" {
		t.Errorf("second source = %q, want cache", second.Source)
	}
	if provider.calls != 1 {
		t.Errorf("provider called %d times, want 1", provider.calls)
	}
}

func TestHandleGenerateValidationFailure(t *testing.T) {
	provider := &fakeProvider{data: testPNG(t)}
	api, _ := newTestAPI(t, provider)
	mux := newTestMux(t, api)

	rec, response := postGenerate(t, mux, GenerateRequest{Prompt: "too short"})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
	if response.Success {
		t.Error("invalid prompt reported success")
	}
	if response.ErrorKind != string(imagegen.KindInvalidInput) {
		t.Errorf("error kind = %q", response.ErrorKind)
	}
	if provider.calls != 0 {
		t.Error("invalid prompt reached the provider")
	}
}

func TestHandleGenerateDefaults(t *testing.T) {
	provider := &fakeProvider{data: testPNG(t)}
	api, recorder := newTestAPI(t, provider)
	mux := newTestMux(t, api)

	// Omitted dimensions and style fall back to 512x512 photorealistic.
	_, response := postGenerate(t, mux, GenerateRequest{Prompt: "a cat in space"})
	if !response.Success {
		t.Fatalf("generation failed: %s", response.Message)
	}

	history := recorder.History(1)
	if len(history) != 1 {
		t.Fatal("no history entry recorded")
	}
	req := history[0].Request
	if req.Width != 512 || req.Height != 512 {
		t.Errorf("default dimensions = %dx%d", req.Width, req.Height)
	}
	if req.Style != imagegen.DefaultStyle {
		t.Errorf("default style = %q", req.Style)
	}
}

func TestHandleGenerateRejectsGet(t *testing.T) {
	api, _ := newTestAPI(t, &fakeProvider{data: testPNG(t)})
	mux := newTestMux(t, api)

	req := httptest.NewRequest(http.MethodGet, "/api/generate", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestHandleMetrics(t *testing.T) {
	provider := &fakeProvider{data: testPNG(t)}
	api, _ := newTestAPI(t, provider)
	mux := newTestMux(t, api)

	request := GenerateRequest{Prompt: "a cat in space", Width: 512, Height: 512}
	postGenerate(t, mux, request)
	postGenerate(t, mux, request) // cache hit

	req := httptest.NewRequest(http.MethodGet, "/api/metrics", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var response MetricsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if response.TotalCalls != 2 {
		t.Errorf("total_calls = %d, want 2", response.TotalCalls)
	}
	if response.CacheHits != 1 {
		t.Errorf("cache_hits = %d, want 1", response.CacheHits)
	}
	if response.CacheHitRate != 50 {
		t.Errorf("cache_hit_rate = %v, want 50", response.CacheHitRate)
	}
	if response.CachedImages != 1 {
		t.Errorf("cached_images = %d, want 1", response.CachedImages)
	}
}

func TestHandleHistory(t *testing.T) {
	provider := &fakeProvider{data: testPNG(t)}
	api, _ := newTestAPI(t, provider)
	mux := newTestMux(t, api)

	postGenerate(t, mux, GenerateRequest{Prompt: "a cat in space", Width: 512, Height: 512})

	req := httptest.NewRequest(http.MethodGet, "/api/history?limit=5", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var response HistoryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if response.Count != 1 {
		t.Errorf("count = %d, want 1", response.Count)
	}
	if response.Limit != 5 {
		t.Errorf("limit = %d, want 5", response.Limit)
	}
}

func TestHandleHistoryArchiveUnconfigured(t *testing.T) {
	api, _ := newTestAPI(t, &fakeProvider{data: testPNG(t)})
	mux := newTestMux(t, api)

	req := httptest.NewRequest(http.MethodGet, "/api/history?source=archive", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 when no archive is configured", rec.Code)
	}
}

func TestHandleStyles(t *testing.T) {
	api, _ := newTestAPI(t, &fakeProvider{data: testPNG(t)})
	mux := newTestMux(t, api)

	req := httptest.NewRequest(http.MethodGet, "/api/styles", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var response StylesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(response.Styles) != 7 {
		t.Errorf("styles count = %d, want 7", len(response.Styles))
	}
	if response.Default != imagegen.DefaultStyle {
		t.Errorf("default = %q", response.Default)
	}
}

func TestHandleTipAndFacts(t *testing.T) {
	api, _ := newTestAPI(t, &fakeProvider{data: testPNG(t)})
	mux := newTestMux(t, api)

	req := httptest.NewRequest(http.MethodGet, "/api/tip", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var tip TipResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &tip); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if tip.Tip == "" {
		t.Error("empty tip")
	}
	if tip.IntervalMS != DefaultTipInterval.Milliseconds() {
		t.Errorf("interval_ms = %d", tip.IntervalMS)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/facts?count=2", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var facts FactsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &facts); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(facts.Facts) != 2 {
		t.Errorf("facts count = %d, want 2", len(facts.Facts))
	}
}

func TestHandleTemplates(t *testing.T) {
	api, _ := newTestAPI(t, &fakeProvider{data: testPNG(t)})
	mux := newTestMux(t, api)

	req := httptest.NewRequest(http.MethodGet, "/api/templates", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var response TemplatesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(response.Templates) != 5 {
		t.Fatalf("templates count = %d, want 5", len(response.Templates))
	}
	for _, tmpl := range response.Templates {
		if tmpl.Name == "" || tmpl.Template == "" {
			t.Errorf("incomplete template entry: %+v", tmpl)
		}
		if len(tmpl.Placeholders) == 0 {
			t.Errorf("template %q lists no placeholders", tmpl.Name)
		}
	}
}

func TestHandleGenerateBatch(t *testing.T) {
	provider := &fakeProvider{data: testPNG(t)}
	api, _ := newTestAPI(t, provider)
	mux := newTestMux(t, api)

	payload, _ := json.Marshal(BatchGenerateRequest{
		Prompts: []string{
			"a cat in space",
			"too short", // fails validation
			"a dog on the moon",
		},
		Style:  "cyberpunk",
		Width:  512,
		Height: 512,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/generate/batch", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var response BatchGenerateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(response.Results) != 3 {
		t.Fatalf("results = %d, want 3", len(response.Results))
	}
	if response.Succeeded != 2 || response.Failed != 1 {
		t.Errorf("succeeded/failed = %d/%d, want 2/1", response.Succeeded, response.Failed)
	}
	if response.Results[1].ErrorKind != string(imagegen.KindInvalidInput) {
		t.Errorf("bad prompt error kind = %q", response.Results[1].ErrorKind)
	}
	// One bad prompt never blocks the rest of the batch.
	if provider.calls != 2 {
		t.Errorf("provider called %d times, want 2", provider.calls)
	}
}

func TestHandleGenerateBatchOverLimit(t *testing.T) {
	api, _ := newTestAPI(t, &fakeProvider{data: testPNG(t)})
	mux := newTestMux(t, api)

	prompts := make([]string, BatchLimit+1)
	for i := range prompts {
		prompts[i] = "a cat in space"
	}
	payload, _ := json.Marshal(BatchGenerateRequest{Prompts: prompts})
	req := httptest.NewRequest(http.MethodPost, "/api/generate/batch", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}

	payload, _ = json.Marshal(BatchGenerateRequest{Prompts: []string{"  ", ""}})
	req = httptest.NewRequest(http.MethodPost, "/api/generate/batch", bytes.NewReader(payload))
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank prompts: status = %d, want 400", rec.Code)
	}
}

func TestHandleHistoryExport(t *testing.T) {
	provider := &fakeProvider{data: testPNG(t)}
	api, _ := newTestAPI(t, provider)
	mux := newTestMux(t, api)

	postGenerate(t, mux, GenerateRequest{Prompt: "a cat in space", Width: 512, Height: 512})
	postGenerate(t, mux, GenerateRequest{Prompt: "too short"})

	req := httptest.NewRequest(http.MethodGet, "/api/history/export", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/zip" {
		t.Errorf("content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("content disposition = %q", cd)
	}

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	if err != nil {
		t.Fatalf("body is not a zip archive: %v", err)
	}
	names := make(map[string]bool, len(zr.File))
	for _, f := range zr.File {
		names[f.Name] = true
	}
	for _, want := range []string{"metadata.json", "image_000_info.json", "image_000.png", "image_001_info.json"} {
		if !names[want] {
			t.Errorf("archive missing %s (has %v)", want, names)
		}
	}
	// The rejected request exported info only.
	if names["image_001.png"] {
		t.Error("failed outcome exported an image")
	}

	f, err := zr.Open("metadata.json")
	if err != nil {
		t.Fatalf("failed to open metadata: %v", err)
	}
	defer f.Close()
	var metadata ExportMetadata
	if err := json.NewDecoder(f).Decode(&metadata); err != nil {
		t.Fatalf("metadata is not valid JSON: %v", err)
	}
	if metadata.TotalGenerations != 2 {
		t.Errorf("total_generations = %d, want 2", metadata.TotalGenerations)
	}
}

func TestHandleHistoryExportEmpty(t *testing.T) {
	api, _ := newTestAPI(t, &fakeProvider{data: testPNG(t)})
	mux := newTestMux(t, api)

	req := httptest.NewRequest(http.MethodGet, "/api/history/export", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for empty history", rec.Code)
	}
}

func TestHandleCacheClear(t *testing.T) {
	provider := &fakeProvider{data: testPNG(t)}
	api, _ := newTestAPI(t, provider)
	mux := newTestMux(t, api)

	postGenerate(t, mux, GenerateRequest{Prompt: "a cat in space", Width: 512, Height: 512})

	req := httptest.NewRequest(http.MethodPost, "/api/cache/clear", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var response CacheClearResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if response.Removed != 1 {
		t.Errorf("removed = %d, want 1", response.Removed)
	}

	// The next identical request is a cache miss again.
	_, second := postGenerate(t, mux, GenerateRequest{Prompt: "a cat in space", Width: 512, Height: 512})
	if second.Source != "network" {
		t.Errorf("post-clear source = %q, want network", second.Source)
	}
}

func TestHandleMetricsReset(t *testing.T) {
	provider := &fakeProvider{data: testPNG(t)}
	api, recorder := newTestAPI(t, provider)
	mux := newTestMux(t, api)

	postGenerate(t, mux, GenerateRequest{Prompt: "a cat in space", Width: 512, Height: 512})

	req := httptest.NewRequest(http.MethodPost, "/api/metrics/reset", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	if snapshot := recorder.Snapshot(); snapshot.TotalCalls != 0 {
		t.Errorf("counters not reset: %+v", snapshot)
	}
	// Without history=true the log survives.
	if recorder.Len() != 1 {
		t.Errorf("history length = %d, want 1", recorder.Len())
	}
}

func TestHandleImageRejectsMalformedKey(t *testing.T) {
	api, _ := newTestAPI(t, &fakeProvider{data: testPNG(t)})
	mux := newTestMux(t, api)

	for _, path := range []string{
		"/images/notakey.png",
		"/images/" + strings.Repeat("zz", 32) + ".png", // right length, not hex
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", path, rec.Code)
		}
	}

	// A traversal attempt never reaches the filesystem. The handler is
	// called directly because ServeMux would redirect the unclean path.
	req := httptest.NewRequest(http.MethodGet, "/images/key.png", nil)
	req.URL.Path = "/images/../secret.png"
	rec := httptest.NewRecorder()
	api.HandleImage(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("traversal: status = %d, want 400", rec.Code)
	}
}

func TestHandleImageNotFound(t *testing.T) {
	api, _ := newTestAPI(t, &fakeProvider{data: testPNG(t)})
	mux := newTestMux(t, api)

	key := strings.Repeat("ab", 32)
	req := httptest.NewRequest(http.MethodGet, "/images/"+key+".png", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
