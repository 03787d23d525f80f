// Package webui provides the web-based user interface for GenAI Studio.
// This file implements the history export: the in-memory outcome log
// packaged as a zip archive with the cached images alongside their
// metadata.
package webui

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"genai_studio/imagecache"
	"genai_studio/metrics"
)

// ExportMetadata is the archive-level summary written to metadata.json.
type ExportMetadata struct {
	ExportDate       string           `json:"export_date"`
	TotalGenerations int              `json:"total_generations"`
	Metrics          metrics.Snapshot `json:"metrics"`
}

// ExportEntry is the per-outcome info file written next to each image.
type ExportEntry struct {
	Prompt     string `json:"prompt"`
	Negative   string `json:"negative,omitempty"`
	Style      string `json:"style"`
	Dimensions string `json:"dimensions"`
	Timestamp  string `json:"timestamp"`
	Source     string `json:"source,omitempty"`
	Success    bool   `json:"success"`
	ErrorKind  string `json:"error_kind,omitempty"`
	CacheKey   string `json:"cache_key,omitempty"`
}

// HandleHistoryExport handles GET /api/history/export requests. The zip
// holds metadata.json, one info file per outcome, and the image bytes
// for every outcome still present in the cache. History keeps metadata
// only, so images are re-read from the cache by key; entries whose image
// has been cleared export info-only.
func (api *StudioAPI) HandleHistoryExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	outcomes := api.recorder.History(0)
	if len(outcomes) == 0 {
		api.writeError(w, http.StatusNotFound, "no history to export")
		return
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	metadata := ExportMetadata{
		ExportDate:       time.Now().Format(time.RFC3339),
		TotalGenerations: len(outcomes),
		Metrics:          api.recorder.Snapshot(),
	}
	if err := writeZipJSON(zw, "metadata.json", metadata); err != nil {
		api.logger.Error("history export failed", zap.Error(err))
		api.writeError(w, http.StatusInternalServerError, "failed to build archive")
		return
	}

	for i, outcome := range outcomes {
		req := outcome.Request
		entry := ExportEntry{
			Prompt:     req.Text,
			Negative:   req.NegativeText,
			Style:      req.Style,
			Dimensions: fmt.Sprintf("%dx%d", req.Width, req.Height),
			Timestamp:  outcome.Timestamp.Format(time.RFC3339),
			Source:     string(outcome.Source),
			Success:    outcome.Success,
			ErrorKind:  string(outcome.ErrorKind),
			CacheKey:   outcome.CacheKey,
		}
		if err := writeZipJSON(zw, fmt.Sprintf("image_%03d_info.json", i), entry); err != nil {
			api.logger.Error("history export failed", zap.Error(err))
			api.writeError(w, http.StatusInternalServerError, "failed to build archive")
			return
		}

		if !outcome.Success || api.cache == nil {
			continue
		}
		key := imagecache.Key(outcome.CacheKey)
		data, found, err := api.cache.Lookup(key)
		if err != nil || !found {
			continue
		}
		f, err := zw.Create(fmt.Sprintf("image_%03d.png", i))
		if err == nil {
			_, err = f.Write(data)
		}
		if err != nil {
			api.logger.Error("history export failed", zap.Error(err))
			api.writeError(w, http.StatusInternalServerError, "failed to build archive")
			return
		}
	}

	if err := zw.Close(); err != nil {
		api.logger.Error("history export failed", zap.Error(err))
		api.writeError(w, http.StatusInternalServerError, "failed to build archive")
		return
	}

	filename := "genai_history_" + time.Now().Format("20060102_150405") + ".zip"
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// writeZipJSON adds one pretty-printed JSON file to the archive.
func writeZipJSON(zw *zip.Writer, name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("webui: failed to marshal %s: %w", name, err)
	}
	f, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("webui: failed to add %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("webui: failed to write %s: %w", name, err)
	}
	return nil
}
