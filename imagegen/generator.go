// Package imagegen implements validation-gated image generation.
//
// generator.go implements the Generator organism that orchestrates one
// generation attempt end to end: validate, compose the effective prompt,
// derive the cache key, serve a hit or call the provider, verify and
// cache the payload, and record the outcome.
package imagegen

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"genai_studio/imagecache"
	"genai_studio/logging"
)

// Generator orchestrates the generation pipeline.
//
// This organism composes:
//   - validate.go: request validation atoms
//   - style.go: effective-prompt composition
//   - Provider: the generation backend (Pollinations or OpenAI)
//   - imagecache.Store: the content-addressed local cache
//   - OutcomeRecorder: in-memory metrics/history bookkeeping
//   - OutcomeSink: optional durable history persistence
type Generator struct {
	provider Provider
	cache    *imagecache.Store
	styles   StyleTable
	recorder OutcomeRecorder
	sink     OutcomeSink
	logger   *logging.Logger
	timeout  time.Duration
}

// OutcomeRecorder receives every finished outcome for metrics/history
// bookkeeping. Implemented by metrics.Recorder.
type OutcomeRecorder interface {
	Record(outcome GenerationOutcome)
}

// OutcomeSink persists outcomes durably. Implemented by the sqlite
// repository; optional, may be nil.
type OutcomeSink interface {
	SaveOutcome(ctx context.Context, outcome GenerationOutcome) error
}

// GeneratorConfig holds configuration for the Generator.
type GeneratorConfig struct {
	// Styles is the style→augmentation table (default: built-in table)
	Styles StyleTable

	// RequestTimeout bounds one provider call (default: 30s)
	RequestTimeout time.Duration
}

// NewGenerator creates the orchestrator. Provider, cache, recorder, and
// logger are required; sink may be nil to disable persistence.
func NewGenerator(provider Provider, cache *imagecache.Store, recorder OutcomeRecorder, sink OutcomeSink, logger *logging.Logger, cfg GeneratorConfig) (*Generator, error) {
	if provider == nil {
		return nil, fmt.Errorf("imagegen: provider cannot be nil")
	}
	if cache == nil {
		return nil, fmt.Errorf("imagegen: cache cannot be nil")
	}
	if recorder == nil {
		return nil, fmt.Errorf("imagegen: recorder cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("imagegen: logger cannot be nil")
	}

	styles := cfg.Styles
	if styles == nil {
		styles = DefaultStyleTable()
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Generator{
		provider: provider,
		cache:    cache,
		styles:   styles,
		recorder: recorder,
		sink:     sink,
		logger:   logger.Named("generator"),
		timeout:  timeout,
	}, nil
}

// Styles returns the active style table.
func (g *Generator) Styles() StyleTable { return g.styles }

// Generate runs one generation attempt and returns its outcome. Every
// invocation produces exactly one history append and metrics update; a
// rejected request touches neither the cache nor the network, and a
// cache hit issues no network call.
func (g *Generator) Generate(ctx context.Context, req PromptRequest) GenerationOutcome {
	correlationID := uuid.NewString()
	log := g.logger.With(zap.String("correlation_id", correlationID))

	outcome := GenerationOutcome{
		Request:       req,
		CorrelationID: correlationID,
	}

	// Step 1: validate. Rejections never reach the cache or network.
	validation := ValidateRequest(req)
	if !validation.Accepted {
		log.Info("request rejected", zap.String("reason", validation.Reason))
		outcome.ErrorKind = KindInvalidInput
		outcome.Message = validation.Reason
		return g.finish(ctx, log, outcome)
	}
	outcome.Warning = validation.Warning

	// Step 2+3: effective prompt and cache key.
	effective := g.styles.EffectivePrompt(req.Text, req.Style, req.NegativeText)
	key := imagecache.DeriveKey(effective, req.NegativeText, req.Width, req.Height)
	outcome.CacheKey = key.String()
	log = log.With(zap.String("cache_key", key.String()))

	// Step 4: cache lookup. Read failures degrade to a miss.
	cached, hit, err := g.cache.Lookup(key)
	if err != nil {
		log.Warn("cache lookup failed, treating as miss", zap.Error(err))
	}
	if hit {
		log.Debug("cache hit", zap.Int("bytes", len(cached)))
		outcome.Success = true
		outcome.Source = SourceCache
		outcome.Image = cached
		outcome.Message = "loaded from cache"
		return g.finish(ctx, log, outcome)
	}

	// Step 5: one network call under a bounded timeout.
	log.Info("cache miss, calling provider",
		zap.String("provider", g.provider.Name()),
		zap.String("prompt_preview", truncateText(effective, 80)),
		zap.Int("width", req.Width),
		zap.Int("height", req.Height))

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	data, err := g.provider.Generate(callCtx, effective, req.Width, req.Height)
	outcome.ElapsedMS = time.Since(start).Milliseconds()

	if err != nil {
		if isTimeout(err) {
			log.Warn("generation timed out", zap.Duration("timeout", g.timeout))
			outcome.ErrorKind = KindTimeout
			outcome.Message = "request timed out"
		} else {
			log.Error("generation failed", zap.Error(err))
			outcome.ErrorKind = KindNetwork
			outcome.Message = fmt.Sprintf("network error: %v", err)
		}
		return g.finish(ctx, log, outcome)
	}

	// Verify the payload decodes before it may enter the cache.
	info, err := VerifyImage(data)
	if err != nil {
		log.Error("provider returned malformed image", zap.Error(err))
		outcome.ErrorKind = KindNetwork
		outcome.Message = fmt.Sprintf("network error: %v", err)
		return g.finish(ctx, log, outcome)
	}

	// Persist into the cache. A write failure degrades the cache to a
	// miss next time; the generated image is still returned.
	if err := g.cache.Store(key, data); err != nil {
		log.Error("cache write failed", zap.Error(err))
		outcome.ErrorKind = KindStorage
		if outcome.Warning == "" {
			outcome.Warning = "image generated but could not be cached"
		}
	}

	log.Info("image generated",
		zap.String("format", info.Format),
		zap.Int("bytes", len(data)),
		zap.Int64("elapsed_ms", outcome.ElapsedMS))

	outcome.Success = true
	outcome.Source = SourceNetwork
	outcome.Image = data
	outcome.Message = "generated successfully"
	return g.finish(ctx, log, outcome)
}

// ClearCache removes every cached entry and reports the count.
func (g *Generator) ClearCache() (int, error) {
	removed, err := g.cache.ClearAll()
	if err != nil {
		g.logger.Error("cache clear failed", zap.Error(err))
		return removed, err
	}
	g.logger.Info("cache cleared", zap.Int("removed", removed))
	return removed, nil
}

// finish stamps the outcome, records it exactly once, and forwards it to
// the durable sink when one is configured. Sink failures are logged and
// never fail the request.
func (g *Generator) finish(ctx context.Context, log *logging.Logger, outcome GenerationOutcome) GenerationOutcome {
	outcome.Timestamp = time.Now()
	g.recorder.Record(outcome)
	if g.sink != nil {
		if err := g.sink.SaveOutcome(ctx, outcome); err != nil {
			log.Warn("failed to persist outcome", zap.Error(err))
		}
	}
	return outcome
}

// isTimeout reports whether err represents an exceeded deadline, either
// from the call context or from the HTTP transport.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// truncateText shortens s for log previews.
func truncateText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
