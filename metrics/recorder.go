// Package metrics provides in-memory bookkeeping for generation
// attempts: a process-lifetime history log and monotonic counters.
package metrics

import (
	"sync"

	"genai_studio/imagegen"
)

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	// TotalCalls counts requests that passed validation (hits and
	// network attempts, successful or not)
	TotalCalls int64 `json:"total_calls"`

	// CacheHits counts requests served from the local cache
	CacheHits int64 `json:"cache_hits"`

	// Errors counts failed attempts, including validation rejections
	Errors int64 `json:"errors"`
}

// Recorder is the in-memory metrics/history organism. It is safe for
// concurrent use and performs no I/O; durable persistence is a separate
// sink wired into the orchestrator.
//
// History grows without bound for the lifetime of the process. That is
// an accepted prototype tradeoff; a production variant would cap or
// page it.
type Recorder struct {
	mu      sync.RWMutex
	history []imagegen.GenerationOutcome
	counts  Snapshot
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends the outcome to history and updates the counters.
//
// Counter rules: a validation rejection increments only Errors (it never
// reached the cache or network). Every other outcome increments
// TotalCalls; cache hits increment CacheHits; failures increment Errors.
func (r *Recorder) Record(outcome imagegen.GenerationOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// History keeps the metadata, not the payload; images live in the
	// cache and are served by key.
	outcome.Image = nil
	r.history = append(r.history, outcome)

	if outcome.ErrorKind == imagegen.KindInvalidInput {
		r.counts.Errors++
		return
	}

	r.counts.TotalCalls++
	if outcome.Source == imagegen.SourceCache {
		r.counts.CacheHits++
	}
	if !outcome.Success {
		r.counts.Errors++
	}
}

// Snapshot returns a copy of the current counters.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counts
}

// History returns a copy of the outcome log, oldest first. limit <= 0
// returns everything; otherwise the most recent limit entries.
func (r *Recorder) History(limit int) []imagegen.GenerationOutcome {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := len(r.history)
	if limit > 0 && limit < n {
		out := make([]imagegen.GenerationOutcome, limit)
		copy(out, r.history[n-limit:])
		return out
	}
	out := make([]imagegen.GenerationOutcome, n)
	copy(out, r.history)
	return out
}

// Len returns the number of history entries.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.history)
}

// Reset zeroes the counters and, when clearHistory is set, drops the
// history log as well.
func (r *Recorder) Reset(clearHistory bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.counts = Snapshot{}
	if clearHistory {
		r.history = nil
	}
}
