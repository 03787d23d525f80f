// Package webui provides the web-based user interface for GenAI Studio.
// This file contains the RotatingTips molecule that serves the rotating
// developer tip shown in the page footer and the fun facts shown next to
// a finished generation.
package webui

import (
	"math/rand"
	"sync"
	"time"
)

// DefaultTipInterval is how long each tip stays on screen.
const DefaultTipInterval = 3 * time.Second

// defaultTips are shown one at a time in the footer panel.
var defaultTips = []string{
	"💡 Cache keys cover the prompt, style, and dimensions",
	"🔄 Identical requests are served from the local cache",
	"⚡ Smaller dimensions generate noticeably faster",
	"🎨 Style presets append descriptive terms to your prompt",
	"📊 The analytics tab tracks calls, errors, and cache hits",
	"🔧 Negative prompts exclude unwanted elements",
	"💾 Clear the cache to force fresh generations",
	"🛡️ Prompts are validated before any network call",
	"📱 Keep prompts concrete: subject, setting, mood",
	"🚀 Repeat generations hit the cache in milliseconds",
}

// defaultFunFacts are sampled for the "Did You Know?" panel.
var defaultFunFacts = []string{
	"AI image generation uses diffusion models to create art from text",
	"The first neural network was created in 1943",
	"Content-addressed caches never serve stale entries",
	"A SHA-256 key makes identical prompts collide on purpose",
	"Image caching can speed up repeated generations by 10x",
	"Negative prompts help exclude unwanted elements from images",
	"Most AI models are trained on millions of image-text pairs",
}

// RotatingTips cycles through a fixed tip list on a wall-clock schedule.
// The current tip is derived from elapsed time, so no background
// goroutine is needed and every caller sees the same tip.
//
// Thread Safety: safe for concurrent use.
type RotatingTips struct {
	tips     []string
	facts    []string
	interval time.Duration
	epoch    time.Time
	now      func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// TipsConfig configures the RotatingTips molecule.
type TipsConfig struct {
	// Tips overrides the built-in tip list (optional)
	Tips []string

	// FunFacts overrides the built-in fact list (optional)
	FunFacts []string

	// Interval between tip changes (default: 3s)
	Interval time.Duration
}

// NewRotatingTips creates the tips molecule.
func NewRotatingTips(cfg TipsConfig) *RotatingTips {
	tips := cfg.Tips
	if len(tips) == 0 {
		tips = defaultTips
	}
	facts := cfg.FunFacts
	if len(facts) == 0 {
		facts = defaultFunFacts
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultTipInterval
	}

	return &RotatingTips{
		tips:     tips,
		facts:    facts,
		interval: interval,
		epoch:    time.Now(),
		now:      time.Now,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Current returns the tip for the present moment.
func (t *RotatingTips) Current() string {
	elapsed := t.now().Sub(t.epoch)
	index := int(elapsed/t.interval) % len(t.tips)
	if index < 0 {
		index = 0
	}
	return t.tips[index]
}

// FunFacts returns up to n randomly sampled facts without repeats.
func (t *RotatingTips) FunFacts(n int) []string {
	if n <= 0 {
		return nil
	}
	if n > len(t.facts) {
		n = len(t.facts)
	}

	t.mu.Lock()
	perm := t.rng.Perm(len(t.facts))
	t.mu.Unlock()

	sampled := make([]string, n)
	for i := 0; i < n; i++ {
		sampled[i] = t.facts[perm[i]]
	}
	return sampled
}

// Interval returns the rotation period.
func (t *RotatingTips) Interval() time.Duration { return t.interval }
