// Package imagegen implements validation-gated image generation.
//
// style.go contains the style table and effective-prompt composition.
// The style→augmentation mapping is data, not code: adding a style means
// adding a table row (or a YAML entry), never a new code path.
package imagegen

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultStyle is used when a request names no style or an unknown one.
const DefaultStyle = "photorealistic"

// StyleTable maps style names to prompt augmentation strings.
type StyleTable map[string]string

// DefaultStyleTable returns the built-in style table.
func DefaultStyleTable() StyleTable {
	return StyleTable{
		"photorealistic": "hyper-realistic, professional photography, high detail",
		"digital art":    "digital painting, concept art, trending on artstation",
		"watercolor":     "watercolor painting, soft brush strokes, artistic",
		"cyberpunk":      "cyberpunk aesthetic, neon lights, futuristic",
		"portrait":       "professional portrait, studio lighting, detailed face",
		"abstract":       "abstract art, geometric shapes, modern art style",
		"cartoon":        "cartoon style, animated, colorful and fun",
	}
}

// LoadStyleTable reads a style table from a YAML file of the form
//
//	photorealistic: "hyper-realistic, professional photography"
//	sketch: "pencil sketch, monochrome"
//
// A loaded table fully replaces the built-in one so operators can both
// add and remove styles.
func LoadStyleTable(path string) (StyleTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("imagegen: failed to read styles file: %w", err)
	}
	table := StyleTable{}
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("imagegen: failed to parse styles file: %w", err)
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("imagegen: styles file %s defines no styles", path)
	}
	return table, nil
}

// LoadStyleTableOrDefault loads the table from path, or returns the
// built-in table when path is empty.
func LoadStyleTableOrDefault(path string) (StyleTable, error) {
	if path == "" {
		return DefaultStyleTable(), nil
	}
	return LoadStyleTable(path)
}

// Names returns the style names in sorted order for stable UI listings.
func (t StyleTable) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Augmentation returns the augmentation string for a style. An unknown
// style falls back to using the style name itself as the augmentation,
// matching the lenient lookup the demo always had.
func (t StyleTable) Augmentation(style string) string {
	if aug, ok := t[style]; ok {
		return aug
	}
	return style
}

// EffectivePrompt composes the prompt actually sent to the generation
// API: base text, the style-specific augmentation, and a negative-prompt
// exclusion clause when one is provided.
func (t StyleTable) EffectivePrompt(text, style, negative string) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(text))
	if aug := t.Augmentation(style); aug != "" {
		b.WriteString(", ")
		b.WriteString(aug)
	}
	if negative != "" {
		b.WriteString(", not ")
		b.WriteString(negative)
	}
	return b.String()
}
