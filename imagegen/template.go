// Package imagegen implements validation-gated image generation.
//
// template.go contains the prompt template table. A template is a prompt
// skeleton with {placeholder} slots the user fills before generating.
// Like the style table, templates are data, not code.
package imagegen

import (
	"regexp"
	"sort"
	"strings"
)

// TemplateTable maps template names to prompt skeletons.
type TemplateTable map[string]string

// DefaultTemplateTable returns the built-in prompt templates.
func DefaultTemplateTable() TemplateTable {
	return TemplateTable{
		"landscape": "A breathtaking {subject} landscape with {lighting} lighting, {weather} weather, ultra-detailed, cinematic",
		"portrait":  "Professional portrait of {subject}, {lighting} lighting, high detail, studio quality, {mood} expression",
		"abstract":  "Abstract {subject} with {colors} colors, {style} style, modern art, geometric patterns",
		"fantasy":   "Fantasy {subject} in a magical {setting}, mystical atmosphere, epic fantasy art style",
		"sci-fi":    "Futuristic {subject} in a {setting} environment, cyberpunk aesthetic, neon lighting, high-tech",
	}
}

// placeholderPattern matches one {slot} in a template.
var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z0-9_-]+)\}`)

// Names returns the template names in sorted order for stable UI listings.
func (t TemplateTable) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the template body for name.
func (t TemplateTable) Lookup(name string) (string, bool) {
	body, ok := t[name]
	return body, ok
}

// Placeholders returns the unique placeholder names of a template, in
// order of first appearance.
func Placeholders(template string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(template, -1)
	seen := make(map[string]bool, len(matches))
	var slots []string
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			slots = append(slots, m[1])
		}
	}
	return slots
}

// FillTemplate substitutes values into the template's {slot} markers.
// Slots without a value are left in place for the user to edit.
func FillTemplate(template string, values map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(slot string) string {
		name := strings.Trim(slot, "{}")
		if value, ok := values[name]; ok {
			return value
		}
		return slot
	})
}
