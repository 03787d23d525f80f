// Package imagegen implements validation-gated image generation.
//
// validate.go contains the pure prompt validation atoms. Rules run in a
// fixed order and the first failure wins; there are no side effects.
package imagegen

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Validation limits.
const (
	// MinPromptWords is the minimum number of whitespace-separated words
	MinPromptWords = 3

	// MaxPromptLength is the maximum prompt length in characters
	MaxPromptLength = 500

	// MinDimension is the smallest accepted width/height in pixels
	MinDimension = 256

	// MaxDimension is the largest accepted width/height in pixels
	MaxDimension = 1024

	// WarnDimension is the soft threshold above which generation is
	// accepted but slower; a warning is attached instead of a rejection
	WarnDimension = 768
)

// blockedTerms is the fixed content filter. Matching is case-insensitive
// substring search anywhere in the prompt.
var blockedTerms = []string{"nsfw", "explicit", "adult", "nude"}

// Validate applies all request rules in order: empty text, word count,
// character count, blocked terms, then dimensions. Pure function.
func Validate(text, negative string, width, height int) ValidationResult {
	if strings.TrimSpace(text) == "" {
		return reject("prompt is empty")
	}

	if len(strings.Fields(text)) < MinPromptWords {
		return reject(fmt.Sprintf("prompt too short (minimum %d words)", MinPromptWords))
	}

	if utf8.RuneCountInString(text) > MaxPromptLength {
		return reject(fmt.Sprintf("prompt too long (max %d characters)", MaxPromptLength))
	}

	if term := firstBlockedTerm(text); term != "" {
		return reject("blocked content")
	}

	if !dimensionInRange(width) || !dimensionInRange(height) {
		return reject(fmt.Sprintf("dimension out of range (must be %d-%d)", MinDimension, MaxDimension))
	}

	result := ValidationResult{Accepted: true}
	if width > WarnDimension || height > WarnDimension {
		result.Warning = fmt.Sprintf("dimensions above %dpx may take longer to generate", WarnDimension)
	}
	return result
}

// ValidateRequest is a convenience wrapper over Validate for a full
// PromptRequest.
func ValidateRequest(req PromptRequest) ValidationResult {
	return Validate(req.Text, req.NegativeText, req.Width, req.Height)
}

// firstBlockedTerm returns the first blocked term found in the text, or
// "" when the text is clean. Matching is case-insensitive.
func firstBlockedTerm(text string) string {
	lower := strings.ToLower(text)
	for _, term := range blockedTerms {
		if strings.Contains(lower, term) {
			return term
		}
	}
	return ""
}

// dimensionInRange reports whether a single dimension is acceptable.
func dimensionInRange(px int) bool {
	return px >= MinDimension && px <= MaxDimension
}

// reject builds a rejection with the given reason.
func reject(reason string) ValidationResult {
	return ValidationResult{Accepted: false, Reason: reason}
}
