// internal/pipeline/sanitize.go
package pipeline

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Limits applied to sanitized metadata text
const (
	MaxTitleLength       = 300
	MaxDescriptionLength = 1000
)

var (
	htmlTagPattern    = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// SanitizeTitle cleans an extracted title: strips markup and entities,
// collapses whitespace and bounds the length.
func SanitizeTitle(raw string) string {
	return sanitizeText(raw, MaxTitleLength)
}

// SanitizeDescription cleans an extracted description the same way as
// SanitizeTitle but with a larger length bound.
func SanitizeDescription(raw string) string {
	return sanitizeText(raw, MaxDescriptionLength)
}

// sanitizeText applies the shared cleanup chain.
func sanitizeText(raw string, maxLen int) string {
	cleaned := htmlTagPattern.ReplaceAllString(raw, " ")
	cleaned = html.UnescapeString(cleaned)
	cleaned = whitespacePattern.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)
	return Truncate(cleaned, maxLen)
}

// Truncate bounds a string to maxLen runes, appending an ellipsis when it
// had to cut. Never splits a UTF-8 sequence.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}

	runes := []rune(s)
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return strings.TrimSpace(string(runes[:maxLen-1])) + "…"
}

// CountWords returns the number of whitespace-separated tokens in a string.
// Used by the classifier's article heuristic when structured word counts are
// absent.
func CountWords(s string) int {
	return len(strings.Fields(s))
}
