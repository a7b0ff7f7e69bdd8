// internal/pipeline/sanitize_test.go
package pipeline

import (
	"strings"
	"testing"
)

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "strips html tags",
			input:    "The <b>ultimate</b> guide",
			expected: "The ultimate guide",
		},
		{
			name:     "unescapes entities",
			input:    "Tips &amp; Tricks &mdash; part 2",
			expected: "Tips & Tricks — part 2",
		},
		{
			name:     "collapses whitespace",
			input:    "  Hello \n\t world  ",
			expected: "Hello world",
		},
		{
			name:     "plain text untouched",
			input:    "Just a title",
			expected: "Just a title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeTitle(tt.input)
			if got != tt.expected {
				t.Errorf("SanitizeTitle(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSanitizeTitleBoundsLength(t *testing.T) {
	long := strings.Repeat("word ", 200)
	got := SanitizeTitle(long)
	if len([]rune(got)) > MaxTitleLength {
		t.Errorf("sanitized title exceeds %d runes: %d", MaxTitleLength, len([]rune(got)))
	}
	if !strings.HasSuffix(got, "…") {
		t.Error("truncated title should end with an ellipsis")
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("short strings should pass through, got %q", got)
	}

	got := Truncate("abcdefghij", 5)
	if len([]rune(got)) > 5 {
		t.Errorf("truncated string too long: %q", got)
	}

	// Multi-byte runes must not be split
	got = Truncate("ナレッジベースへのクリップ", 5)
	if !strings.HasSuffix(got, "…") {
		t.Errorf("expected ellipsis suffix, got %q", got)
	}
}

func TestCountWords(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"", 0},
		{"one", 1},
		{"a couple of words here", 5},
		{"  spaced   out\ttokens\n", 3},
	}

	for _, tt := range tests {
		if got := CountWords(tt.input); got != tt.expected {
			t.Errorf("CountWords(%q) = %d, want %d", tt.input, got, tt.expected)
		}
	}
}
