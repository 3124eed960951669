package normalize

import "testing"

func TestText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		// Whitespace handling
		{"trim", "  10 sleep tips  ", "10 sleep tips"},
		{"collapse spaces", "10   sleep   tips", "10 sleep tips"},
		{"tabs and newlines", "10\tsleep\ntips", "10 sleep tips"},
		// Unicode composition
		{"nfc composed stays", "café", "café"},
		{"nfd recomposed", "café", "café"},
		// Sanitization
		{"null bytes dropped", "sleep\x00tips", "sleeptips"},
		// Edge cases
		{"empty", "", ""},
		{"only whitespace", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Text(tt.input)
			if result != tt.expected {
				t.Errorf("Text(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestEmail(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Sam@Example.COM", "sam@example.com"},
		{"  sam@example.com  ", "sam@example.com"},
		{"sam@example.com", "sam@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := Email(tt.input)
			if result != tt.expected {
				t.Errorf("Email(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		// Basic normalization
		{"lowercase", "DRAGONS", "dragons"},
		{"spaces to hyphens", "10 Sleep Tips", "10-sleep-tips"},
		{"already normalized", "sleep-tips", "sleep-tips"},
		// Accents and unicode
		{"accents stripped", "Café Vlog", "cafe-vlog"},
		{"emoji removed", "🎬 Movie Night!", "movie-night"},
		// Special characters
		{"punctuation", "Top 10: Best Tips!", "top-10-best-tips"},
		{"slashes", "Sci-Fi/Fantasy", "sci-fi-fantasy"},
		// Hyphen handling
		{"multiple hyphens", "slow--burn", "slow-burn"},
		{"leading and trailing", "--dragons--", "dragons"},
		// Edge cases
		{"empty string", "", ""},
		{"only special chars", "!@#$%", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Slug(tt.input)
			if result != tt.expected {
				t.Errorf("Slug(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
