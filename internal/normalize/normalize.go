// Package normalize provides utilities for normalizing and sanitizing data.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	// Matches any run of whitespace.
	whitespaceRun = regexp.MustCompile(`\s+`)
	// Matches any non-alphanumeric character.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	// Matches multiple hyphens.
	multipleHyphens = regexp.MustCompile(`-+`)
)

// Text canonicalizes user-entered text for storage and indexing.
// It applies NFC so the same title typed with different unicode
// compositions compares equal, collapses whitespace runs to a single
// space, and trims the result. Null bytes are dropped because they
// break JSON parsing and some storage layers.
func Text(s string) string {
	s = sanitizeString(s)
	s = norm.NFC.String(s)
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Email canonicalizes an address for lookups and uniqueness checks.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(sanitizeString(s)))
}

// Slug converts a string to a URL-safe slug.
// "10 Sleep Tips" -> "10-sleep-tips".
// "Café Vlog #3" -> "cafe-vlog-3".
func Slug(s string) string {
	// Normalize unicode (decompose accented characters).
	s = norm.NFKD.String(s)

	// Remove non-ASCII characters.
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	// Lowercase.
	s = strings.ToLower(s)

	// Replace non-alphanumeric with hyphens.
	s = nonAlphanumeric.ReplaceAllString(s, "-")

	// Collapse multiple hyphens.
	s = multipleHyphens.ReplaceAllString(s, "-")

	// Trim leading/trailing hyphens.
	s = strings.Trim(s, "-")

	return s
}

// sanitizeString removes null bytes from strings, which can cause
// issues in databases and JSON parsing.
func sanitizeString(s string) string {
	return strings.Map(func(r rune) rune {
		if r == 0 { // null byte
			return -1 // drop it
		}
		return r
	}, s)
}
