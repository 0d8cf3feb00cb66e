package usecase

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Package-level compiled regex patterns for performance
var (
	// Anything that is not an ASCII word character or whitespace
	nonWordRegex = regexp.MustCompile(`[^\w\s]`)

	// Multiple spaces cleanup
	multiSpaceRegex = regexp.MustCompile(`\s+`)
)

// DefaultMinLineLength is the shortest normalized line treated as an item rather than OCR noise
const DefaultMinLineLength = 3

// NormalizeLine lower-cases an OCR line, replaces punctuation with spaces,
// collapses whitespace and trims. Combining marks are stripped first so
// "Crème" becomes "creme" instead of "cr me".
func NormalizeLine(raw string) string {
	if raw == "" {
		return ""
	}

	folded := foldMarks(raw)
	cleaned := nonWordRegex.ReplaceAllString(strings.ToLower(folded), " ")
	cleaned = multiSpaceRegex.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// IsDegenerate reports whether a normalized line is too short to be an item
func IsDegenerate(normalized string, minLength int) bool {
	if minLength <= 0 {
		minLength = DefaultMinLineLength
	}
	return len(normalized) < minLength
}

// foldMarks decomposes s and drops nonspacing marks
func foldMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
