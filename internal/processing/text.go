package processing

import (
	"crypto/sha1"
	"encoding/hex"
	"html"
	"regexp"
	"strings"
)

var whitespace = regexp.MustCompile(`\s+`)

// Truncate returns at most n characters of s. Characters are runes, so Urdu
// titles are never cut mid-codepoint.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// CollapseNewlines replaces every line break with a single space.
func CollapseNewlines(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}

// CleanTitle decodes HTML entities and squeezes whitespace in an incoming headline.
func CleanTitle(input string) string {
	if input == "" {
		return ""
	}
	decoded := html.UnescapeString(input)
	decoded = whitespace.ReplaceAllString(decoded, " ")
	return strings.TrimSpace(decoded)
}

// DedupeKey hashes the fields that identify one story in one language.
func DedupeKey(title, url, language string) string {
	s := sha1.Sum([]byte(strings.ToLower(title) + "|" + url + "|" + language))
	return hex.EncodeToString(s[:])
}
