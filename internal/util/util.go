package util

import (
	"strings"
)

// snippetMaxLen caps the length of body excerpts in log lines.
const snippetMaxLen = 200

// Snippet returns a short prefix of a byte slice, useful for logging response
// bodies without flooding the log. Truncation is rune-safe.
func Snippet(b []byte) string {
	s := string(b)
	if len(s) <= snippetMaxLen {
		return s
	}
	runes := []rune(s)
	if len(runes) <= snippetMaxLen {
		return s
	}
	return string(runes[:snippetMaxLen]) + "..."
}

// LooksLikeJSON reports whether a string is plausibly a JSON object or array.
// It is a cheap heuristic, not validation.
func LooksLikeJSON(s string) bool {
	trimmed := strings.TrimSpace(s)
	return (strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}")) ||
		(strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"))
}
