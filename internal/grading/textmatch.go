package grading

import "strings"

// normalize trims surrounding whitespace and casefolds for comparison.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// textMatches checks a free-text response against the canonical answer or any
// accepted alternative. Empty responses never match.
func textMatches(resp, canonical string, alternatives []string) bool {
	n := normalize(resp)
	if n == "" {
		return false
	}
	if n == normalize(canonical) {
		return true
	}
	for _, alt := range alternatives {
		if n == normalize(alt) {
			return true
		}
	}
	return false
}
