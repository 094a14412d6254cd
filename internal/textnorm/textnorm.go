// Package textnorm canonicalizes study text fields for comparison.
//
// Every function here is pure and deterministic: match keys are derived from
// these outputs, so they must be stable across runs.
package textnorm

import (
	"regexp"
	"strings"
)

// Comparison lengths for normalized text.
const (
	TitleMaxLen    = 100
	AbstractMaxLen = 200
)

var (
	nonWordPattern    = regexp.MustCompile(`[^\w\s]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	schemePattern     = regexp.MustCompile(`^https?://`)
)

// Title normalizes a study title: lowercase, punctuation replaced by spaces,
// whitespace collapsed, trimmed and cut to TitleMaxLen characters.
func Title(s string) string {
	return text(s, TitleMaxLen)
}

// Abstract normalizes an abstract the same way as Title, cut to AbstractMaxLen.
func Abstract(s string) string {
	return text(s, AbstractMaxLen)
}

// DOI normalizes a DOI for exact comparison. Scheme and doi.org prefixes are
// dropped so "https://doi.org/10.1000/ABC" and "10.1000/abc" agree.
func DOI(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = schemePattern.ReplaceAllString(s, "")
	return strings.TrimPrefix(s, "doi.org/")
}

func text(s string, maxLen int) string {
	if s == "" {
		return ""
	}
	s = strings.ToLower(s)
	s = nonWordPattern.ReplaceAllString(s, " ")
	s = whitespacePattern.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	// Only ASCII word characters and single spaces remain, so byte
	// truncation never splits a character.
	if len(s) > maxLen {
		s = strings.TrimRight(s[:maxLen], " ")
	}
	return s
}
