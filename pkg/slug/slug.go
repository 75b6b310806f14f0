// Package slug turns titles and headings into URL-safe tokens.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRun = regexp.MustCompile(`[\s\p{Z}]+`)
	disallowed    = regexp.MustCompile(`[^A-Za-z0-9_-]`)
	hyphenRun     = regexp.MustCompile(`-{2,}`)
)

// Make builds the slug for text. It never fails; empty input yields "".
func Make(text string) string {
	if text == "" {
		return ""
	}

	s := stripDiacritics(text)
	s = strings.ToLower(s)
	s = strings.TrimSpace(s)
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = disallowed.ReplaceAllString(s, "")
	return hyphenRun.ReplaceAllString(s, "-")
}

// stripDiacritics decomposes text and drops combining marks ("é" -> "e").
func stripDiacritics(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return out
}
