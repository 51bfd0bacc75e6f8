// Package textutil provides the text normalization shared by every
// prompt-matching stage: lowercase, accent-stripped, collapsed whitespace.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// StripAccents removes combining marks: "categoría" -> "categoria".
func StripAccents(s string) string {
	out, _, err := transform.String(accentStripper, s)
	if err != nil {
		return s
	}
	return out
}

// Normalize lowercases, strips accents and trims surrounding whitespace.
// Matching on normalized text makes "Categoría" and "categoria" equal.
func Normalize(s string) string {
	return strings.TrimSpace(strings.ToLower(StripAccents(s)))
}

// CollapseSpaces squeezes runs of whitespace into single spaces.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TrimPunct removes the leading/trailing punctuation left behind by
// regex captures ("Samsung," -> "Samsung").
func TrimPunct(s string) string {
	return strings.Trim(s, " ,.;:-_\"'")
}
