// Package sanitize reduces generated note text to characters the PDF core
// fonts can render.
package sanitize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// punctuation covers code points canonical decomposition leaves untouched.
var punctuation = strings.NewReplacer(
	"’", "'", // right single quotation mark
	"–", "-", // en dash
	"—", "-", // em dash
)

// Text decomposes s (NFD), drops nonspacing combining marks and then maps
// the punctuation above to ASCII. The passes run in that order. Text is
// idempotent and defined for every input.
func Text(s string) string {
	if s == "" {
		return ""
	}
	return punctuation.Replace(stripMarks(s))
}

func stripMarks(s string) string {
	// Chained transformers carry state, so build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return stripMarksSlow(s)
	}
	return out
}

// stripMarksSlow is the rune-by-rune equivalent used if the transformer
// chain reports an error.
func stripMarksSlow(s string) string {
	var sb strings.Builder
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
