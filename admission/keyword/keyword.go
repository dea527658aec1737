// Package keyword normalizes and tokenizes display names, and compiles
// literal filter strings into permissive matching patterns.
package keyword

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonSlugChars = regexp.MustCompile(`[^\pL\pN]+`)

// Slugify returns a version of the string with all non-letter, non-digit
// characters removed, and all lower-case.
func Slugify(orig string) string {
	return strings.ToLower(nonSlugChars.ReplaceAllString(orig, ""))
}

// Fold lower-cases the string and strips combining marks (so "Gdańsk"
// folds to "gdansk"). Falls back to plain lower-casing if the unicode
// transform fails.
func Fold(orig string) string {
	// the transform chain is rebuilt per call to avoid sharing state
	// across goroutines
	normFunc := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	lower := strings.ToLower(orig)
	out, _, err := transform.String(normFunc, lower)
	if err != nil {
		slog.Warn("unicode normalization error", "err", err)
		return lower
	}
	return out
}

// Normalize casefolds the string and collapses internal whitespace, for
// exact-match username comparison.
func Normalize(orig string) string {
	return strings.Join(strings.Fields(Fold(orig)), " ")
}

func splitNameRune(c rune) bool {
	return !unicode.IsLetter(c) && !unicode.IsNumber(c)
}

// TokenizeName splits a display name into tokens on word boundaries and
// camel-case transitions, folding each token. Single-character tokens are
// dropped.
//
// For example, "MysticWizard-99" splits into ["mystic", "wizard", "99"].
func TokenizeName(orig string) []string {
	fields := strings.FieldsFunc(orig, splitNameRune)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		for _, tok := range splitCamelCase(f) {
			tok = Fold(tok)
			if len(tok) > 1 {
				out = append(out, tok)
			}
		}
	}
	return out
}

// splitCamelCase breaks "MysticWizard" into ["Mystic", "Wizard"]. Runs of
// upper-case letters stay together ("XMLParser" -> ["XML", "Parser"]),
// and digit runs split from letters.
func splitCamelCase(s string) []string {
	var out []string
	runes := []rune(s)
	start := 0
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		boundary := false
		switch {
		case unicode.IsLower(prev) && unicode.IsUpper(cur):
			boundary = true
		case unicode.IsLetter(prev) && unicode.IsDigit(cur):
			boundary = true
		case unicode.IsDigit(prev) && unicode.IsLetter(cur):
			boundary = true
		case unicode.IsUpper(prev) && unicode.IsUpper(cur) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
			// end of an upper-case run followed by a capitalized word
			boundary = true
		}
		if boundary {
			out = append(out, string(runes[start:i]))
			start = i
		}
	}
	out = append(out, string(runes[start:]))
	return out
}
