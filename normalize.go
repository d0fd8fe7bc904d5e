package gazetteer

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Clean applies Unicode canonical composition (NFC) and collapses every run of
// whitespace to a single space, trimming both ends. Case is preserved.
//
// Every raw CSV cell passes through Clean before it reaches a builder, so
// "Kampong  Cham " and "Kampong Cham" are the same display name.
func Clean(raw string) string {
	return strings.Join(strings.Fields(norm.NFC.String(raw)), " ")
}

// NormalizeKey canonicalizes raw text into a comparison-safe lookup key:
// NFC, whitespace collapsed, lower-cased, tokens joined with "-".
//
//	NormalizeKey("  Kampong   Cham ") == "kampong-cham"
//
// It is total and idempotent.
func NormalizeKey(raw string) string {
	// Case mapping can leave a composable sequence behind, so compose again.
	lowered := norm.NFC.String(toLower(norm.NFC.String(raw)))
	return strings.Join(strings.Fields(lowered), "-")
}

// Slug builds a fallback place identifier from a name. Punctuation and symbol
// runes are dropped, letters of any script and digits are kept, and the
// remaining tokens are lower-cased and joined with "-".
//
//	Slug("Mỹ Sơn (Quảng Nam)") == "mỹ-sơn-quảng-nam"
func Slug(name string) string {
	stripped := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, Clean(name))
	return NormalizeKey(stripped)
}

// toLower lower-cases with full Unicode case mapping; names in the inventory
// mix Vietnamese, Khmer transcriptions and French.
func toLower(s string) string {
	return strings.ToLower(s)
}
