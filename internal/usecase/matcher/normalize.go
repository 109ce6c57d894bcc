package matcher

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// NormalizeName canonicalizes a payer or guardian name for comparison.
// Bank transfer rows arrive with arbitrary width (full-width ASCII, half-width
// katakana) and spacing, so equality is width-insensitive, whitespace-
// insensitive and case-insensitive.
func NormalizeName(s string) string {
	folded := width.Fold.String(s)
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// NormalizeKana canonicalizes a kana reading: width-folded, space-stripped,
// hiragana folded to katakana so that ヤマダ and やまだ compare equal.
func NormalizeKana(s string) string {
	folded := width.Fold.String(s)
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsSpace(r) {
			continue
		}
		if r >= 'ぁ' && r <= 'ゖ' {
			r += 'ァ' - 'ぁ'
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
