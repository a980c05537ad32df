// Package texttransform implements the pure, total character-wise
// conversions used while composing Japanese text: half/full width folding
// and hiragana/katakana/half-katakana conversion. None of these functions
// can fail. ToKatakana and ToHiragana allocate only their result; the
// others also allocate intermediate strings (ToFullwidth runs a width
// transform per rune, ToHalfwidth runs one over the whole string, and
// ToHalfKatakana builds the full-width katakana form first).
package texttransform

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/width"
)

// ToFullwidth converts half-width (ASCII and half-width katakana) runes in s
// to their full-width forms. When preserveASCIIPunct is true, ASCII
// punctuation (as opposed to letters and digits) is left untouched — used by
// the Function(Nine) "full latin" conversion, which widens letters/digits
// but keeps punctuation readable.
func ToFullwidth(s string, preserveASCIIPunct bool) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if preserveASCIIPunct && isASCIIPunct(r) {
			b.WriteRune(r)
			continue
		}
		out, _, err := transform.String(width.Widen, string(r))
		if err != nil || out == "" {
			b.WriteRune(r)
			continue
		}
		b.WriteString(out)
	}
	return b.String()
}

// ToHalfwidth converts full-width runes in s to their half-width forms.
func ToHalfwidth(s string) string {
	out, _, err := transform.String(width.Narrow, s)
	if err != nil {
		return s
	}
	return out
}

func isASCIIPunct(r rune) bool {
	if r > unicode.MaxASCII {
		return false
	}
	return r >= 0x21 && r <= 0x2F ||
		r >= 0x3A && r <= 0x40 ||
		r >= 0x5B && r <= 0x60 ||
		r >= 0x7B && r <= 0x7E
}
