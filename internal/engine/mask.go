package engine

import (
	"strings"
	"unicode/utf8"
)

// Glyph replaces each hidden character of a secret.
const Glyph = '█'

// Mask hides value behind Glyph, one glyph per rune, keeping prefix runes at
// the start and suffix runes at the end literal. When the value is not
// longer than prefix+suffix nothing is kept literal. The result always has
// the same rune count as value.
func Mask(value string, prefix, suffix int) string {
	n := utf8.RuneCountInString(value)
	if prefix < 0 {
		prefix = 0
	}
	if suffix < 0 {
		suffix = 0
	}
	if n <= prefix+suffix {
		prefix, suffix = 0, 0
	}
	var sb strings.Builder
	sb.Grow(len(value) + 2*n)
	for i, pos := 0, 0; pos < len(value); i++ {
		_, size := utf8.DecodeRuneInString(value[pos:])
		if i < prefix || i >= n-suffix {
			sb.WriteString(value[pos : pos+size])
		} else {
			sb.WriteRune(Glyph)
		}
		pos += size
	}
	return sb.String()
}
