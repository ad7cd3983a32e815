package textmatch

import (
	"strings"
	"unicode"
)

// Character-class tags used in skeletons.
const (
	ClassIdeograph = 'K'
	ClassKatakana  = 'C'
	ClassLatin     = 'E'
	ClassDigit     = 'N'
	ClassOther     = 'S'
)

// CharClass tags a single rune with its script class.
func CharClass(r rune) rune {
	switch {
	case r >= 0x4E00 && r <= 0x9FFF:
		return ClassIdeograph
	case r >= 0x30A0 && r <= 0x30FF:
		return ClassKatakana
	case (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z'):
		return ClassLatin
	case (r >= '0' && r <= '9') || (r >= '０' && r <= '９'):
		return ClassDigit
	default:
		return ClassOther
	}
}

// Pattern returns the character-class skeleton of s, one tag per
// non-whitespace rune. For example "騎士ガンダム" becomes "KKCCCC" and
// "νガンダム" becomes "SCCCC".
func Pattern(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(CharClass(r))
	}
	return b.String()
}
