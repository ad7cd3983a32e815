package textmatch

import (
	"unicode/utf8"

	"github.com/agext/levenshtein"
)

// Ratio returns the normalized indel similarity of a and b in [0, 100]:
// 100 * (1 - d / (len(a)+len(b))) where d counts insertions and deletions
// only (a substitution costs two). Lengths are measured in runes. Two empty
// strings are identical.
func Ratio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}
	dist, _, _ := levenshtein.Calculate(ra, rb, 0, 1, 2, 1)
	return 100 * float64(total-dist) / float64(total)
}

func runeLenDiff(a, b string) int {
	diff := utf8.RuneCountInString(a) - utf8.RuneCountInString(b)
	if diff < 0 {
		return -diff
	}
	return diff
}
