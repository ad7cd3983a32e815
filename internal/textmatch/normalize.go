package textmatch

import "strings"

// circledDigitReplacer maps the circled digits recognition emits for unit
// suffixes to ASCII. Spaces are dropped in the same pass.
var circledDigitReplacer = strings.NewReplacer(
	" ", "",
	"①", "1",
	"②", "2",
	"③", "3",
	"④", "4",
	"⑤", "5",
	"⑥", "6",
	"⑦", "7",
	"⑧", "8",
	"⑨", "9",
	"⑩", "10",
)

// Normalize prepares raw recognized text for scoring: surrounding whitespace
// is trimmed, interior spaces removed, and circled digits ①-⑩ replaced with
// 1-10.
func Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return circledDigitReplacer.Replace(trimmed)
}
