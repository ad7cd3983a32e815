package screen

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Label is the screen type of a single frame.
type Label string

const (
	LabelMatching   Label = "matching"
	LabelResultWin  Label = "result_win"
	LabelResultLose Label = "result_lose"
	LabelOther      Label = "other"
)

// IsTerminal reports whether the label ends a match.
func (l Label) IsTerminal() bool {
	return l == LabelResultWin || l == LabelResultLose
}

// ParseLabel converts a stored label string back into a Label.
func ParseLabel(value string) (Label, error) {
	switch Label(strings.TrimSpace(value)) {
	case LabelMatching:
		return LabelMatching, nil
	case LabelResultWin:
		return LabelResultWin, nil
	case LabelResultLose:
		return LabelResultLose, nil
	case LabelOther:
		return LabelOther, nil
	default:
		return "", fmt.Errorf("unknown screen label %q", value)
	}
}

// Frame is one sampled image. Index is the 0-based sample ordinal; the
// frame's position in the video is Index multiplied by the sampling interval.
type Frame struct {
	Index int    `json:"index"`
	Path  string `json:"path"`
}

// Name returns the frame's file name, used as its identifier in outputs.
func (f Frame) Name() string {
	return filepath.Base(f.Path)
}

// ClassifiedFrame pairs a frame with its label.
type ClassifiedFrame struct {
	Frame Frame `json:"frame"`
	Label Label `json:"label"`
}

// WithoutOther returns the sequence with every other-labelled frame removed,
// preserving order.
func WithoutOther(seq []ClassifiedFrame) []ClassifiedFrame {
	out := make([]ClassifiedFrame, 0, len(seq))
	for _, cf := range seq {
		if cf.Label == LabelOther {
			continue
		}
		out = append(out, cf)
	}
	return out
}
