package match

import (
	"fmt"
	"math"
	"time"

	"matchtracker/internal/screen"
)

// Outcome is a single seat's result.
type Outcome string

const (
	OutcomeWin  Outcome = "WIN"
	OutcomeLose Outcome = "LOSE"
)

// Outcomes maps a result label to the four seat outcomes. Seats 1 and 2 are
// the recording player's team; a win screen means they won.
func Outcomes(label screen.Label) ([4]Outcome, error) {
	switch label {
	case screen.LabelResultWin:
		return [4]Outcome{OutcomeWin, OutcomeWin, OutcomeLose, OutcomeLose}, nil
	case screen.LabelResultLose:
		return [4]Outcome{OutcomeLose, OutcomeLose, OutcomeWin, OutcomeWin}, nil
	default:
		return [4]Outcome{}, fmt.Errorf("label %q is not a result", label)
	}
}

// FrameSeconds returns floor(index * interval) in whole seconds.
func FrameSeconds(index int, interval time.Duration) int64 {
	return int64(math.Floor(float64(index) * interval.Seconds()))
}

// FormatTimestamp renders the position of frame index as HH:MM:SS. Hours are
// not wrapped, so recordings longer than a day keep counting up.
func FormatTimestamp(index int, interval time.Duration) string {
	total := FrameSeconds(index, interval)
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
