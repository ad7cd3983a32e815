package pipeline

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// Tracker receives progress for one phase of a run.
type Tracker interface {
	Add(n int) error
	Finish() error
}

// ProgressFactory starts a tracker for a phase with a known total.
type ProgressFactory func(description string, total int) Tracker

type noopTracker struct{}

func (noopTracker) Add(int) error { return nil }
func (noopTracker) Finish() error { return nil }

// NoProgress discards progress.
func NoProgress(string, int) Tracker { return noopTracker{} }

// TerminalProgress draws progress bars on w when it is a terminal and
// discards progress otherwise.
func TerminalProgress(w io.Writer) ProgressFactory {
	f, ok := w.(*os.File)
	if !ok || !(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return NoProgress
	}
	return func(description string, total int) Tracker {
		return progressbar.NewOptions(total,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription(description),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}
}
