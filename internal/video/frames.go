package video

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"matchtracker/internal/screen"
)

const (
	framePrefix = "frame_"
	frameExt    = ".png"
	// FramePattern is the ffmpeg output template for sampled frames.
	FramePattern = framePrefix + "%05d" + frameExt
)

// FrameName returns the file name of the frame with the given index.
func FrameName(index int) string {
	return fmt.Sprintf(FramePattern, index)
}

// FrameIndexFromName parses the sample ordinal out of a frame file name.
func FrameIndexFromName(name string) (int, error) {
	base := filepath.Base(name)
	if !strings.HasPrefix(base, framePrefix) || !strings.HasSuffix(base, frameExt) {
		return 0, fmt.Errorf("not a frame file: %q", base)
	}
	digits := strings.TrimSuffix(strings.TrimPrefix(base, framePrefix), frameExt)
	index, err := strconv.Atoi(digits)
	if err != nil || index < 0 {
		return 0, fmt.Errorf("not a frame file: %q", base)
	}
	return index, nil
}

// ListFrames returns the sampled frames in dir ordered by index. Files that
// are not frames are ignored.
func ListFrames(dir string) ([]screen.Frame, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	frames := make([]screen.Frame, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		index, err := FrameIndexFromName(entry.Name())
		if err != nil {
			continue
		}
		frames = append(frames, screen.Frame{Index: index, Path: filepath.Join(dir, entry.Name())})
	}
	sort.Slice(frames, func(i, j int) bool { return frames[i].Index < frames[j].Index })
	return frames, nil
}

// removeFrames deletes previously sampled frames so a resample never mixes
// two runs.
func removeFrames(dir string) error {
	frames, err := ListFrames(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, f := range frames {
		if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
