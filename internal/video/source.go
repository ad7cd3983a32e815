package video

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrSourceUnreadable reports a recording that cannot be opened or holds no
// video stream. It is fatal to a run.
var ErrSourceUnreadable = errors.New("video source unreadable")

// Source describes an opened recording.
type Source struct {
	Path     string
	Key      string
	Size     int64
	ModTime  time.Time
	Duration float64
	Width    int
	Height   int
	FPS      float64
}

// Key derives the stable identifier of a recording from its base name
// without extension. Outputs and cache entries are keyed by it.
func Key(path string) string {
	base := filepath.Base(strings.TrimSpace(path))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Stat reads the file metadata of a recording without probing it.
func Stat(path string) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Source{}, fmt.Errorf("%w: %v", ErrSourceUnreadable, err)
	}
	if info.IsDir() {
		return Source{}, fmt.Errorf("%w: %s is a directory", ErrSourceUnreadable, path)
	}
	return Source{
		Path:    path,
		Key:     Key(path),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Open stats and probes a recording. Any failure wraps ErrSourceUnreadable.
func Open(ctx context.Context, ffprobeBinary, path string) (Source, error) {
	src, err := Stat(path)
	if err != nil {
		return Source{}, err
	}
	probe, err := Inspect(ctx, ffprobeBinary, path)
	if err != nil {
		return Source{}, fmt.Errorf("%w: %v", ErrSourceUnreadable, err)
	}
	stream, ok := probe.VideoStream()
	if !ok {
		return Source{}, fmt.Errorf("%w: %s has no video stream", ErrSourceUnreadable, path)
	}
	src.Duration = probe.DurationSeconds()
	src.Width = stream.Width
	src.Height = stream.Height
	src.FPS = stream.FrameRate()
	return src, nil
}
